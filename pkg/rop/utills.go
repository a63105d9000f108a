package rop

import (
	"context"

	"github.com/pkg/errors"
)

func IsCancellationError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// FromError builds a Result from a (value, error) pair, routing context
// errors to Cancel.
func FromError[T any](v T, err error) Result[T] {
	if err == nil {
		return Success(v)
	}
	if IsCancellationError(err) {
		return Cancel[T](err)
	}
	return Fail[T](err)
}
