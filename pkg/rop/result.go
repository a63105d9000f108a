package rop

import (
	"time"

	"github.com/google/uuid"
)

// Result carries either a value or the error that stopped the pipeline
// producing it. A cancelled Result is also a failed one.
type Result[T any] struct {
	id        uuid.UUID
	createdAt time.Time
	result    T
	err       error
	isSuccess bool
	isCancel  bool
}

func Success[T any](r T) Result[T] {
	return Result[T]{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
		result:    r,
		isSuccess: true,
	}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
		err:       err,
	}
}

func Cancel[T any](err error) Result[T] {
	return Result[T]{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
		err:       err,
		isCancel:  true,
	}
}

// FailFrom moves a failed or cancelled Result to another value type,
// keeping its identity.
func FailFrom[In, Out any](from Result[In]) Result[Out] {
	return Result[Out]{
		id:        from.id,
		createdAt: from.createdAt,
		err:       from.err,
		isCancel:  from.isCancel,
	}
}

func (r Result[T]) Result() T {
	return r.result
}

func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) IsSuccess() bool {
	return r.isSuccess
}

func (r Result[T]) IsFailure() bool {
	return !r.isSuccess
}

func (r Result[T]) IsCancel() bool {
	return r.isCancel
}

func (r Result[T]) CreatedAt() time.Time {
	return r.createdAt
}

func (r Result[T]) Id() uuid.UUID {
	return r.id
}
