package solo

import (
	"context"

	"github.com/ib-77/primepop/pkg/rop"
)

func Succeed[T any](v T) rop.Result[T] {
	return rop.Success(v)
}

func Fail[T any](err error) rop.Result[T] {
	return rop.Fail[T](err)
}

func Cancel[T any](err error) rop.Result[T] {
	return rop.Cancel[T](err)
}

// Try runs fn on a successful input. Context errors it returns become
// cancellations, anything else a failure.
func Try[In, Out any](ctx context.Context, in rop.Result[In],
	fn func(ctx context.Context, v In) (Out, error)) rop.Result[Out] {

	if in.IsFailure() {
		return rop.FailFrom[In, Out](in)
	}
	out, err := fn(ctx, in.Result())
	return rop.FromError(out, err)
}

// FailOnError keeps a successful input unless check rejects it.
func FailOnError[T any](ctx context.Context, in rop.Result[T],
	check func(ctx context.Context, v T) error) rop.Result[T] {

	if in.IsSuccess() {
		if err := check(ctx, in.Result()); err != nil {
			return rop.Fail[T](err)
		}
	}
	return in
}

// Finally reduces a Result to Out with the handler matching its state.
func Finally[In, Out any](ctx context.Context, in rop.Result[In],
	onSuccess func(ctx context.Context, v In) Out,
	onError func(ctx context.Context, err error) Out,
	onCancel func(ctx context.Context, err error) Out) Out {

	switch {
	case in.IsSuccess():
		return onSuccess(ctx, in.Result())
	case in.IsCancel():
		return onCancel(ctx, in.Err())
	default:
		return onError(ctx, in.Err())
	}
}
