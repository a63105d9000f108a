package tiny

import (
	"context"

	"github.com/ib-77/primepop/pkg/rop"
	"github.com/ib-77/primepop/pkg/rop/solo"
)

// Chain binds a Result to the context its steps run under.
type Chain[T any] struct {
	ctx context.Context
	res rop.Result[T]
}

func Start[T any](ctx context.Context, r rop.Result[T]) Chain[T] {
	return Chain[T]{ctx: ctx, res: r}
}

func FromValue[T any](ctx context.Context, v T) Chain[T] {
	return Start(ctx, solo.Succeed(v))
}

func (c Chain[T]) Result() rop.Result[T] {
	return c.res
}

// RepeatUntil feeds the chain value through step at least once, and again
// until done reports true. A step error fails the chain; a context cancelled
// between steps cancels it. Only the final value is wrapped in a Result.
func (c Chain[T]) RepeatUntil(step func(ctx context.Context, t T) (T, error),
	done func(ctx context.Context, t T) bool) Chain[T] {

	if c.res.IsFailure() {
		return c
	}

	v := c.res.Result()
	for {
		next, err := step(c.ctx, v)
		if err != nil {
			return Chain[T]{ctx: c.ctx, res: solo.Fail[T](err)}
		}
		v = next

		if done(c.ctx, v) {
			return Chain[T]{ctx: c.ctx, res: solo.Succeed(v)}
		}
		if err := c.ctx.Err(); err != nil {
			return Chain[T]{ctx: c.ctx, res: solo.Cancel[T](err)}
		}
	}
}

// Ensure runs onSuccess or onFailure, whichever matches, and passes the
// chain on untouched. Either callback may be nil.
func (c Chain[T]) Ensure(onSuccess func(context.Context, T), onFailure func(context.Context, error)) Chain[T] {
	switch {
	case c.res.IsFailure() && onFailure != nil:
		onFailure(c.ctx, c.res.Err())
	case c.res.IsSuccess() && onSuccess != nil:
		onSuccess(c.ctx, c.res.Result())
	}
	return c
}
