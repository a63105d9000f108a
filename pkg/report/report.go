// Package report drives a prime Source up to a limit and writes one
// "<prime> <popcount(prime-1)>" line per prime.
package report

import (
	"bufio"
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ib-77/primepop/pkg/rop"
	"github.com/ib-77/primepop/pkg/rop/solo"
	"github.com/ib-77/primepop/pkg/rop/tiny"
	"github.com/ib-77/primepop/pkg/sieve"
)

// Summary describes what a run wrote.
type Summary struct {
	Count int
	Last  uint64
}

type Option func(*runner)

func WithLogger(l logrus.FieldLogger) Option {
	return func(r *runner) {
		if l != nil {
			r.log = l
		}
	}
}

type runner struct {
	log logrus.FieldLogger
	out *bufio.Writer
	src sieve.Source
	buf []byte
	sum Summary
}

// Run writes a record for every prime src yields, stopping after the first
// prime that is >= limit. That prime is written too, so at least one line
// (for 2) is always produced. Output is flushed before Run returns, on
// failure as well. Cancelling ctx stops the run between records.
func Run(ctx context.Context, w io.Writer, src sieve.Source, limit uint64, opts ...Option) (Summary, error) {
	r := newRunner(w, src, opts...)

	res := solo.FailOnError(ctx,
		tiny.FromValue(ctx, uint64(0)).
			RepeatUntil(r.step, func(_ context.Context, p uint64) bool { return p >= limit }).
			Result(),
		r.flush)

	tiny.Start(ctx, res).Ensure(
		func(context.Context, uint64) { r.finished(limit) },
		func(context.Context, error) { r.stopped(res) })

	pass := func(_ context.Context, err error) error { return err }
	return r.sum, solo.Finally(ctx, res,
		func(context.Context, uint64) error { return nil },
		pass,
		pass)
}

func newRunner(w io.Writer, src sieve.Source, opts ...Option) *runner {
	r := &runner{
		log: discardLogger(),
		out: bufio.NewWriter(w),
		src: src,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// step fetches the next prime and writes its record.
func (r *runner) step(_ context.Context, _ uint64) (uint64, error) {
	p, err := r.src.Next()
	if err != nil {
		return 0, errors.Wrapf(err, "prime after %d", r.sum.Last)
	}

	r.buf = NewRecord(p).AppendTo(r.buf[:0])
	if _, err := r.out.Write(r.buf); err != nil {
		return 0, errors.Wrapf(err, "write record for %d", p)
	}

	r.sum.Count++
	r.sum.Last = p
	return p, nil
}

func (r *runner) flush(context.Context, uint64) error {
	return errors.Wrap(r.out.Flush(), "flush output")
}

func (r *runner) finished(limit uint64) {
	r.log.WithFields(logrus.Fields{
		"limit":   limit,
		"records": r.sum.Count,
		"last":    r.sum.Last,
	}).Debug("enumeration finished")
}

// stopped keeps the records written before a failure and logs it.
func (r *runner) stopped(res rop.Result[uint64]) {
	// a writer that already failed keeps failing; the run error wins
	_ = r.out.Flush()
	r.log.WithFields(logrus.Fields{
		"result":  res.Id(),
		"at":      res.CreatedAt(),
		"records": r.sum.Count,
		"last":    r.sum.Last,
	}).WithError(res.Err()).Debug("enumeration stopped")
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
