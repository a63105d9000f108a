package sieve

import (
	"io"

	"github.com/sirupsen/logrus"
)

const (
	defaultSpan    = 1 << 12
	defaultMaxSpan = 1 << 20
	minSpan        = 64
)

type Option func(*Generator)

// WithSpan sets how many odd numbers the first segment covers. Values below
// 64 are raised to 64.
func WithSpan(n int) Option {
	return func(g *Generator) {
		g.span = uint64(max(n, minSpan))
	}
}

// WithMaxSpan caps segment growth.
func WithMaxSpan(n int) Option {
	return func(g *Generator) {
		g.maxSpan = uint64(max(n, minSpan))
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
