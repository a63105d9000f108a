package sieve

import (
	"math"
	"math/bits"
	"runtime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Source yields primes in strictly increasing order, starting at 2.
type Source interface {
	Next() (uint64, error)
}

// Generator is a segmented Sieve of Eratosthenes. The zero value is not
// usable; create one with New.
type Generator struct {
	log     logrus.FieldLogger
	span    uint64
	maxSpan uint64

	// current segment: bit i of seg marks lo+2i as composite
	lo   uint64
	size uint64
	seg  []uint64
	pos  uint64

	loaded bool
	last   bool // the current segment ends at math.MaxUint64

	// odd primes used for crossing off, and the next odd candidate for them
	base     []uint64
	baseNext uint64

	emitted uint64
	prime   uint64
}

var _ Source = (*Generator)(nil)

func New(opts ...Option) *Generator {
	g := &Generator{
		log:      discardLogger(),
		span:     defaultSpan,
		maxSpan:  defaultMaxSpan,
		baseNext: 3,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.maxSpan = max(g.maxSpan, g.span)
	return g
}

// Next returns the smallest prime greater than every prime it returned
// before. The first call returns 2.
func (g *Generator) Next() (uint64, error) {
	if g.emitted == 0 {
		return g.emit(2), nil
	}

	for {
		for g.pos < g.size {
			w := ^g.seg[g.pos/64] >> (g.pos % 64)
			if w == 0 {
				g.pos = (g.pos/64 + 1) * 64
				continue
			}
			i := g.pos + uint64(bits.TrailingZeros64(w))
			if i >= g.size {
				g.pos = g.size
				break
			}
			g.pos = i + 1
			return g.emit(g.lo + 2*i), nil
		}

		if err := g.advance(); err != nil {
			return 0, err
		}
	}
}

// Emitted reports how many primes Next has returned.
func (g *Generator) Emitted() uint64 {
	return g.emitted
}

// Last reports the most recent prime returned, or 0 before the first call.
func (g *Generator) Last() uint64 {
	return g.prime
}

func (g *Generator) emit(p uint64) uint64 {
	g.emitted++
	g.prime = p
	return p
}

// advance loads the window that follows the current one.
func (g *Generator) advance() error {
	if g.last {
		return ErrExhausted
	}

	lo := uint64(3)
	if g.loaded {
		lo = g.lo + 2*g.size
		g.span = min(g.span*2, g.maxSpan)
	}

	size, hi, last := window(lo, g.span)
	seg, err := allocate(g.seg, (size+63)/64)
	if err != nil {
		return err
	}
	g.last = last

	g.extendBase(hi)
	for _, p := range g.base {
		if p > hi/p {
			break
		}
		crossOff(seg, lo, size, p)
	}

	g.seg, g.lo, g.size, g.pos, g.loaded = seg, lo, size, 0, true
	g.log.WithFields(logrus.Fields{
		"lo":    lo,
		"hi":    hi,
		"base":  len(g.base),
		"words": len(seg),
	}).Debug("sieve segment loaded")
	return nil
}

// window clamps a segment of span odd numbers starting at the odd number lo
// so that it never passes math.MaxUint64. It returns the clamped size, the
// last odd number covered, and whether the segment reaches the top.
func window(lo, span uint64) (size, hi uint64, last bool) {
	size = span
	if rest := (math.MaxUint64-lo)/2 + 1; size >= rest {
		size, last = rest, true
	}
	return size, lo + 2*(size-1), last
}

// crossOff marks the odd multiples of p from max(p*p, lo) onwards.
func crossOff(seg []uint64, lo, size, p uint64) {
	var off uint64
	if sq := p * p; sq >= lo {
		off = sq - lo
	} else {
		off = (p - lo%p) % p
		if off%2 == 1 {
			off += p
		}
	}
	for i := off / 2; i < size; i += p {
		seg[i/64] |= 1 << (i % 64)
	}
}

// extendBase grows the base list until it holds every odd prime p with
// p*p <= hi.
func (g *Generator) extendBase(hi uint64) {
	for c := g.baseNext; c <= hi/c; c += 2 {
		if dividesNone(c, g.base) {
			g.base = append(g.base, c)
		}
		g.baseNext = c + 2
	}
}

// dividesNone reports whether no prime in ps up to sqrt(n) divides n.
func dividesNone(n uint64, ps []uint64) bool {
	for _, p := range ps {
		if p > n/p {
			return true
		}
		if n%p == 0 {
			return false
		}
	}
	return true
}

// allocate returns a zeroed segment of the given number of words, reusing
// buf when it is large enough.
func allocate(buf []uint64, words uint64) (seg []uint64, err error) {
	if uint64(cap(buf)) >= words {
		seg = buf[:words]
		clear(seg)
		return seg, nil
	}

	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(runtime.Error)
			if !ok {
				panic(r)
			}
			seg, err = nil, errors.Wrapf(ErrAllocationFailure, "%d words: %v", words, rerr)
		}
	}()
	return make([]uint64, words), nil
}
