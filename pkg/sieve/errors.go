package sieve

import "github.com/pkg/errors"

var (
	// ErrAllocationFailure is returned when the runtime refuses to allocate
	// the next sieve segment.
	ErrAllocationFailure = errors.New("sieve: cannot allocate segment")

	// ErrExhausted is returned once every prime below 2^64 has been produced.
	ErrExhausted = errors.New("sieve: no more primes representable in 64 bits")
)

// MaxPrime is the largest prime that fits in a uint64.
const MaxPrime uint64 = 18446744073709551557
