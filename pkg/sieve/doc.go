// Package sieve produces primes one at a time, in strictly increasing order.
//
// Generator is a segmented Sieve of Eratosthenes over the odd numbers. It
// holds one bitset segment at a time and moves on to the next window when the
// current one is used up, doubling the window up to a cap. TrialDivision is a
// simpler Source with the same contract that tests use as an oracle.
//
// Both are single-owner values and are not safe for concurrent use.
package sieve
