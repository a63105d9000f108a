package sieve

// TrialDivision produces primes by testing each odd candidate against the
// primes found so far. It is slow but obviously correct.
type TrialDivision struct {
	known []uint64
}

var _ Source = (*TrialDivision)(nil)

func NewTrialDivision() *TrialDivision {
	return &TrialDivision{}
}

func (t *TrialDivision) Next() (uint64, error) {
	if len(t.known) == 0 {
		t.known = append(t.known, 2)
		return 2, nil
	}

	last := t.known[len(t.known)-1]
	if last >= MaxPrime {
		return 0, ErrExhausted
	}

	c := last + 1
	if last > 2 {
		c = last + 2
	}
	// odd divisors only; t.known[0] is 2
	for !dividesNone(c, t.known[1:]) {
		c += 2
	}
	t.known = append(t.known, c)
	return c, nil
}

// IsPrime reports whether n is prime, by trial division.
func IsPrime(n uint64) bool {
	switch {
	case n < 2:
		return false
	case n < 4:
		return true
	case n%2 == 0:
		return false
	}
	for d := uint64(3); d <= n/d; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}
