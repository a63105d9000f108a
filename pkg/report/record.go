package report

import (
	"math/bits"
	"strconv"
)

// Record pairs a prime with the number of set bits in prime-1.
type Record struct {
	Prime    uint64
	Popcount int
}

func NewRecord(prime uint64) Record {
	return Record{Prime: prime, Popcount: bits.OnesCount64(prime - 1)}
}

// AppendTo renders the record as "<prime> <popcount>\n".
func (r Record) AppendTo(b []byte) []byte {
	b = strconv.AppendUint(b, r.Prime, 10)
	b = append(b, ' ')
	b = strconv.AppendInt(b, int64(r.Popcount), 10)
	return append(b, '\n')
}

func (r Record) String() string {
	b := r.AppendTo(nil)
	return string(b[:len(b)-1])
}
