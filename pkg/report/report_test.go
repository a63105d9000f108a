package report

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"math/bits"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ib-77/primepop/pkg/sieve"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() logrus.FieldLogger {
	l, _ := logtest.NewNullLogger()
	return l
}

func run(t *testing.T, limit uint64) string {
	t.Helper()
	var out bytes.Buffer
	_, err := Run(context.Background(), &out, sieve.New(), limit, WithLogger(quietLogger()))
	require.NoError(t, err)
	return out.String()
}

func TestRun_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		limit uint64
		want  string
	}{
		{name: "limit zero still prints 2", limit: 0, want: "2 1\n"},
		{name: "limit one", limit: 1, want: "2 1\n"},
		{name: "limit two", limit: 2, want: "2 1\n"},
		{name: "limit three is prime", limit: 3, want: "2 1\n3 1\n"},
		{name: "limit ten", limit: 10, want: "2 1\n3 1\n5 1\n7 2\n11 2\n"},
		{name: "limit eleven is prime", limit: 11, want: "2 1\n3 1\n5 1\n7 2\n11 2\n"},
		{name: "limit twelve", limit: 12, want: "2 1\n3 1\n5 1\n7 2\n11 2\n13 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, run(t, tt.limit)); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_Properties(t *testing.T) {
	t.Parallel()

	for _, limit := range []uint64{2, 17, 100, 1000, 7919, 7920, 65536, 100000} {
		t.Run(strconv.FormatUint(limit, 10), func(t *testing.T) {
			t.Parallel()
			lines := strings.Split(strings.TrimSuffix(run(t, limit), "\n"), "\n")

			var prev uint64
			for i, line := range lines {
				fields := strings.Fields(line)
				require.Len(t, fields, 2, "line %d: %q", i, line)
				p, err := strconv.ParseUint(fields[0], 10, 64)
				require.NoError(t, err)
				c, err := strconv.Atoi(fields[1])
				require.NoError(t, err)

				require.True(t, sieve.IsPrime(p), "%d is not prime", p)
				require.Greater(t, p, prev)
				require.Equal(t, bits.OnesCount64(p-1), c, "popcount for %d", p)
				if i < len(lines)-1 {
					require.Less(t, p, limit, "line %d printed after reaching the limit", i)
				}
				prev = p
			}

			// last line is the smallest prime >= limit
			assert.GreaterOrEqual(t, prev, limit)
			for n := limit; n < prev; n++ {
				assert.False(t, sieve.IsPrime(n), "skipped prime %d", n)
			}
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()
	assert.Equal(t, run(t, 5000), run(t, 5000))
}

func TestRun_SameOutputForEverySource(t *testing.T) {
	t.Parallel()

	var fromTrial bytes.Buffer
	_, err := Run(context.Background(), &fromTrial, sieve.NewTrialDivision(), 20000, WithLogger(quietLogger()))
	require.NoError(t, err)

	var fromSieve bytes.Buffer
	_, err = Run(context.Background(), &fromSieve, sieve.New(sieve.WithSpan(64), sieve.WithMaxSpan(128)), 20000,
		WithLogger(quietLogger()))
	require.NoError(t, err)

	if diff := cmp.Diff(fromTrial.String(), fromSieve.String()); diff != "" {
		t.Errorf("sources disagree (-trial +sieve):\n%s", diff)
	}
}

func TestRun_Summary(t *testing.T) {
	t.Parallel()

	sum, err := Run(context.Background(), &bytes.Buffer{}, sieve.New(), 10, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, Summary{Count: 5, Last: 11}, sum)
}

type failingSource struct {
	primes []uint64
	err    error
}

func (f *failingSource) Next() (uint64, error) {
	if len(f.primes) == 0 {
		return 0, f.err
	}
	p := f.primes[0]
	f.primes = f.primes[1:]
	return p, nil
}

func TestRun_SourceFailure(t *testing.T) {
	t.Parallel()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	src := &failingSource{primes: []uint64{2, 3}, err: sieve.ErrAllocationFailure}
	var out bytes.Buffer
	sum, err := Run(context.Background(), &out, src, 100, WithLogger(logger))

	require.ErrorIs(t, err, sieve.ErrAllocationFailure)
	assert.Contains(t, err.Error(), "prime after 3")
	assert.Equal(t, "2 1\n3 1\n", out.String(), "records written before the failure are flushed")
	assert.Equal(t, Summary{Count: 2, Last: 3}, sum)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "enumeration stopped", entry.Message)
	assert.NotEmpty(t, entry.Data["result"])
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRun_WriteFailure(t *testing.T) {
	t.Parallel()

	// enough records to overflow the bufio buffer
	_, err := Run(context.Background(), brokenWriter{}, sieve.New(), 1_000_000, WithLogger(quietLogger()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRun_FlushFailure(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), brokenWriter{}, sieve.New(), 10, WithLogger(quietLogger()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flush output")
}

type cancellingSource struct {
	cancel context.CancelFunc
	inner  sieve.Source
}

func (c *cancellingSource) Next() (uint64, error) {
	p, err := c.inner.Next()
	if p == 5 {
		c.cancel()
	}
	return p, err
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	sum, err := Run(ctx, &out, &cancellingSource{cancel: cancel, inner: sieve.New()}, 1000, WithLogger(quietLogger()))

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "2 1\n3 1\n5 1\n", out.String())
	assert.EqualValues(t, 5, sum.Last)
}

func TestRecord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prime uint64
		want  string
	}{
		{2, "2 1"},
		{3, "3 1"},
		{7, "7 2"},
		{17, "17 1"},
		{257, "257 1"},
		{65537, "65537 1"},
		{sieve.MaxPrime, "18446744073709551557 59"},
	}
	for _, tt := range tests {
		r := NewRecord(tt.prime)
		assert.Equal(t, tt.want, r.String())
		assert.Equal(t, tt.want+"\n", string(r.AppendTo(nil)))
	}
}

func TestRecord_AppendToReusesBuffer(t *testing.T) {
	t.Parallel()
	var b bytes.Buffer
	w := bufio.NewWriter(&b)
	buf := make([]byte, 0, 32)
	for _, p := range []uint64{2, 3, 5} {
		buf = NewRecord(p).AppendTo(buf[:0])
		_, err := w.Write(buf)
		require.NoError(t, err)
	}
	require.NoError(t, w.Flush())
	assert.Equal(t, "2 1\n3 1\n5 1\n", b.String())
}

func TestNewRunner_DiscardsLogsByDefault(t *testing.T) {
	t.Parallel()

	r := newRunner(&bytes.Buffer{}, sieve.New())
	logger, ok := r.log.(*logrus.Logger)
	require.True(t, ok)
	assert.NotSame(t, logrus.StandardLogger(), logger)
	assert.Equal(t, io.Discard, logger.Out)

	custom, _ := logtest.NewNullLogger()
	assert.Same(t, custom, newRunner(&bytes.Buffer{}, sieve.New(), WithLogger(custom)).log)
}

func TestRun_LogsFinishedRun(t *testing.T) {
	t.Parallel()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	_, err := Run(context.Background(), &bytes.Buffer{}, sieve.New(), 10, WithLogger(logger))
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "enumeration finished", entry.Message)
	assert.EqualValues(t, 5, entry.Data["records"])
	assert.EqualValues(t, 11, entry.Data["last"])
}

func BenchmarkRun(b *testing.B) {
	for b.Loop() {
		if _, err := Run(context.Background(), io.Discard, sieve.New(), 1_000_000); err != nil {
			b.Fatal(err)
		}
	}
}
