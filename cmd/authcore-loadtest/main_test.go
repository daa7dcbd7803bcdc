package main

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"
)

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	cases := map[int]time.Duration{0: 1, 50: 5, 95: 9, 99: 9, 100: 10}
	for p, want := range cases {
		if got := percentile(sorted, p); got != want {
			t.Fatalf("percentile(%d) = %v, want %v", p, got, want)
		}
	}
	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("empty percentile = %v", got)
	}
}

func TestSummarizeSortsSamples(t *testing.T) {
	s := summarize("x", time.Second, []time.Duration{30, 10, 20}, 1)
	if s.ops != 3 || s.failures != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.p50 != 20 || s.p99 != 20 {
		t.Fatalf("unexpected percentiles: %+v", s)
	}
	if s.perSecond != 3 {
		t.Fatalf("perSecond = %v", s.perSecond)
	}
}

func TestRunPhaseCountsEveryOp(t *testing.T) {
	boom := errors.New("boom")
	calls := make(chan struct{}, 100)
	s := runPhase("p", 100, 8, func(r *rand.Rand) error {
		calls <- struct{}{}
		if r.IntN(2) == 0 {
			return boom
		}
		return nil
	})
	if len(calls) != 100 || s.ops != 100 {
		t.Fatalf("calls=%d ops=%d, want 100", len(calls), s.ops)
	}
	if s.failures < 0 || s.failures > 100 {
		t.Fatalf("failures = %d", s.failures)
	}
}

func TestRunAgainstMiniredis(t *testing.T) {
	t.Setenv("AUTHCORE_REDIS_ADDR", "")
	err := run(t.Context(), options{
		accounts:    4,
		concurrency: 2,
		ops:         20,
		logins:      4,
		prefix:      "lt-test",
		cost:        4,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}
