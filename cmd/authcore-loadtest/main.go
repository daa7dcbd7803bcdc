// Command authcore-loadtest seeds accounts on a redis-backed engine and
// measures login, access validation and refresh rotation under concurrency.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authcore"
	redisstore "github.com/MrEthical07/authcore/store/redis"
)

const seedPassword = "Loadtest1!"

// seat is one registered account and its current token pair. Refresh holds mu
// for the whole rotation so concurrent workers never present a spent token.
type seat struct {
	mu      sync.Mutex
	email   string
	access  string
	refresh string
}

type options struct {
	accounts    int
	concurrency int
	ops         int
	logins      int
	redisAddr   string
	prefix      string
	cost        int
}

func main() {
	var o options
	flag.IntVar(&o.accounts, "accounts", 2000, "accounts to register, one session each")
	flag.IntVar(&o.concurrency, "concurrency", 64, "concurrent workers per phase")
	flag.IntVar(&o.ops, "ops", 50000, "operations in the validate and refresh phases")
	flag.IntVar(&o.logins, "logins", 2000, "operations in the login phase (0 skips it)")
	flag.StringVar(&o.redisAddr, "redis-addr", "", "redis address; falls back to AUTHCORE_REDIS_ADDR, then miniredis")
	flag.StringVar(&o.prefix, "prefix", "loadtest", "store key prefix")
	flag.IntVar(&o.cost, "bcrypt-cost", 4, "bcrypt cost for seeded passwords")
	flag.Parse()

	if o.accounts <= 0 || o.concurrency <= 0 || o.ops <= 0 || o.logins < 0 {
		fmt.Fprintln(os.Stderr, "accounts, concurrency and ops must be > 0")
		os.Exit(2)
	}
	if err := run(context.Background(), o); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	client, closeClient, err := connect(o.redisAddr)
	if err != nil {
		return err
	}
	defer closeClient()

	cfg := authcore.DefaultConfig()
	cfg.Tokens.AccessSecret = []byte("loadtest-access-secret-0123456789abcdef")
	cfg.Tokens.RefreshSecret = []byte("loadtest-refresh-secret-0123456789abcdef")
	cfg.Password.BcryptCost = o.cost

	engine, err := authcore.New().
		WithConfig(cfg).
		WithStore(redisstore.New(client, redisstore.WithPrefix(o.prefix))).
		Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	seats, err := seed(ctx, engine, o.accounts)
	if err != nil {
		return err
	}

	var results []phaseStats
	if o.logins > 0 {
		results = append(results, runPhase("login", o.logins, o.concurrency, func(r *rand.Rand) error {
			_, err := engine.Login(ctx, seats[r.IntN(len(seats))].email, seedPassword)
			return err
		}))
	}
	results = append(results,
		runPhase("validate", o.ops, o.concurrency, func(r *rand.Rand) error {
			s := seats[r.IntN(len(seats))]
			s.mu.Lock()
			access := s.access
			s.mu.Unlock()
			_, err := engine.ValidateAccess(ctx, access)
			return err
		}),
		runPhase("refresh", o.ops, o.concurrency, func(r *rand.Rand) error {
			s := seats[r.IntN(len(seats))]
			s.mu.Lock()
			defer s.mu.Unlock()
			res, err := engine.Refresh(ctx, s.refresh)
			if err != nil {
				return err
			}
			s.access, s.refresh = res.AccessToken, res.RefreshToken
			return nil
		}),
	)

	fmt.Println("---- results ----")
	for _, s := range results {
		fmt.Println(s)
	}
	snap := engine.MetricsSnapshot()
	fmt.Printf("refresh_success=%d refresh_failure=%d refresh_reuse=%d\n",
		snap.Counters[authcore.MetricRefreshSuccess],
		snap.Counters[authcore.MetricRefreshFailure],
		snap.Counters[authcore.MetricRefreshReuseDetected],
	)
	return nil
}

func connect(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("AUTHCORE_REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		fmt.Printf("using redis at %s\n", addr)
		return client, func() { _ = client.Close() }, nil
	}
	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start miniredis: %w", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	fmt.Printf("using miniredis at %s\n", mr.Addr())
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

func seed(ctx context.Context, engine *authcore.Engine, n int) ([]*seat, error) {
	fmt.Printf("registering %d accounts...\n", n)
	start := time.Now()
	seats := make([]*seat, n)
	for i := range seats {
		email := fmt.Sprintf("user-%d@loadtest.local", i)
		res, err := engine.Register(ctx, authcore.RegisterRequest{
			Email:     email,
			Password:  seedPassword,
			FirstName: "Load",
			LastName:  "Test",
		})
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", email, err)
		}
		seats[i] = &seat{email: email, access: res.AccessToken, refresh: res.RefreshToken}
	}
	fmt.Printf("seeded in %s\n", time.Since(start).Round(time.Millisecond))
	return seats, nil
}

// runPhase spreads ops calls of op across workers and records each latency.
func runPhase(name string, ops, workers int, op func(r *rand.Rand) error) phaseStats {
	var (
		wg       sync.WaitGroup
		cursor   atomic.Int64
		failures atomic.Int64
		samples  = make([]time.Duration, ops)
	)
	start := time.Now()
	for w := range workers {
		wg.Go(func() {
			r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(w)))
			for {
				i := int(cursor.Add(1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				if err := op(r); err != nil {
					failures.Add(1)
				}
				samples[i] = time.Since(t0)
			}
		})
	}
	wg.Wait()
	return summarize(name, time.Since(start), samples, failures.Load())
}

type phaseStats struct {
	name          string
	total         time.Duration
	ops           int
	failures      int64
	p50, p95, p99 time.Duration
	perSecond     float64
}

func (s phaseStats) String() string {
	return fmt.Sprintf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s",
		s.name, s.ops, s.failures,
		s.total.Round(time.Millisecond), s.perSecond,
		s.p50.Round(time.Microsecond), s.p95.Round(time.Microsecond), s.p99.Round(time.Microsecond),
	)
}

// summarize sorts samples in place.
func summarize(name string, total time.Duration, samples []time.Duration, failures int64) phaseStats {
	s := phaseStats{name: name, total: total, ops: len(samples), failures: failures}
	if len(samples) == 0 {
		return s
	}
	slices.Sort(samples)
	s.p50 = percentile(samples, 50)
	s.p95 = percentile(samples, 95)
	s.p99 = percentile(samples, 99)
	if total > 0 {
		s.perSecond = float64(len(samples)) / total.Seconds()
	}
	return s
}

// percentile expects sorted samples.
func percentile(sorted []time.Duration, p int) time.Duration {
	switch {
	case len(sorted) == 0:
		return 0
	case p <= 0:
		return sorted[0]
	case p >= 100:
		return sorted[len(sorted)-1]
	}
	return sorted[(len(sorted)-1)*p/100]
}
