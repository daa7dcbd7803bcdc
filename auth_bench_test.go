package authcore

import (
	"context"
	"testing"

	"github.com/MrEthical07/authcore/store/memory"
)

func BenchmarkValidateAccess(b *testing.B) {
	engine := newBenchmarkEngine(b)

	res, err := engine.Register(context.Background(), benchmarkRegistration)
	if err != nil {
		b.Fatalf("register failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.ValidateAccess(context.Background(), res.AccessToken); err != nil {
			b.Fatalf("validate failed: %v", err)
		}
	}
}

func BenchmarkRefresh(b *testing.B) {
	engine := newBenchmarkEngine(b)

	res, err := engine.Register(context.Background(), benchmarkRegistration)
	if err != nil {
		b.Fatalf("register failed: %v", err)
	}
	refresh := res.RefreshToken

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		next, err := engine.Refresh(context.Background(), refresh)
		if err != nil {
			b.Fatalf("refresh failed: %v", err)
		}
		refresh = next.RefreshToken
	}
}

func BenchmarkLogin(b *testing.B) {
	engine := newBenchmarkEngine(b)

	if _, err := engine.Register(context.Background(), benchmarkRegistration); err != nil {
		b.Fatalf("register failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Login(context.Background(), benchmarkRegistration.Email, benchmarkRegistration.Password); err != nil {
			b.Fatalf("login failed: %v", err)
		}
	}
}

var benchmarkRegistration = RegisterRequest{
	Email:     "alice@example.com",
	Password:  testPassword,
	FirstName: "Alice",
	LastName:  "Bench",
}

func newBenchmarkEngine(tb testing.TB) *Engine {
	tb.Helper()

	engine, err := New().
		WithConfig(testConfig()).
		WithStore(memory.New()).
		Build()
	if err != nil {
		tb.Fatalf("build failed: %v", err)
	}
	tb.Cleanup(engine.Close)
	return engine
}
