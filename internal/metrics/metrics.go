package metrics

import (
	"slices"
	"sync/atomic"
	"time"
)

// MetricID indexes a counter.
type MetricID uint16

const (
	MetricRegisterSuccess MetricID = iota
	MetricRegisterFailure
	MetricRegisterDuplicate
	MetricLoginSuccess
	MetricLoginFailure
	MetricLoginFederatedOnly
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricRefreshReplayRejected
	MetricRefreshReuseDetected
	MetricLogout
	MetricLogoutFailure
	MetricLogoutAll
	MetricSessionCreated
	MetricSessionRevoked
	MetricPurgeRun
	MetricPurgedTokens
	MetricFederatedSignIn
	MetricFederatedLinked
	MetricFederatedCreated
	MetricFederatedConflict
	MetricFederatedUnlinked
	MetricPasswordChangeSuccess
	MetricPasswordChangeInvalidOld
	MetricPasswordChangeReuseRejected
	MetricPasswordSet
	MetricPasswordHashUpgraded
	MetricAccountDeleted
	MetricValidateLatency
	MetricIDCount
)

// LatencyBounds are the inclusive upper bounds of the validation latency
// buckets. A final overflow bucket catches everything slower.
var LatencyBounds = [...]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
}

// HistogramBucketCount is len(LatencyBounds) plus the overflow bucket.
const HistogramBucketCount = len(LatencyBounds) + 1

// counter sits alone on its cache line so hot counters bumped by different
// cores do not contend.
type counter struct {
	atomic.Uint64
	_ [56]byte
}

// Config toggles collection.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// Metrics holds the counters. A nil or disabled Metrics ignores writes.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [MetricIDCount]counter
	validate      [HistogramBucketCount]counter
}

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// New returns a Metrics configured by cfg.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatency,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to id.
func (m *Metrics) Inc(id MetricID) {
	m.Add(id, 1)
}

// Add adds n to id. Used for batch outcomes such as purge counts.
func (m *Metrics) Add(id MetricID, n uint64) {
	if !m.Enabled() || id >= MetricIDCount || n == 0 {
		return
	}
	m.counters[id].Add(n)
}

// Observe records d in the latency histogram of id. Only
// MetricValidateLatency carries a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if !m.LatencyEnabled() || id != MetricValidateLatency {
		return
	}
	m.validate[bucketIndex(d)].Add(1)
}

// Value returns the current value of id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot copies all counters. Disabled metrics yield empty maps.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if !m.Enabled() {
		return s
	}
	for id := range MetricIDCount {
		if id != MetricValidateLatency {
			s.Counters[id] = m.counters[id].Load()
		}
	}
	if m.enableLatency {
		buckets := make([]uint64, HistogramBucketCount)
		for i := range buckets {
			buckets[i] = m.validate[i].Load()
		}
		s.Histograms[MetricValidateLatency] = buckets
	}
	return s
}

// bucketIndex counts whole milliseconds, so 5.9ms still lands in the 5ms bucket.
func bucketIndex(d time.Duration) int {
	d = d.Truncate(time.Millisecond)
	i, _ := slices.BinarySearch(LatencyBounds[:], d)
	return i
}
