// Package metrics stores the engine's operation counters and the access-token
// validation latency histogram.
//
// Each counter owns a cache-line-padded slot and is bumped with a single
// atomic add; a disabled Metrics is a nil-safe no-op. The histogram has eight
// fixed buckets from 5ms up to +Inf. Neither path allocates.
//
// Snapshot copies every slot without stopping writers, so counters in one
// snapshot may be a few increments apart. Exporters under metrics/export read
// snapshots and never touch the slots.
//
// # What this package must NOT do
//
//   - Import authcore or any sibling package.
//   - Keep process-wide registries.
package metrics
