// Package otel exports authcore metrics through an OpenTelemetry Meter.
//
// [NewOTelExporter] registers one Int64ObservableCounter per engine counter.
// Each latency histogram becomes a cumulative "_bucket" gauge carrying an "le"
// attribute and a "_count" gauge. One callback reads
// [authcore.Engine.MetricsSnapshot] per collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider; callers supply the Meter.
//   - Mutate engine state.
package otel
