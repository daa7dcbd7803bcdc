// Package audit carries the engine's security event stream: the event
// vocabulary ([Type], [Code]), the [Event] record, sinks and the asynchronous
// [Dispatcher] that feeds them.
//
// # Delivery
//
// A Dispatcher owns one goroutine and one buffered channel. Events reach the
// sink in emission order. When the buffer is full an event is either dropped
// (DropIfFull) or the emitting operation waits. Close drains what was queued.
// A panicking sink loses that event only; the goroutine keeps running.
//
// # Architecture boundaries
//
// This package does not decide which events to emit or how engine errors map
// to codes; the root package owns both.
//
// # What this package must NOT do
//
//   - Record token values or passwords; Event.Token is a fingerprint.
//   - Import authcore or any sibling internal package.
package audit
