// Package internaldefs holds the metric names and bucket bounds shared by the
// exporter implementations.
//
// Both the Prometheus and OTel exporters read these definitions, so they
// always agree on names. Changing a definition here changes every exporter.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
