// Package observe provides telemetry for health graph evaluation.
//
// It is a pure instrumentation library: no evaluation of its own, no
// transport, no I/O beyond exporter setup. Hosts wrap their checks and
// refresh calls through a Middleware and wire the exporters they want.
package observe
