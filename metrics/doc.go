// Package metrics exposes Prometheus instrumentation for the
// synchronization core: routed and dropped events, store refreshes and
// their failures, and the number of live value subscriptions. Metrics are
// registered on the default registry; serve them with promhttp.
package metrics
