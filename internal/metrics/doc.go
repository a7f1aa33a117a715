// Package metrics records check-run metrics for the watch loop.
//
// Components receive a Recorder and default to NoopRecorder, so callers never
// check for nil:
//
//	w := watch.New(opts) // uses metrics.NoopRecorder{}
//
// To export metrics, pass a PrometheusRecorder and serve its registry:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	http.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
