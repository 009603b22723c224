// Package health reports whether the components behind a cache environment
// are usable.
//
// A Checker reports a Result with a Status of Healthy, Degraded or
// Unhealthy. StoreChecker pings a document store and is registered once
// per persistent service. An Aggregator runs every registered checker under
// a shared timeout and folds the results into one Status:
//
//	agg := health.NewAggregator()
//	agg.Register("views", health.NewStoreChecker("views", docs))
//	results := agg.CheckAll(ctx)
//	overall := health.Overall(results)
package health
