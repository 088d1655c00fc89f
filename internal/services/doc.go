// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP handlers and the data pipeline so that handlers
// only translate requests and responses.
//
// # Available Services
//
//	- DatasetService: holds the current snapshot of the stations table,
//	  reloads it on demand or on a timer and announces every reload
//	- ReportService: resolves a partial selection against the dataset
//	  defaults and computes the dashboard report
//	- HealthService: liveness, readiness and version information
//
// # Concurrency
//
// The dataset snapshot is immutable and published through an atomic
// pointer. Readers never lock; a reload builds a new snapshot and swaps it
// in. Concurrent reloads share a single fetch.
//
// # Testing
//
// Services are tested by mocking their collaborators with testify:
//
//	src := new(MockSource)
//	src.On("Fetch", mock.Anything).Return(dataset, nil)
//	svc := NewDatasetService(src, nil, nil, nil, logger)
package services
