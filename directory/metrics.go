package directory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var directoryFetch = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "profiledir_directory_fetch",
	Help: "Directory API requests, by endpoint and outcome",
}, []string{"endpoint", "status"})

var directoryFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "profiledir_directory_fetch_duration",
	Help:    "Time to complete a directory API request",
	Buckets: prometheus.ExponentialBucketsRange(0.001, 30, 20),
}, []string{"endpoint", "status"})
