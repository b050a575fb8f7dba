package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lookupOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "profiledir_store_lookups",
	Help: "Profile lookups applied to store state, by final status",
}, []string{"status"})

var listOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "profiledir_store_list_loads",
	Help: "Relation list loads applied to store state, by list and outcome",
}, []string{"list", "status"})

var staleResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "profiledir_store_stale_results",
	Help: "Results discarded because a newer request superseded them",
}, []string{"operation"})
