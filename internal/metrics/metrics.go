// Package metrics registers the Prometheus instrumentation for the
// guardian service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ParentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardian_parents_created_total",
		Help: "Number of parent accounts created.",
	})

	LinkOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guardian_link_operations_total",
		Help: "Parent-student link operations by outcome.",
	}, []string{"outcome"})

	SearchQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guardian_search_queries_total",
		Help: "Student search queries by kind.",
	}, []string{"kind"})

	RosterImports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardian_roster_imports_total",
		Help: "Number of roster import runs.",
	})

	StoreUnavailable = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardian_store_unavailable_total",
		Help: "Operations that failed because the document store was unreachable.",
	})
)

// Link operation outcomes
const (
	OutcomeLinked        = "linked"
	OutcomeAlreadyLinked = "already_linked"
	OutcomeRepaired      = "repaired"
	OutcomeUnlinked      = "unlinked"
	OutcomeFailed        = "failed"
)
