package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons recorded on the eventsDropped counter.
const (
	dropMalformed          = "malformed"
	dropUnknownParticipant = "unknown_participant"
)

var (
	eventsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "splitparty",
		Subsystem: "reconcile",
		Name:      "events_applied_total",
		Help:      "Change events applied to a local snapshot, including idempotent no-ops.",
	}, []string{"entity", "op"})

	eventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "splitparty",
		Subsystem: "reconcile",
		Name:      "events_dropped_total",
		Help:      "Change events dropped without being applied.",
	}, []string{"entity", "reason"})
)
