package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tributary_resolutions_total",
		Help: "Identity resolutions by cascade source.",
	}, []string{"source"})

	ContactsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tributary_contacts_created_total",
		Help: "Contacts auto-created by the resolution cascade.",
	})

	CompaniesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tributary_companies_created_total",
		Help: "Companies auto-created by domain resolution.",
	})

	AutoMerges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tributary_auto_merges_total",
		Help: "Auto-merge attempts by outcome.",
	}, []string{"outcome"})

	DuplicateGroups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tributary_duplicate_groups_total",
		Help: "Duplicate groups surfaced by the detector.",
	})

	MergedContacts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tributary_merged_contacts_total",
		Help: "Duplicate contacts merged into a primary.",
	})
)
