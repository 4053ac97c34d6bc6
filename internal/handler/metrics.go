package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedbackSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_feedback_submissions_total",
			Help: "Total number of feedback submissions by outcome.",
		},
		[]string{"status"},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_exports_total",
			Help: "Total number of catalog export downloads by format.",
		},
		[]string{"format"},
	)

	settingsMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_settings_mutations_total",
			Help: "Total number of settings mutations by operation.",
		},
		[]string{"operation"},
	)

	adminAuthFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "directory_admin_auth_failures_total",
		Help: "Total number of rejected admin area requests.",
	})
)
