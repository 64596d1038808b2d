package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	loanTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "equipshare",
			Name:      "loan_transitions_total",
			Help:      "Loan status transitions by target status.",
		},
		[]string{"to"},
	)

	settingsChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "equipshare",
			Name:      "settings_changes_total",
			Help:      "Settings mutations by setting type.",
		},
		[]string{"setting_type"},
	)

	overdueMarked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "equipshare",
			Name:      "overdue_marked_total",
			Help:      "Loans promoted to OVERDUE by the reconciliation sweep.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "equipshare",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(loanTransitions, settingsChanges, overdueMarked, httpRequests)
	})
}

// IncLoanTransition increments the transition counter for a target status.
func IncLoanTransition(to string) {
	loanTransitions.WithLabelValues(to).Inc()
}

// IncSettingsChange increments the mutation counter for a setting type.
func IncSettingsChange(settingType string) {
	settingsChanges.WithLabelValues(settingType).Inc()
}

// AddOverdueMarked records loans promoted by one sweep run.
func AddOverdueMarked(n int) {
	overdueMarked.Add(float64(n))
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
