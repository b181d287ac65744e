package starterauth

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the engine's prometheus instruments. A nil receiver is a
// no-op, so flows record unconditionally.
type Metrics struct {
	loginSuccess   prometheus.Counter
	loginFailure   prometheus.Counter
	refreshSuccess prometheus.Counter
	refreshFailure prometheus.Counter

	sessionsCreated prometheus.Counter
	sessionsRevoked prometheus.Counter

	hashIssued   *prometheus.CounterVec
	hashConsumed *prometheus.CounterVec
	hashRejected *prometheus.CounterVec
}

// NewMetrics builds and registers the engine instruments. A nil registerer
// returns nil, which every recording method tolerates.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "starterauth",
			Name:      "login_success_total",
			Help:      "Successful logins.",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "starterauth",
			Name:      "login_failure_total",
			Help:      "Rejected logins.",
		}),
		refreshSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "starterauth",
			Name:      "refresh_success_total",
			Help:      "Successful token refreshes.",
		}),
		refreshFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "starterauth",
			Name:      "refresh_failure_total",
			Help:      "Rejected token refreshes.",
		}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "starterauth",
			Name:      "sessions_created_total",
			Help:      "Sessions registered.",
		}),
		sessionsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "starterauth",
			Name:      "sessions_revoked_total",
			Help:      "Sessions revoked, including logout-all fan-out.",
		}),
		hashIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "starterauth",
			Name:      "operation_hash_issued_total",
			Help:      "Operation hashes generated and dispatched.",
		}, []string{"operation"}),
		hashConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "starterauth",
			Name:      "operation_hash_consumed_total",
			Help:      "Operation hashes verified and consumed.",
		}, []string{"operation"}),
		hashRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "starterauth",
			Name:      "operation_hash_rejected_total",
			Help:      "Operation hashes rejected during verification.",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		m.loginSuccess, m.loginFailure,
		m.refreshSuccess, m.refreshFailure,
		m.sessionsCreated, m.sessionsRevoked,
		m.hashIssued, m.hashConsumed, m.hashRejected,
	)
	return m
}

func (m *Metrics) LoginSuccess() {
	if m != nil {
		m.loginSuccess.Inc()
	}
}

func (m *Metrics) LoginFailure() {
	if m != nil {
		m.loginFailure.Inc()
	}
}

func (m *Metrics) RefreshSuccess() {
	if m != nil {
		m.refreshSuccess.Inc()
	}
}

func (m *Metrics) RefreshFailure() {
	if m != nil {
		m.refreshFailure.Inc()
	}
}

func (m *Metrics) SessionCreated() {
	if m != nil {
		m.sessionsCreated.Inc()
	}
}

func (m *Metrics) SessionsRevoked(n int) {
	if m != nil && n > 0 {
		m.sessionsRevoked.Add(float64(n))
	}
}

func (m *Metrics) HashIssued(op OperationType) {
	if m != nil {
		m.hashIssued.WithLabelValues(op.String()).Inc()
	}
}

func (m *Metrics) HashConsumed(op OperationType) {
	if m != nil {
		m.hashConsumed.WithLabelValues(op.String()).Inc()
	}
}

func (m *Metrics) HashRejected(op OperationType) {
	if m != nil {
		m.hashRejected.WithLabelValues(op.String()).Inc()
	}
}
