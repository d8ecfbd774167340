package settlement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Outcome string

const (
	OutcomeSettled       Outcome = "settled"
	OutcomeRepaired      Outcome = "repaired"
	OutcomeDuplicate     Outcome = "duplicate"
	OutcomeIgnored       Outcome = "ignored"
	OutcomeRejected      Outcome = "rejected"
	OutcomeOfferNotFound Outcome = "offer_not_found"
	OutcomeFailed        Outcome = "failed"
)

// Стадии, на которых ошибка проглатывается и только учитывается.
const (
	StageParseEvent      = "parse_event"
	StageLoadOffer       = "load_offer"
	StageTransition      = "transition"
	StageMarkSold        = "mark_sold"
	StageRecord          = "record_transaction"
	StageLookupLedger    = "lookup_transaction"
	StageNotify          = "notify"
	StageAmountMismatch  = "amount_mismatch"
	StageOrphanedPayment = "orphaned_payment"
)

type Metrics struct {
	settlements *prometheus.CounterVec
	errors      *prometheus.CounterVec
}

// NewMetrics регистрирует счётчики в reg; nil: счётчики без регистрации.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "card_market",
			Name:      "settlements_total",
			Help:      "Processed payment webhook deliveries by outcome.",
		}, []string{"outcome"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "card_market",
			Name:      "settlement_errors_total",
			Help:      "Absorbed settlement failures by stage.",
		}, []string{"stage"}),
	}
}

func (m *Metrics) outcome(o Outcome) {
	m.settlements.WithLabelValues(string(o)).Inc()
}

func (m *Metrics) failure(stage string) {
	m.errors.WithLabelValues(stage).Inc()
}

func (m *Metrics) Outcomes() *prometheus.CounterVec {
	return m.settlements
}

func (m *Metrics) Errors() *prometheus.CounterVec {
	return m.errors
}
