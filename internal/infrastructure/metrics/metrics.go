package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OfferMetrics holds the negotiation counters and histograms.
type OfferMetrics struct {
	// Requests
	RequestsCreatedTotal *prometheus.CounterVec
	RequestsDeletedTotal prometheus.Counter

	// Offers
	OffersSubmittedTotal       *prometheus.CounterVec
	OffersSubmittedAmountTotal *prometheus.CounterVec
	OffersPendingGauge         prometheus.Gauge
	OffersFinalizedTotal       *prometheus.CounterVec
	OfferSubmitConflictsTotal  prometheus.Counter

	// Time from submission to terminal status
	OfferDecisionDuration *prometheus.HistogramVec

	// Wizard
	WizardOutcomesTotal *prometheus.CounterVec

	// Expiry sweep
	SweepDuration        prometheus.Histogram
	SweepExpiredTotal    prometheus.Counter
	SweepRacesLostTotal  prometheus.Counter
	SweepErrorsTotal     prometheus.Counter
	ArbitrationLostTotal *prometheus.CounterVec
}

// NewOfferMetrics registers every collector in reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func NewOfferMetrics(reg prometheus.Registerer) *OfferMetrics {
	factory := promauto.With(reg)

	return &OfferMetrics{
		RequestsCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dish_requests_created_total",
				Help: "Total number of dish requests created",
			},
			[]string{"fulfillment"},
		),
		RequestsDeletedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dish_requests_deleted_total",
				Help: "Total number of dish requests deleted by their owners",
			},
		),

		OffersSubmittedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "offers_submitted_total",
				Help: "Total number of offers submitted by sellers",
			},
			[]string{"fulfillment", "counter_priced"},
		),
		OffersSubmittedAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "offers_submitted_amount_total",
				Help: "Sum of offer prices at submission",
			},
			[]string{"fulfillment"},
		),
		OffersPendingGauge: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "offers_pending",
				Help: "Offers submitted by this process that are still pending",
			},
		),
		OffersFinalizedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "offers_finalized_total",
				Help: "Total number of offers that reached a terminal status",
			},
			[]string{"status", "reason"},
		),
		OfferSubmitConflictsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "offer_submit_conflicts_total",
				Help: "Submissions rejected because the seller already had a pending offer",
			},
		),

		OfferDecisionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "offer_decision_duration_seconds",
				Help:    "Time between offer submission and its terminal status",
				Buckets: prometheus.ExponentialBuckets(5, 2, 10), // 5s .. ~43m
			},
			[]string{"status"},
		),

		WizardOutcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "offer_wizard_outcomes_total",
				Help: "Qualification wizard sessions by outcome",
			},
			[]string{"outcome"},
		),

		SweepDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "offer_expiry_sweep_duration_seconds",
				Help:    "Duration of one expiry sweep",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
		),
		SweepExpiredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "offer_expiry_sweep_expired_total",
				Help: "Offers moved to expired by the sweep",
			},
		),
		SweepRacesLostTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "offer_expiry_sweep_races_lost_total",
				Help: "Overdue offers the sweep skipped because they were finalized first",
			},
		),
		SweepErrorsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "offer_expiry_sweep_errors_total",
				Help: "Sweeps or per-offer expirations that failed on storage errors",
			},
		),
		ArbitrationLostTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "offer_arbitration_stale_total",
				Help: "Decisions refused because the offer was already finalized",
			},
			[]string{"decision"},
		),
	}
}

func (m *OfferMetrics) RecordRequestCreated(fulfillment string) {
	m.RequestsCreatedTotal.WithLabelValues(fulfillment).Inc()
}

func (m *OfferMetrics) RecordRequestDeleted() {
	m.RequestsDeletedTotal.Inc()
}

func (m *OfferMetrics) RecordOfferSubmitted(fulfillment string, counterPriced bool, price float64) {
	counter := "false"
	if counterPriced {
		counter = "true"
	}
	m.OffersSubmittedTotal.WithLabelValues(fulfillment, counter).Inc()
	m.OffersSubmittedAmountTotal.WithLabelValues(fulfillment).Add(price)
	m.OffersPendingGauge.Inc()
}

func (m *OfferMetrics) RecordSubmitConflict() {
	m.OfferSubmitConflictsTotal.Inc()
}

func (m *OfferMetrics) RecordOfferFinalized(status, reason string, sinceSubmitSeconds float64) {
	m.OffersFinalizedTotal.WithLabelValues(status, reason).Inc()
	m.OffersPendingGauge.Dec()
	if sinceSubmitSeconds >= 0 {
		m.OfferDecisionDuration.WithLabelValues(status).Observe(sinceSubmitSeconds)
	}
}

func (m *OfferMetrics) RecordWizardOutcome(outcome string) {
	m.WizardOutcomesTotal.WithLabelValues(outcome).Inc()
}

func (m *OfferMetrics) RecordSweep(durationSeconds float64, expired, racesLost int) {
	m.SweepDuration.Observe(durationSeconds)
	m.SweepExpiredTotal.Add(float64(expired))
	m.SweepRacesLostTotal.Add(float64(racesLost))
}

func (m *OfferMetrics) RecordSweepError() {
	m.SweepErrorsTotal.Inc()
}

func (m *OfferMetrics) RecordArbitrationStale(decision string) {
	m.ArbitrationLostTotal.WithLabelValues(decision).Inc()
}
