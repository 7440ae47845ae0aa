package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Provider holds the domain-level Prometheus collectors. HTTP request
// metrics are owned by the transport middleware; these counters track
// operation outcomes regardless of transport.
type Provider struct {
	syncOutcomes      *prometheus.CounterVec
	promotionOutcomes *prometheus.CounterVec
}

// Attach registers the domain collectors with the given registerer and
// returns a provider handle. A nil registerer uses the default registry.
func Attach(reg prometheus.Registerer) (*Provider, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	syncOutcomes, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: "access",
		Name:      "claims_sync_total",
		Help:      "Claims synchronization attempts by outcome.",
	}, []string{"outcome"})
	if err != nil {
		return nil, err
	}

	promotionOutcomes, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: "access",
		Name:      "staff_promotions_total",
		Help:      "Staff promotion attempts by outcome.",
	}, []string{"outcome"})
	if err != nil {
		return nil, err
	}

	return &Provider{
		syncOutcomes:      syncOutcomes,
		promotionOutcomes: promotionOutcomes,
	}, nil
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels []string) (*prometheus.CounterVec, error) {
	vec := prometheus.NewCounterVec(opts, labels)
	if err := reg.Register(vec); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, fmt.Errorf("register %s collector: %w", opts.Name, err)
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("existing %s collector has unexpected type %T", opts.Name, already.ExistingCollector)
		}
		vec = existing
	}
	return vec, nil
}

// RecordSyncOutcomes adds n observations of the given claims sync outcome.
func (p *Provider) RecordSyncOutcomes(outcome string, n int) {
	if p == nil || p.syncOutcomes == nil || n <= 0 {
		return
	}
	p.syncOutcomes.WithLabelValues(outcome).Add(float64(n))
}

// RecordPromotionOutcome counts one staff promotion attempt.
func (p *Provider) RecordPromotionOutcome(outcome string) {
	if p == nil || p.promotionOutcomes == nil {
		return
	}
	p.promotionOutcomes.WithLabelValues(outcome).Inc()
}
