package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"hdgold/core/events"
	"hdgold/core/types"
)

// Metrics exposes counters for the ledger's audit events. It satisfies the
// event sink interface so the node can fan committed events into it.
type Metrics struct {
	mints              prometheus.Counter
	redemptionsUSDT    prometheus.Counter
	redemptionsPhys    prometheus.Counter
	stakes             prometheus.Counter
	unstakes           prometheus.Counter
	claims             prometheus.Counter
	reserveShortfalls  prometheus.Counter
	vouchersRedeemed   prometheus.Counter
	priceUpdates       prometheus.Counter
	eventsByType       *prometheus.CounterVec
}

// New registers the ledger metrics with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mints: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hdgold", Subsystem: "vault", Name: "mints_total",
			Help: "Number of committed stablecoin-to-chi mints.",
		}),
		redemptionsUSDT: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hdgold", Subsystem: "vault", Name: "redemptions_usdt_total",
			Help: "Number of committed chi-to-stablecoin redemptions.",
		}),
		redemptionsPhys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hdgold", Subsystem: "vault", Name: "redemptions_physical_total",
			Help: "Number of committed physical-delivery claims.",
		}),
		stakes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hdgold", Subsystem: "staking", Name: "stakes_total",
			Help: "Number of committed stake deposits.",
		}),
		unstakes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hdgold", Subsystem: "staking", Name: "unstakes_total",
			Help: "Number of committed unstakes.",
		}),
		claims: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hdgold", Subsystem: "staking", Name: "reward_claims_total",
			Help: "Number of committed reward claims.",
		}),
		reserveShortfalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hdgold", Subsystem: "staking", Name: "reserve_shortfalls_total",
			Help: "Number of reward payouts blocked by an insufficient reserve.",
		}),
		vouchersRedeemed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hdgold", Subsystem: "staking", Name: "vouchers_redeemed_total",
			Help: "Number of committed voucher redemptions.",
		}),
		priceUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hdgold", Subsystem: "oracle", Name: "price_updates_total",
			Help: "Number of accepted price observations.",
		}),
		eventsByType: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hdgold", Subsystem: "events", Name: "emitted_total",
			Help: "All committed audit events by type.",
		}, []string{"type"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.mints, m.redemptionsUSDT, m.redemptionsPhys,
			m.stakes, m.unstakes, m.claims,
			m.reserveShortfalls, m.vouchersRedeemed, m.priceUpdates,
			m.eventsByType,
		)
	}
	return m
}

// Publish implements the event sink interface.
func (m *Metrics) Publish(evt *types.Event) {
	if m == nil || evt == nil {
		return
	}
	m.eventsByType.WithLabelValues(evt.Type).Inc()
	switch evt.Type {
	case events.TypeVaultMinted:
		m.mints.Inc()
	case events.TypeVaultRedeemedUSDT:
		m.redemptionsUSDT.Inc()
	case events.TypeVaultRedeemedPhysical:
		m.redemptionsPhys.Inc()
	case events.TypeStakingStaked:
		m.stakes.Inc()
	case events.TypeStakingUnstaked:
		m.unstakes.Inc()
	case events.TypeStakingRewardClaimed:
		m.claims.Inc()
	case events.TypeStakingInsufficientReserve:
		m.reserveShortfalls.Inc()
	case events.TypeStakingVoucherRedeemed:
		m.vouchersRedeemed.Inc()
	case events.TypePriceUpdated:
		m.priceUpdates.Inc()
	}
}
