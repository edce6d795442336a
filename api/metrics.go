/*
metrics.go - Prometheus metrics

PURPOSE:
  Counters for the ledger operations the ops dashboard watches: credits
  minted, days consumed, conflicts retried away, and sweep output.
  Registered via promauto on the default registry and served by the
  /metrics route in server.go.
*/
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metricGrantsMinted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "compoff_grants_minted_total",
	Help: "Credit grants created through earn-request approval or direct accrual.",
})

var metricDaysConsumed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "compoff_days_consumed_total",
	Help: "Comp-off days allocated against grants.",
})

var metricAllocationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "compoff_allocation_failures_total",
	Help: "Failed allocations by cause.",
}, []string{"cause"})

var metricReversals = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "compoff_reversals_total",
	Help: "Compensating events appended, by kind.",
}, []string{"kind"})

var metricSweepForfeited = promauto.NewCounter(prometheus.CounterOpts{
	Name: "compoff_sweep_days_forfeited_total",
	Help: "Days recorded as forfeited by expiry sweeps.",
})

var metricSweepRuns = promauto.NewCounter(prometheus.CounterOpts{
	Name: "compoff_sweep_runs_total",
	Help: "Expiry sweep executions, scheduled or manual.",
})
