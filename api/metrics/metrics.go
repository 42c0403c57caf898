// Package metrics defines the Prometheus metrics of the catalog API. It is
// the single source of truth for metric names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cineteca"

// LoginsTotal counts login attempts.
// Label:
//   - outcome: "success", "invalid_credentials", "disabled", "unconfirmed", "not_found"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// SignupsTotal counts accounts created through the public signup endpoint.
var SignupsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of accounts created through signup.",
	},
)

// EmailConfirmationsTotal counts confirmation code redemptions.
// Label:
//   - result: "confirmed", "expired", "not_found"
var EmailConfirmationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_confirmations_total",
		Help:      "Total number of confirmation code redemptions, by result.",
	},
	[]string{"result"},
)

// EmailFailuresTotal counts outbound emails rejected by the provider.
var EmailFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_failures_total",
		Help:      "Total number of outbound emails the provider did not accept.",
	},
)

// CatalogWritesTotal counts catalog mutations.
// Labels:
//   - entity: "movie", "studio", "category"
//   - op: "create", "update", "delete"
var CatalogWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_writes_total",
		Help:      "Total number of catalog writes, by entity and operation.",
	},
	[]string{"entity", "op"},
)
