// Package metrics exposes Prometheus counters for catalog changes and the
// /metrics endpoint that serves them.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Entity label values.
const (
	EntityGenre        = "genre"
	EntityAuthor       = "author"
	EntityBook         = "book"
	EntityBookInstance = "bookinstance"
)

// Operation label values.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_mutations_total",
		Help: "Records written to the catalog by entity and operation",
	}, []string{"entity", "operation"})

	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_rejected_submissions_total",
		Help: "Form submissions that failed validation by entity",
	}, []string{"entity"})

	blockedDeletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_blocked_deletes_total",
		Help: "Deletions refused because other records still refer to the entity",
	}, []string{"entity"})
)

func RecordMutation(entity, operation string) {
	mutationsTotal.WithLabelValues(entity, operation).Inc()
}

func RecordRejected(entity string) {
	rejectedTotal.WithLabelValues(entity).Inc()
}

func RecordBlockedDelete(entity string) {
	blockedDeletesTotal.WithLabelValues(entity).Inc()
}

// RegisterRoutes serves the default registry at /metrics.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
