package repository

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/employeedir/core/internal/domain/entities"
	"github.com/employeedir/core/internal/infrastructure/logger"
	"github.com/employeedir/core/internal/ports"
)

// StoreMetrics holds the collectors shared by every instrumented store
type StoreMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	records    prometheus.Gauge
}

// NewStoreMetrics creates and registers the document store collectors
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "employee_store_operations_total",
				Help: "Total number of document store operations",
			},
			[]string{"op", "backend", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "employee_store_operation_duration_seconds",
				Help:    "Document store operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op", "backend"},
		),
		records: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "employee_records",
				Help: "Number of employee records in the last loaded or saved document",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.operations, m.duration, m.records)
	}
	return m
}

// InstrumentedStore decorates a DocumentStore with logging and metrics
type InstrumentedStore struct {
	inner   ports.DocumentStore
	backend string
	metrics *StoreMetrics
	logger  *logger.Logger
}

// NewInstrumentedStore wraps inner; metrics may be nil
func NewInstrumentedStore(inner ports.DocumentStore, backend string, metrics *StoreMetrics, log *logger.Logger) ports.DocumentStore {
	if metrics == nil {
		metrics = NewStoreMetrics(nil)
	}
	return &InstrumentedStore{
		inner:   inner,
		backend: backend,
		metrics: metrics,
		logger:  log.WithComponent("document_store"),
	}
}

func (s *InstrumentedStore) EnsureInitialized(ctx context.Context) error {
	start := time.Now()
	err := s.inner.EnsureInitialized(ctx)
	s.observe("init", start, -1, err)
	return err
}

func (s *InstrumentedStore) Load(ctx context.Context) (*entities.Document, error) {
	start := time.Now()
	doc, err := s.inner.Load(ctx)
	records := -1
	if doc != nil {
		records = len(doc.Employees)
	}
	s.observe("load", start, records, err)
	return doc, err
}

func (s *InstrumentedStore) Save(ctx context.Context, doc *entities.Document) error {
	start := time.Now()
	err := s.inner.Save(ctx, doc)
	records := -1
	if err == nil {
		records = len(doc.Employees)
	}
	s.observe("save", start, records, err)
	return err
}

func (s *InstrumentedStore) Close() error {
	return s.inner.Close()
}

func (s *InstrumentedStore) observe(op string, start time.Time, records int, err error) {
	elapsed := time.Since(start)

	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.operations.WithLabelValues(op, s.backend, result).Inc()
	s.metrics.duration.WithLabelValues(op, s.backend).Observe(elapsed.Seconds())
	if records >= 0 {
		s.metrics.records.Set(float64(records))
	}

	s.logger.LogStoreOperation(op, s.backend, records, float64(elapsed.Nanoseconds())/1e6, err)
}
