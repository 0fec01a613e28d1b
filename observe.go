package ftsi

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	metricsNamespace = "ftsi"
	metricsSubsystem = "sdk"
)

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	records    *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "operations_total",
			Help:      "SDK operations by entity and outcome.",
		}, []string{"operation", "entity", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "operation_duration_seconds",
			Help:      "SDK operation latency.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "records_total",
			Help:      "Records written, removed or returned by SDK operations.",
		}, []string{"operation", "entity"}),
	}
	if err := shareCollector(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := shareCollector(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := shareCollector(reg, &m.records); err != nil {
		return nil, err
	}
	return m, nil
}

// shareCollector registers c, or points c at an equivalent collector another
// client already registered on the same registry.
func shareCollector[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var dup prometheus.AlreadyRegisteredError
	if !errors.As(err, &dup) {
		return fmt.Errorf("ftsi: register metric: %w", err)
	}
	existing, ok := dup.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("ftsi: metric registered as %T", dup.ExistingCollector)
	}
	*c = existing
	return nil
}

// outcome labels an operation result by the error family it belongs to.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSchema):
		return "schema_error"
	case errors.Is(err, ErrNoKeyDefined):
		return "no_key"
	case errors.Is(err, ErrMapping):
		return "mapping_error"
	case errors.Is(err, ErrParse):
		return "parse_error"
	case errors.Is(err, ErrIO):
		return "io_error"
	default:
		return "error"
	}
}

type observer struct {
	logger  *zap.Logger
	metrics *sdkMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg == nil {
		return o, nil
	}
	m, err := newSDKMetrics(reg)
	if err != nil {
		return nil, err
	}
	o.metrics = m
	return o, nil
}

// span times one SDK call.
type span struct {
	obs    *observer
	op     string
	entity string
	start  time.Time
}

func (o *observer) begin(op, entity string) span {
	return span{obs: o, op: op, entity: entity, start: time.Now()}
}

// end records the call. records is how many records it wrote, removed or returned.
func (s span) end(err error, records int) {
	o := s.obs
	if o == nil {
		return
	}
	took := time.Since(s.start)
	label := outcome(err)

	if m := o.metrics; m != nil {
		m.operations.WithLabelValues(s.op, s.entity, label).Inc()
		m.duration.WithLabelValues(s.op).Observe(took.Seconds())
		if err == nil && records > 0 {
			m.records.WithLabelValues(s.op, s.entity).Add(float64(records))
		}
	}

	if o.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", s.op),
		zap.Duration("took", took),
	}
	if s.entity != "" {
		fields = append(fields, zap.String("entity", s.entity))
	}
	if err != nil {
		o.logger.Warn("sdk call failed", append(fields, zap.String("outcome", label), zap.Error(err))...)
		return
	}
	o.logger.Debug("sdk call", append(fields, zap.Int("records", records))...)
}
