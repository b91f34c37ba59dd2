package analytics

import (
	"context"
	"errors"
	"time"

	"boxstudio/internal/shared/apperror"
	"boxstudio/internal/shared/constants"
	"boxstudio/pkg/cache"
	"boxstudio/pkg/logger"
	"boxstudio/pkg/metrics"
)

const (
	slowAggregationThreshold = 500 * time.Millisecond
)

var errMetricNotFound = apperror.WithMessage(apperror.ErrNotFound, "Metric not found")

type Service interface {
	GetFacts(ctx context.Context) (*Facts, error)
	GetKPIs(ctx context.Context) (*KPIs, error)

	RevenueCents(ctx context.Context, start, end time.Time) (int64, error)
	RefundRate(ctx context.Context, start, end time.Time) (*float64, error)
	WhatsAppDeliveryRate(ctx context.Context, start, end time.Time) (*float64, error)
	GetWindowed(ctx context.Context, start, end time.Time) (*WindowedMetrics, error)

	GetSummary(ctx context.Context) (*Summary, error)
	GetTotals(ctx context.Context) (*Totals, error)

	ListMetrics() []Metric
	GetMetric(name string) (*Metric, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	now   func() time.Time
	log   *logger.Logger
}

// NewService builds the analytics service. A nil cacheService disables caching.
func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{
		repo:  repo,
		cache: cacheService,
		now:   func() time.Time { return time.Now().UTC() },
		log:   logger.GetDefault(),
	}
}

func (s *service) GetFacts(ctx context.Context) (*Facts, error) {
	return cached(ctx, s, "facts", constants.CACHE_KEY_ANALYTICS_FACTS, constants.TTL_ANALYTICS_FACTS, s.repo.FactsSnapshot)
}

func (s *service) GetKPIs(ctx context.Context) (*KPIs, error) {
	return cached(ctx, s, "kpis", constants.CACHE_KEY_ANALYTICS_KPIS, constants.TTL_ANALYTICS_KPIS, s.computeKPIs)
}

func (s *service) computeKPIs(ctx context.Context) (*KPIs, error) {
	in, err := s.repo.KPIInputs(ctx)
	if err != nil {
		return nil, err
	}
	kpis := ComputeKPIs(*in)
	return &kpis, nil
}

func (s *service) RevenueCents(ctx context.Context, start, end time.Time) (int64, error) {
	if start.After(end) {
		return 0, apperror.ErrInvalidWindow
	}
	paid, err := s.repo.SumPayments(ctx, start, end)
	if err != nil {
		return 0, unavailable(err)
	}
	refunded, err := s.repo.SumRefunds(ctx, start, end)
	if err != nil {
		return 0, unavailable(err)
	}
	return revenue(paid, refunded), nil
}

func (s *service) RefundRate(ctx context.Context, start, end time.Time) (*float64, error) {
	if start.After(end) {
		return nil, apperror.ErrInvalidWindow
	}
	paid, err := s.repo.SumPayments(ctx, start, end)
	if err != nil {
		return nil, unavailable(err)
	}
	if paid <= 0 {
		return nil, nil
	}
	refunded, err := s.repo.SumRefunds(ctx, start, end)
	if err != nil {
		return nil, unavailable(err)
	}
	return refundRate(paid, refunded), nil
}

func (s *service) WhatsAppDeliveryRate(ctx context.Context, start, end time.Time) (*float64, error) {
	if start.After(end) {
		return nil, apperror.ErrInvalidWindow
	}
	sent, err := s.repo.CountMessagesCreated(ctx, start, end)
	if err != nil {
		return nil, unavailable(err)
	}
	if sent <= 0 {
		return nil, nil
	}
	delivered, err := s.repo.CountDeliveredMessages(ctx, start, end)
	if err != nil {
		return nil, unavailable(err)
	}
	return deliveryRate(delivered, sent), nil
}

func (s *service) GetWindowed(ctx context.Context, start, end time.Time) (*WindowedMetrics, error) {
	if start.After(end) {
		return nil, apperror.ErrInvalidWindow
	}
	start, end = start.UTC(), end.UTC()
	key := constants.BuildAnalyticsWindowKey(start, end)
	return cached(ctx, s, "windowed", key, constants.TTL_ANALYTICS_WINDOW, func(ctx context.Context) (*WindowedMetrics, error) {
		return s.computeWindow(ctx, start, end)
	})
}

func (s *service) computeWindow(ctx context.Context, start, end time.Time) (*WindowedMetrics, error) {
	paid, err := s.repo.SumPayments(ctx, start, end)
	if err != nil {
		return nil, err
	}
	refunded, err := s.repo.SumRefunds(ctx, start, end)
	if err != nil {
		return nil, err
	}
	sent, err := s.repo.CountMessagesCreated(ctx, start, end)
	if err != nil {
		return nil, err
	}
	delivered, err := s.repo.CountDeliveredMessages(ctx, start, end)
	if err != nil {
		return nil, err
	}

	return &WindowedMetrics{
		Start:                start,
		End:                  end,
		RevenueCents:         revenue(paid, refunded),
		RefundRate:           refundRate(paid, refunded),
		WhatsAppDeliveryRate: deliveryRate(delivered, sent),
	}, nil
}

func (s *service) GetTotals(ctx context.Context) (*Totals, error) {
	return cached(ctx, s, "totals", constants.CACHE_KEY_ANALYTICS_TOTALS, constants.TTL_ANALYTICS_TOTALS, s.repo.Totals)
}

func (s *service) ListMetrics() []Metric {
	return All()
}

func (s *service) GetMetric(name string) (*Metric, error) {
	m, ok := Lookup(name)
	if !ok {
		return nil, errMetricNotFound
	}
	return &m, nil
}

// cached serves from Redis when possible and records timing for fresh computations.
// Cache failures never fail the request.
func cached[T any](ctx context.Context, s *service, metric, key string, ttl time.Duration, compute func(context.Context) (*T, error)) (*T, error) {
	if s.cache != nil {
		var hit T
		err := s.cache.Get(ctx, key, &hit)
		if err == nil {
			metrics.AnalyticsCacheTotal.WithLabelValues(metric, "hit").Inc()
			return &hit, nil
		}
		metrics.AnalyticsCacheTotal.WithLabelValues(metric, "miss").Inc()
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "Analytics cache read failed", "key", key, "error", err.Error())
		}
	}

	start := time.Now()
	value, err := compute(ctx)
	elapsed := time.Since(start)
	metrics.AnalyticsDuration.WithLabelValues(metric).Observe(elapsed.Seconds())
	if elapsed > slowAggregationThreshold {
		s.log.LogSlowAggregation(ctx, metric, elapsed)
	}
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, unavailable(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, value, ttl); err != nil {
			s.log.WarnContext(ctx, "Analytics cache write failed", "key", key, "error", err.Error())
		}
	}
	return value, nil
}

func unavailable(err error) error {
	logger.GetDefault().Error("Aggregation failed", "error", err.Error())
	return apperror.Wrap(err, apperror.ErrAggregationUnavailable)
}
