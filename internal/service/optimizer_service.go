package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"load-optimizer/internal/algorithm"
	"load-optimizer/internal/cache"
	"load-optimizer/internal/domain"
	"load-optimizer/internal/metrics"
)

type OptimizerService struct {
	optimizer algorithm.Optimizer
	validator domain.CompatibilityValidator
	cache     cache.Cache
	maxOrders int
	group     singleflight.Group
}

type Option func(*OptimizerService)

func WithCache(c cache.Cache) Option {
	return func(s *OptimizerService) { s.cache = c }
}

func WithOptimizer(o algorithm.Optimizer) Option {
	return func(s *OptimizerService) { s.optimizer = o }
}

// NewOptimizerService wires the subset search with a validator built from
// maxWindowDays. Without WithCache results are not cached.
func NewOptimizerService(maxOrders, maxWindowDays int, opts ...Option) *OptimizerService {
	validator := domain.NewCompatibilityValidator(maxWindowDays)
	s := &OptimizerService{
		optimizer: algorithm.NewCombinationSelector(validator),
		validator: validator,
		maxOrders: maxOrders,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OptimizerService) MaxOrders() int {
	return s.maxOrders
}

func (s *OptimizerService) OptimizeLoad(ctx context.Context, request domain.OptimizeRequest) (*domain.OptimizeResponse, error) {
	if err := request.Validate(s.maxOrders); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	truck, orders := request.ToDomain()
	reqID := requestID(ctx)
	key := cache.Key(truck, orders, s.validator)

	if resp := s.lookup(ctx, key); resp != nil {
		log.Printf("req_id=%s op=optimize truck=%s orders=%d cache=hit", reqID, truck.ID, len(orders))
		return resp, nil
	}

	v, _, _ := s.group.Do(key, func() (any, error) {
		resp := s.run(reqID, truck, orders)
		s.store(ctx, key, resp)
		return resp, nil
	})

	// Shared results are copied so concurrent callers never alias one slice.
	resp := *v.(*domain.OptimizeResponse)
	resp.SelectedOrderIDs = append([]string{}, resp.SelectedOrderIDs...)
	return &resp, nil
}

func (s *OptimizerService) run(reqID string, truck domain.Truck, orders []domain.Order) *domain.OptimizeResponse {
	start := time.Now()
	result := s.optimizer.Optimize(truck, orders)
	dur := time.Since(start)

	metrics.OptimizeDuration.Observe(dur.Seconds())
	metrics.CandidateOrders.Observe(float64(len(orders)))
	if result.Filtered > 0 {
		log.Printf("req_id=%s truck=%s dropped=%d orders exceed capacity on their own", reqID, truck.ID, result.Filtered)
	}

	if result.Empty() {
		metrics.Optimizations.WithLabelValues("empty").Inc()
		code := ""
		if len(orders) > 0 {
			code = " code=" + string(domain.CodeNoFeasibleSolution)
		}
		log.Printf("req_id=%s op=optimize truck=%s orders=%d selected=0 dur=%dms%s",
			reqID, truck.ID, len(orders), dur.Milliseconds(), code)
	} else {
		metrics.Optimizations.WithLabelValues("selected").Inc()
		log.Printf("req_id=%s op=optimize truck=%s orders=%d selected=%d payout=%s dur=%dms",
			reqID, truck.ID, len(orders), len(result.SelectedOrders),
			result.TotalPayout.ToDollars(), dur.Milliseconds())
	}

	return buildResponse(result)
}

func (s *OptimizerService) lookup(ctx context.Context, key string) *domain.OptimizeResponse {
	if s.cache == nil {
		return nil
	}
	resp, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return resp
	case errors.Is(err, cache.ErrMiss):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		log.Printf("req_id=%s op=cache_get err=%v", requestID(ctx), err)
	}
	return nil
}

func (s *OptimizerService) store(ctx context.Context, key string, resp *domain.OptimizeResponse) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, resp); err != nil {
		log.Printf("req_id=%s op=cache_set err=%v", requestID(ctx), err)
	}
}

// ValidateLoad reports whether the orders could share one truck, without
// running the search.
func (s *OptimizerService) ValidateLoad(request domain.ValidateRequest) (*domain.ValidateResponse, error) {
	if err := request.Validate(s.maxOrders); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	ok, reason := s.validator.Validate(request.ToDomain())
	return &domain.ValidateResponse{
		Compatible: ok,
		Code:       reason.Code(),
		Reason:     string(reason),
	}, nil
}

func buildResponse(result algorithm.Result) *domain.OptimizeResponse {
	return &domain.OptimizeResponse{
		TruckID:                  result.TruckID,
		SelectedOrderIDs:         result.SelectedOrderIDs(),
		TotalPayoutCents:         int64(result.TotalPayout),
		TotalWeightLbs:           result.TotalWeight,
		TotalVolumeCuft:          result.TotalVolume,
		UtilizationWeightPercent: result.UtilizationWeightPercent,
		UtilizationVolumePercent: result.UtilizationVolumePercent,
	}
}

func (s *OptimizerService) HealthCheck() map[string]interface{} {
	return map[string]interface{}{
		"status":     "healthy",
		"service":    "optimizer",
		"algorithm":  "exhaustive-bitmask",
		"max_orders": s.maxOrders,
		"timestamp":  time.Now().Unix(),
	}
}

type ctxKey string

// RequestIDKey carries the request id through context for log correlation.
const RequestIDKey ctxKey = "req_id"

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
