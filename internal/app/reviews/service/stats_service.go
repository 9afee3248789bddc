package service

import (
	"context"
	"fmt"
	"math"

	"berrymarket/internal/app/reviews/entity"
	"berrymarket/internal/app/reviews/repository"
	"berrymarket/pkg/logger"
	"berrymarket/pkg/metrics"

	"github.com/google/uuid"
)

const serviceName = "reviews"

// StatsService пересчитывает агрегат отзывов и записывает его на товар.
// Пересчёт всегда полный: среднее и счётчик вычисляются по всем текущим
// отзывам товара, без инкрементальных обновлений. Это дороже на запись,
// но любой успешный ресинк приводит агрегат к корректному значению
// независимо от того, какие ресинки до этого терялись или перегонялись
type StatsService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	cache       repository.StatsCache
}

// NewStatsService создает новый сервис агрегатов с внедрением зависимостей
func NewStatsService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	cache repository.StatsCache,
) *StatsService {
	return &StatsService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		cache:       cache,
	}
}

// ComputeStats вычисляет агрегат по текущим отзывам товара.
// Чистое чтение: для товара без отзывов возвращает (0, 0)
func (s *StatsService) ComputeStats(ctx context.Context, productID string) (*entity.ProductStats, error) {
	avg, count, err := s.reviewRepo.AggregateStats(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute product stats: %w", err)
	}

	return &entity.ProductStats{
		ProductID:       productID,
		AverageRating:   roundRating(avg),
		NumberOfReviews: count,
	}, nil
}

// Resync пересчитывает агрегат и перезаписывает его на строке товара.
// Идемпотентен: повторные вызовы без изменений отзывов дают тот же результат,
// поэтому доставка "хотя бы один раз" безопасна. Конкурентные ресинки одного
// товара сходятся к одному значению, побеждает последняя запись
func (s *StatsService) Resync(ctx context.Context, productID string) error {
	timer := metrics.NewTimer()

	stats, err := s.ComputeStats(ctx, productID)
	if err != nil {
		metrics.RecordResyncFailure(serviceName)
		return fmt.Errorf("resync of product %s failed: %w", productID, err)
	}

	id, err := uuid.Parse(productID)
	if err != nil {
		metrics.RecordResyncFailure(serviceName)
		return fmt.Errorf("resync of product %s failed: invalid product id: %w", productID, err)
	}

	if err := s.productRepo.UpdateRating(ctx, id, stats.AverageRating, stats.NumberOfReviews); err != nil {
		metrics.RecordResyncFailure(serviceName)
		return fmt.Errorf("resync of product %s failed: %w", productID, err)
	}

	// Кеш перезаписываем после успешной записи в каталог;
	// ошибка кеша не делает ресинк неудачным
	if err := s.cache.Set(ctx, stats); err != nil {
		logger.Warn().Err(err).Str("product_id", productID).Msg("Failed to refresh product stats cache")
	}

	metrics.RecordResyncSuccess(serviceName, timer.Duration())

	return nil
}

// GetProductStats возвращает агрегат товара, сначала пробуя кеш
func (s *StatsService) GetProductStats(ctx context.Context, productID string) (*entity.ProductStats, error) {
	cached, err := s.cache.Get(ctx, productID)
	if err != nil {
		logger.Warn().Err(err).Str("product_id", productID).Msg("Failed to read product stats cache")
	}
	if cached != nil {
		metrics.RecordCacheHit(serviceName, "product_stats")
		return cached, nil
	}
	metrics.RecordCacheMiss(serviceName, "product_stats")

	stats, err := s.ComputeStats(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, stats); err != nil {
		logger.Warn().Err(err).Str("product_id", productID).Msg("Failed to refresh product stats cache")
	}

	return stats, nil
}

// roundRating округляет среднюю оценку до одного знака после запятой,
// половина округляется вверх: 4.25 -> 4.3
func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
