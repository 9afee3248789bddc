package processor

import (
	"context"

	"berrymarket/internal/app/reviews/repository"
	"berrymarket/internal/app/reviews/service"
	"berrymarket/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler периодически пересчитывает агрегаты всех товаров с отзывами.
// Страховка от застрявшей рассинхронизации: даже если и встроенный ресинк,
// и событие в Kafka были потеряны, плановый обход вернет агрегат в норму
type CronScheduler struct {
	cron        *cron.Cron
	reviewRepo  repository.ReviewRepository
	statsSyncer service.StatsSyncer
}

func NewCronScheduler(reviewRepo repository.ReviewRepository, statsSyncer service.StatsSyncer) *CronScheduler {
	return &CronScheduler{
		cron:        cron.New(),
		reviewRepo:  reviewRepo,
		statsSyncer: statsSyncer,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting resync cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.ResyncAll(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping resync cron scheduler...")
	<-s.cron.Stop().Done()
	logger.Info().Msg("Resync cron scheduler stopped")
}

// ResyncAll пересчитывает агрегат каждого товара, у которого есть отзывы.
// Ошибки отдельных товаров не прерывают обход
func (s *CronScheduler) ResyncAll(ctx context.Context) {
	productIDs, err := s.reviewRepo.DistinctProductIDs(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list products for resync sweep")
		return
	}

	logger.Info().Int("products", len(productIDs)).Msg("Resync sweep started")

	var failed int
	for _, productID := range productIDs {
		if err := s.statsSyncer.Resync(ctx, productID); err != nil {
			logger.Error().Err(err).Str("product_id", productID).Msg("Failed to resync product")
			failed++
		}
	}

	logger.Info().
		Int("products", len(productIDs)).
		Int("failed", failed).
		Msg("Resync sweep finished")
}
