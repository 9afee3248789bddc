package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"berrymarket/internal/app/reviews/entity"
	"berrymarket/internal/app/reviews/infrastructure"
	"berrymarket/internal/app/reviews/repository"
	"berrymarket/pkg/logger"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("user already reviewed this product")
	ErrUnauthorized    = errors.New("unauthorized access to review")
)

// ReviewService управляет жизненным циклом отзывов.
// После каждой зафиксированной мутации (create, update, delete) запускает
// пересчёт агрегата товара и публикует событие в Kafka. Мутация и пересчёт
// не связаны транзакцией: отзыв живет в MongoDB, агрегат в PostgreSQL
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	statsSyncer   StatsSyncer
	kafkaProducer infrastructure.MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	statsSyncer StatsSyncer,
	kafkaProducer infrastructure.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		statsSyncer:   statsSyncer,
		kafkaProducer: kafkaProducer,
	}
}

// CreateReview создает новый отзыв.
// Второй отзыв того же пользователя на тот же товар отклоняется
// уникальным индексом и возвращается как ErrDuplicateReview:
// пользователь должен обновить существующий отзыв, а не создать новый
func (s *ReviewService) CreateReview(ctx context.Context, userID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	review := &entity.Review{
		ProductID: req.ProductID,
		UserID:    userID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.afterMutation(ctx, entity.EventReviewCreated, review)

	return review, nil
}

// GetReview получает отзыв по ID
func (s *ReviewService) GetReview(ctx context.Context, reviewID string) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return review, nil
}

// GetReviewsByProduct получает все отзывы по ID товара
func (s *ReviewService) GetReviewsByProduct(ctx context.Context, productID string) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	return reviews, nil
}

// GetUserReviews получает все отзывы пользователя
func (s *ReviewService) GetUserReviews(ctx context.Context, userID string) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user reviews: %w", err)
	}

	return reviews, nil
}

// GetProductStats возвращает агрегат отзывов товара
func (s *ReviewService) GetProductStats(ctx context.Context, productID string) (*entity.ProductStats, error) {
	return s.statsSyncer.GetProductStats(ctx, productID)
}

// UpdateReview обновляет отзыв с проверкой прав доступа
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID string, userID string, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	// Обновлять отзыв может только его автор
	if review.UserID != userID {
		return nil, ErrUnauthorized
	}

	// Обновляем только переданные поля
	if req.Rating > 0 {
		review.Rating = req.Rating
	}
	if req.Title != "" {
		review.Title = req.Title
	}
	if req.Comment != "" {
		review.Comment = req.Comment
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.afterMutation(ctx, entity.EventReviewUpdated, review)

	return review, nil
}

// DeleteReview удаляет отзыв с проверкой прав доступа.
// ID товара для пересчёта берется из удалённого документа
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID string, userID string) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get review: %w", err)
	}

	if review.UserID != userID {
		return ErrUnauthorized
	}

	deleted, err := s.reviewRepo.Delete(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	s.afterMutation(ctx, entity.EventReviewDeleted, deleted)

	return nil
}

// afterMutation - пост-коммитный шаг мутации отзыва: пересчёт агрегата
// товара и публикация события. Отзыв уже зафиксирован, поэтому ошибки
// здесь не возвращаются вызывающему и не откатывают мутацию. Неудачный
// ресинк оставляет агрегат устаревшим до повторного пересчёта воркером
// или следующей мутацией по этому товару
func (s *ReviewService) afterMutation(ctx context.Context, eventType string, review *entity.Review) {
	if review.ProductID == "" {
		// Не должно происходить: product_id обязателен при создании
		logger.Warn().
			Str("review_id", review.ID.Hex()).
			Str("event_type", eventType).
			Msg("Review has no product id, skipping resync")
		return
	}

	if err := s.statsSyncer.Resync(ctx, review.ProductID); err != nil {
		logger.Error().
			Err(err).
			Str("product_id", review.ProductID).
			Str("event_type", eventType).
			Msg("Failed to resync product stats, aggregate is stale until retried")
	}

	event := entity.ReviewEvent{
		EventType: eventType,
		ReviewID:  review.ID.Hex(),
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Timestamp: time.Now(),
	}

	if err := s.publishReviewEvent(ctx, event); err != nil {
		logger.Warn().
			Err(err).
			Str("product_id", review.ProductID).
			Msg("Failed to publish review event")
	}
}

// publishReviewEvent отправляет событие об отзыве в Kafka.
// Ключ - ProductID, чтобы события одного товара попадали в одну партицию
func (s *ReviewService) publishReviewEvent(ctx context.Context, event entity.ReviewEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal review event: %w", err)
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.ProductID, eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
