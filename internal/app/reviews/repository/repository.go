package repository

import (
	"context"
	"errors"

	"berrymarket/internal/app/reviews/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("duplicate review")
	ErrProductNotFound = errors.New("product not found")
)

// ReviewRepository определяет методы для работы с отзывами в MongoDB
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	GetByProductID(ctx context.Context, productID string) ([]entity.Review, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	// Delete возвращает удалённый отзыв: после удаления ссылка на товар
	// доступна только из прежнего документа
	Delete(ctx context.Context, id string) (*entity.Review, error)
	// AggregateStats считает среднюю оценку и количество отзывов товара
	// на стороне MongoDB. Для товара без отзывов возвращает (0, 0)
	AggregateStats(ctx context.Context, productID string) (float64, int64, error)
	// DistinctProductIDs возвращает идентификаторы всех товаров,
	// у которых есть хотя бы один отзыв (для планового пересчёта)
	DistinctProductIDs(ctx context.Context) ([]string, error)
}

// ProductRepository определяет методы для работы с товарами в PostgreSQL.
// Каталог принадлежит внешнему сервису: здесь только чтение товара
// и запись двух агрегатных полей
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	UpdateRating(ctx context.Context, id uuid.UUID, averageRating float64, numberOfReviews int64) error
}

// StatsCache определяет методы кеширования агрегата в Redis
type StatsCache interface {
	// Get возвращает (nil, nil) при промахе кеша
	Get(ctx context.Context, productID string) (*entity.ProductStats, error)
	Set(ctx context.Context, stats *entity.ProductStats) error
	Close() error
}
