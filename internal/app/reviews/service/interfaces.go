package service

import (
	"context"

	"berrymarket/internal/app/reviews/entity"
)

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, userID string, req *entity.CreateReviewRequest) (*entity.Review, error)
	GetReview(ctx context.Context, reviewID string) (*entity.Review, error)
	GetReviewsByProduct(ctx context.Context, productID string) ([]entity.Review, error)
	GetUserReviews(ctx context.Context, userID string) ([]entity.Review, error)
	GetProductStats(ctx context.Context, productID string) (*entity.ProductStats, error)
	UpdateReview(ctx context.Context, reviewID string, userID string, req *entity.UpdateReviewRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, reviewID string, userID string) error
}

// StatsSyncer поддерживает денормализованный агрегат товара в актуальном
// состоянии. Единственный писатель полей average_rating / number_of_reviews
type StatsSyncer interface {
	ComputeStats(ctx context.Context, productID string) (*entity.ProductStats, error)
	Resync(ctx context.Context, productID string) error
	GetProductStats(ctx context.Context, productID string) (*entity.ProductStats, error)
}
