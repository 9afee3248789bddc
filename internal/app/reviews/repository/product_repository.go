package repository

import (
	"context"
	"errors"
	"fmt"

	"berrymarket/internal/app/reviews/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// GetByID получает товар по ID
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product

	result := r.db.WithContext(ctx).Where("id = ?", id).First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", result.Error)
	}

	return &product, nil
}

// UpdateRating записывает агрегат отзывов на строку товара.
// Точечное обновление двух полей: среднее значение и счётчик
// всегда перезаписываются целиком, без инкрементов
func (r *productRepository) UpdateRating(ctx context.Context, id uuid.UUID, averageRating float64, numberOfReviews int64) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"average_rating":    averageRating,
			"number_of_reviews": numberOfReviews,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update product rating: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}
