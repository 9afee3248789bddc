package entity

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review - отзыв пользователя о товаре, хранится в MongoDB.
// Пара (product_id, user_id) уникальна: один пользователь может
// оставить только один отзыв на товар (compound unique index)
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID string             `json:"product_id" bson:"product_id"` // UUID товара из каталога (PostgreSQL)
	UserID    string             `json:"user_id" bson:"user_id"`       // UUID автора из Auth Service
	Rating    int                `json:"rating" bson:"rating"`         // Оценка от 1 до 5
	Title     string             `json:"title" bson:"title"`           // Заголовок отзыва
	Comment   string             `json:"comment" bson:"comment"`       // Текст отзыва
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Product - строка каталога в PostgreSQL.
// AverageRating и NumberOfReviews - денормализованный агрегат по отзывам,
// записывается исключительно через StatsService.Resync
type Product struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           float64   `json:"price"`
	AverageRating   float64   `json:"average_rating"`    // Средняя оценка [0,5], один знак после запятой
	NumberOfReviews int64     `json:"number_of_reviews"` // Количество отзывов
	CreatedAt       time.Time `json:"created_at"`
}

// ProductStats - агрегат отзывов по товару
type ProductStats struct {
	ProductID       string  `json:"product_id"`
	AverageRating   float64 `json:"average_rating"`
	NumberOfReviews int64   `json:"number_of_reviews"`
}

// Типы событий жизненного цикла отзыва
const (
	EventReviewCreated = "REVIEW_CREATED"
	EventReviewUpdated = "REVIEW_UPDATED"
	EventReviewDeleted = "REVIEW_DELETED"
)

// ReviewEvent - событие изменения отзыва для Kafka.
// Воркер повторно запускает пересчёт агрегата по каждому событию
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED, REVIEW_UPDATED, REVIEW_DELETED
	ReviewID  string    `json:"review_id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}
