package entity

import "strings"

// CreateReviewRequest - запрос на создание отзыва
type CreateReviewRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Title     string `json:"title" validate:"required,min=3,max=30"`
	Comment   string `json:"comment" validate:"required,min=3,max=400"`
}

// Normalize обрезает пробелы по краям текстовых полей.
// Вызывается до валидации, чтобы границы длины проверялись по чистому тексту
func (r *CreateReviewRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Comment = strings.TrimSpace(r.Comment)
}

// UpdateReviewRequest - запрос на обновление отзыва.
// Товар и автор не меняются после создания
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Title   string `json:"title" validate:"omitempty,min=3,max=30"`
	Comment string `json:"comment" validate:"omitempty,min=3,max=400"`
}

func (r *UpdateReviewRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Comment = strings.TrimSpace(r.Comment)
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ReviewListResponse - ответ со списком отзывов
type ReviewListResponse struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
}
