package service

import (
	"context"
	"errors"
	"testing"

	"berrymarket/internal/app/reviews/entity"
	"berrymarket/internal/app/reviews/repository"
	"berrymarket/internal/app/reviews/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockStatsSyncer мок для StatsSyncer
type MockStatsSyncer struct {
	mock.Mock
}

func (m *MockStatsSyncer) ComputeStats(ctx context.Context, productID string) (*entity.ProductStats, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductStats), args.Error(1)
}

func (m *MockStatsSyncer) Resync(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockStatsSyncer) GetProductStats(ctx context.Context, productID string) (*entity.ProductStats, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductStats), args.Error(1)
}

func newReviewService() (*ReviewService, *mocks.MockReviewRepository, *MockStatsSyncer, *mocks.MockMessagePublisher) {
	reviewRepo := new(mocks.MockReviewRepository)
	statsSyncer := new(MockStatsSyncer)
	kafkaProducer := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	return NewReviewService(reviewRepo, statsSyncer, kafkaProducer), reviewRepo, statsSyncer, kafkaProducer
}

func TestCreateReview_Success(t *testing.T) {
	service, reviewRepo, statsSyncer, kafkaProducer := newReviewService()

	ctx := context.Background()
	userID := uuid.NewString()
	productID := uuid.NewString()
	req := &entity.CreateReviewRequest{ProductID: productID, Rating: 5, Title: "Great", Comment: "Great product!"}

	reviewRepo.On("Create", ctx, mock.AnythingOfType("*entity.Review")).Return(nil).Run(func(args mock.Arguments) {
		review := args.Get(1).(*entity.Review)
		review.ID = primitive.NewObjectID()
	})
	statsSyncer.On("Resync", ctx, productID).Return(nil)
	kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	result, err := service.CreateReview(ctx, userID, req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, userID, result.UserID)
	assert.Equal(t, 5, result.Rating)

	// После создания пересчёт агрегата товара запускается ровно один раз
	statsSyncer.AssertNumberOfCalls(t, "Resync", 1)
	statsSyncer.AssertCalled(t, "Resync", ctx, productID)
}

func TestCreateReview_Duplicate(t *testing.T) {
	service, reviewRepo, statsSyncer, _ := newReviewService()

	ctx := context.Background()
	req := &entity.CreateReviewRequest{ProductID: uuid.NewString(), Rating: 4, Title: "Again", Comment: "Second try"}

	reviewRepo.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicateReview)

	result, err := service.CreateReview(ctx, uuid.NewString(), req)

	assert.ErrorIs(t, err, ErrDuplicateReview)
	assert.Nil(t, result)

	// Отзыв не создан - пересчитывать нечего
	statsSyncer.AssertNotCalled(t, "Resync", mock.Anything, mock.Anything)
}

func TestCreateReview_RepoError(t *testing.T) {
	service, reviewRepo, _, _ := newReviewService()

	ctx := context.Background()
	req := &entity.CreateReviewRequest{ProductID: uuid.NewString(), Rating: 4, Title: "Good", Comment: "Good product."}

	reviewRepo.On("Create", ctx, mock.Anything).Return(errors.New("db error"))

	result, err := service.CreateReview(ctx, uuid.NewString(), req)

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestCreateReview_ResyncErrorIgnored(t *testing.T) {
	service, reviewRepo, statsSyncer, kafkaProducer := newReviewService()

	ctx := context.Background()
	productID := uuid.NewString()
	req := &entity.CreateReviewRequest{ProductID: productID, Rating: 3, Title: "Okay", Comment: "Average product."}

	reviewRepo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		review := args.Get(1).(*entity.Review)
		review.ID = primitive.NewObjectID()
	})
	statsSyncer.On("Resync", ctx, productID).Return(errors.New("postgres down"))
	kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	// Отзыв уже зафиксирован: неудачный пересчёт не откатывает мутацию
	result, err := service.CreateReview(ctx, uuid.NewString(), req)

	assert.NoError(t, err)
	assert.NotNil(t, result)

	// Событие опубликовано - воркер повторит пересчёт
	kafkaProducer.AssertCalled(t, "PublishMessage", ctx, mock.Anything, mock.Anything)
}

func TestCreateReview_KafkaErrorIgnored(t *testing.T) {
	service, reviewRepo, statsSyncer, kafkaProducer := newReviewService()

	ctx := context.Background()
	productID := uuid.NewString()
	req := &entity.CreateReviewRequest{ProductID: productID, Rating: 3, Title: "Okay", Comment: "Average product."}

	reviewRepo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		review := args.Get(1).(*entity.Review)
		review.ID = primitive.NewObjectID()
	})
	statsSyncer.On("Resync", ctx, productID).Return(nil)
	kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(errors.New("kafka error"))

	result, err := service.CreateReview(ctx, uuid.NewString(), req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
}

func TestGetReview_NotFound(t *testing.T) {
	service, reviewRepo, _, _ := newReviewService()

	ctx := context.Background()
	reviewID := primitive.NewObjectID().Hex()

	reviewRepo.On("GetByID", ctx, reviewID).Return(nil, repository.ErrReviewNotFound)

	result, err := service.GetReview(ctx, reviewID)

	assert.ErrorIs(t, err, ErrReviewNotFound)
	assert.Nil(t, result)
}

func TestGetReviewsByProduct_Success(t *testing.T) {
	service, reviewRepo, _, _ := newReviewService()

	ctx := context.Background()
	productID := uuid.NewString()
	reviews := []entity.Review{
		{ID: primitive.NewObjectID(), ProductID: productID, UserID: uuid.NewString(), Rating: 5},
		{ID: primitive.NewObjectID(), ProductID: productID, UserID: uuid.NewString(), Rating: 4},
	}

	reviewRepo.On("GetByProductID", ctx, productID).Return(reviews, nil)

	result, err := service.GetReviewsByProduct(ctx, productID)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestUpdateReview_Success(t *testing.T) {
	service, reviewRepo, statsSyncer, kafkaProducer := newReviewService()

	ctx := context.Background()
	userID := uuid.NewString()
	productID := uuid.NewString()
	reviewID := primitive.NewObjectID()
	existing := &entity.Review{ID: reviewID, ProductID: productID, UserID: userID, Rating: 3, Title: "Okay", Comment: "Fine"}
	req := &entity.UpdateReviewRequest{Rating: 1}

	reviewRepo.On("GetByID", ctx, reviewID.Hex()).Return(existing, nil)
	reviewRepo.On("Update", ctx, existing).Return(nil)
	statsSyncer.On("Resync", ctx, productID).Return(nil)
	kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	result, err := service.UpdateReview(ctx, reviewID.Hex(), userID, req)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Rating)

	// Изменение оценки требует пересчёта агрегата
	statsSyncer.AssertCalled(t, "Resync", ctx, productID)
}

func TestUpdateReview_Forbidden(t *testing.T) {
	service, reviewRepo, statsSyncer, _ := newReviewService()

	ctx := context.Background()
	reviewID := primitive.NewObjectID()
	existing := &entity.Review{ID: reviewID, ProductID: uuid.NewString(), UserID: uuid.NewString(), Rating: 3}

	reviewRepo.On("GetByID", ctx, reviewID.Hex()).Return(existing, nil)

	result, err := service.UpdateReview(ctx, reviewID.Hex(), uuid.NewString(), &entity.UpdateReviewRequest{Rating: 5})

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, result)
	statsSyncer.AssertNotCalled(t, "Resync", mock.Anything, mock.Anything)
}

func TestDeleteReview_Success(t *testing.T) {
	service, reviewRepo, statsSyncer, kafkaProducer := newReviewService()

	ctx := context.Background()
	userID := uuid.NewString()
	productID := uuid.NewString()
	reviewID := primitive.NewObjectID()
	existing := &entity.Review{ID: reviewID, ProductID: productID, UserID: userID, Rating: 5}

	reviewRepo.On("GetByID", ctx, reviewID.Hex()).Return(existing, nil)
	reviewRepo.On("Delete", ctx, reviewID.Hex()).Return(existing, nil)
	statsSyncer.On("Resync", ctx, productID).Return(nil)
	kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	err := service.DeleteReview(ctx, reviewID.Hex(), userID)

	assert.NoError(t, err)

	// ID товара для пересчёта взят из удалённого документа
	statsSyncer.AssertCalled(t, "Resync", ctx, productID)
}

func TestDeleteReview_SkipsResyncWithoutProductID(t *testing.T) {
	service, reviewRepo, statsSyncer, _ := newReviewService()

	ctx := context.Background()
	userID := uuid.NewString()
	reviewID := primitive.NewObjectID()
	existing := &entity.Review{ID: reviewID, UserID: userID, Rating: 5}

	reviewRepo.On("GetByID", ctx, reviewID.Hex()).Return(existing, nil)
	reviewRepo.On("Delete", ctx, reviewID.Hex()).Return(existing, nil)

	// Документ без product_id: дефенсивная проверка пропускает пересчёт
	err := service.DeleteReview(ctx, reviewID.Hex(), userID)

	assert.NoError(t, err)
	statsSyncer.AssertNotCalled(t, "Resync", mock.Anything, mock.Anything)
}

func TestDeleteReview_Forbidden(t *testing.T) {
	service, reviewRepo, statsSyncer, _ := newReviewService()

	ctx := context.Background()
	reviewID := primitive.NewObjectID()
	existing := &entity.Review{ID: reviewID, ProductID: uuid.NewString(), UserID: uuid.NewString(), Rating: 5}

	reviewRepo.On("GetByID", ctx, reviewID.Hex()).Return(existing, nil)

	err := service.DeleteReview(ctx, reviewID.Hex(), uuid.NewString())

	assert.ErrorIs(t, err, ErrUnauthorized)
	reviewRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	statsSyncer.AssertNotCalled(t, "Resync", mock.Anything, mock.Anything)
}

func TestGetUserReviews_Success(t *testing.T) {
	service, reviewRepo, _, _ := newReviewService()

	ctx := context.Background()
	userID := uuid.NewString()
	reviews := []entity.Review{
		{ID: primitive.NewObjectID(), ProductID: uuid.NewString(), UserID: userID, Rating: 2},
	}

	reviewRepo.On("GetByUserID", ctx, userID).Return(reviews, nil)

	result, err := service.GetUserReviews(ctx, userID)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
}
