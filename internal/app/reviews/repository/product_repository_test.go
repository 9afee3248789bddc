package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ProductRepositoryTestSuite тестовый suite для PostgreSQL repository
type ProductRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  ProductRepository
	sqlDB *sql.DB
}

func TestProductRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProductRepositoryTestSuite))
}

func (s *ProductRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewProductRepository(s.db)
}

func (s *ProductRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

// ===================== GetByID Tests =====================

func (s *ProductRepositoryTestSuite) TestGetByID_Success() {
	ctx := context.Background()
	productID := uuid.New()
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "price", "average_rating", "number_of_reviews", "created_at"}).
		AddRow(productID, "Raspberry jam", 4.99, 4.3, int64(3), createdAt)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE id = $1`)).
		WithArgs(productID, 1).
		WillReturnRows(rows)

	// Act
	product, err := s.repo.GetByID(ctx, productID)

	// Assert
	s.NoError(err)
	s.NotNil(product)
	s.Equal(productID, product.ID)
	s.Equal(4.3, product.AverageRating)
	s.Equal(int64(3), product.NumberOfReviews)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestGetByID_NotFound() {
	ctx := context.Background()
	productID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE id = $1`)).
		WithArgs(productID, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	product, err := s.repo.GetByID(ctx, productID)

	// Assert
	s.Error(err)
	s.Nil(product)
	s.ErrorIs(err, ErrProductNotFound)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestGetByID_DBError() {
	ctx := context.Background()
	productID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE id = $1`)).
		WithArgs(productID, 1).
		WillReturnError(sql.ErrConnDone)

	// Act
	product, err := s.repo.GetByID(ctx, productID)

	// Assert
	s.Error(err)
	s.Nil(product)
	s.Contains(err.Error(), "failed to get product")

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== UpdateRating Tests =====================

func (s *ProductRepositoryTestSuite) TestUpdateRating_Success() {
	ctx := context.Background()
	productID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WithArgs(4.3, int64(3), productID). // average_rating, number_of_reviews, id
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.UpdateRating(ctx, productID, 4.3, 3)

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestUpdateRating_ZeroStats() {
	ctx := context.Background()
	productID := uuid.New()

	// Последний отзыв удалён: агрегат сбрасывается в (0, 0)
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WithArgs(0.0, int64(0), productID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.UpdateRating(ctx, productID, 0, 0)

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestUpdateRating_NotFound() {
	ctx := context.Background()
	productID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WithArgs(4.3, int64(3), productID).
		WillReturnResult(sqlmock.NewResult(0, 0)) // 0 rows affected
	s.mock.ExpectCommit()

	// Act
	err := s.repo.UpdateRating(ctx, productID, 4.3, 3)

	// Assert
	s.Error(err)
	s.ErrorIs(err, ErrProductNotFound)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestUpdateRating_DBError() {
	ctx := context.Background()
	productID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WithArgs(4.3, int64(3), productID).
		WillReturnError(sql.ErrConnDone)
	s.mock.ExpectRollback()

	// Act
	err := s.repo.UpdateRating(ctx, productID, 4.3, 3)

	// Assert
	s.Error(err)
	s.Contains(err.Error(), "failed to update product rating")

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== NewProductRepository Tests =====================

func TestNewProductRepository(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	dialector := postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)

	// Act
	repo := NewProductRepository(db)

	// Assert
	assert.NotNil(t, repo)
}
