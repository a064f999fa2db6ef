package repository

import (
	"context"

	"github.com/P3chys/exchange-api/internal/models"
	"gorm.io/gorm"
)

type ExchangeProgramRepository struct {
	db *gorm.DB
}

func NewExchangeProgramRepository(db *gorm.DB) *ExchangeProgramRepository {
	return &ExchangeProgramRepository{db: db}
}

func (r *ExchangeProgramRepository) GetByID(ctx context.Context, id int) (*models.ExchangeProgram, error) {
	var program models.ExchangeProgram
	if err := r.db.WithContext(ctx).First(&program, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &program, nil
}

func (r *ExchangeProgramRepository) GetAll(ctx context.Context) ([]models.ExchangeProgram, error) {
	var programs []models.ExchangeProgram
	err := r.db.WithContext(ctx).Order("id").Find(&programs).Error
	return programs, err
}

// GetLive returns every program that has not been closed.
func (r *ExchangeProgramRepository) GetLive(ctx context.Context) ([]models.ExchangeProgram, error) {
	var programs []models.ExchangeProgram
	err := r.db.WithContext(ctx).
		Where("status_id <> ?", models.StatusDeleted).
		Order("id").
		Find(&programs).Error
	return programs, err
}

func (r *ExchangeProgramRepository) Create(ctx context.Context, program *models.ExchangeProgram) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *ExchangeProgramRepository) Save(ctx context.Context, program *models.ExchangeProgram) error {
	return r.db.WithContext(ctx).Save(program).Error
}
