package repository

import (
	"context"
	"errors"

	"github.com/P3chys/exchange-api/internal/models"
	"github.com/P3chys/exchange-api/internal/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func documentsByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id int) (*models.Application, error) {
	var application models.Application
	err := r.db.WithContext(ctx).
		Preload("Documents", documentsByID).
		First(&application, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &application, nil
}

func (r *ApplicationRepository) GetAll(ctx context.Context) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.WithContext(ctx).
		Preload("Documents", documentsByID).
		Order("id").
		Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepository) Create(ctx context.Context, application *models.Application) error {
	return r.db.WithContext(ctx).Create(application).Error
}

// Save updates the application row and upserts the documents it carries.
// Documents missing from application.Documents are left untouched.
func (r *ApplicationRepository) Save(ctx context.Context, application *models.Application) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(application).Error; err != nil {
			return err
		}
		if len(application.Documents) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "application_id"}, {Name: "id"}},
			UpdateAll: true,
		}).Create(&application.Documents).Error
	})
}

func (r *ApplicationRepository) DeleteDocument(ctx context.Context, applicationID, documentID int) (*models.ApplicationDocument, error) {
	var doc models.ApplicationDocument
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&doc, "application_id = ? AND id = ?", applicationID, documentID).Error; err != nil {
			return err
		}
		return tx.Delete(&doc).Error
	})
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &doc, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNotFound
	}
	return err
}
