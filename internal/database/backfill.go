package database

import (
	"fmt"

	"github.com/P3chys/exchange-api/internal/models"
	"gorm.io/gorm"
)

// BackfillDocumentTypes marks documents stored before the application and
// required lists were told apart as application documents.
func BackfillDocumentTypes(db *gorm.DB) (int64, error) {
	result := db.Model(&models.ApplicationDocument{}).
		Where("document_type = 0 OR document_type IS NULL").
		Update("document_type", models.DocumentTypeApplication)
	if result.Error != nil {
		return 0, fmt.Errorf("backfill document types: %w", result.Error)
	}
	return result.RowsAffected, nil
}
