package services

import (
	"context"

	"github.com/P3chys/exchange-api/internal/models"
)

// Sequence names the table and column an IDAllocator draws fresh ids from.
type Sequence struct {
	Column string
	Table  string
}

var (
	SequenceApplications         = Sequence{Column: "id", Table: "applications"}
	SequenceApplicationDocuments = Sequence{Column: "id", Table: "application_documents"}
	SequenceExchangePrograms     = Sequence{Column: "id", Table: "exchange_programs"}
)

// IDAllocator hands out ids that are not yet used in a sequence. It returns
// ErrSequenceUnavailable when no id can be produced.
type IDAllocator interface {
	NextID(ctx context.Context, seq Sequence) (int, error)
}

// Stores return ErrNotFound (possibly wrapped) for missing rows.
type ApplicationStore interface {
	GetByID(ctx context.Context, id int) (*models.Application, error)
	GetAll(ctx context.Context) ([]models.Application, error)
	Create(ctx context.Context, application *models.Application) error
	// Save writes the application row and upserts every document it carries
	// in one transaction.
	Save(ctx context.Context, application *models.Application) error
	DeleteDocument(ctx context.Context, applicationID, documentID int) (*models.ApplicationDocument, error)
}

type ExchangeProgramStore interface {
	GetByID(ctx context.Context, id int) (*models.ExchangeProgram, error)
	GetAll(ctx context.Context) ([]models.ExchangeProgram, error)
	Create(ctx context.Context, program *models.ExchangeProgram) error
	Save(ctx context.Context, program *models.ExchangeProgram) error
}

type UserStore interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// ActivityRecorder keeps the audit trail. Failures never fail the operation
// that produced the activity.
type ActivityRecorder interface {
	Record(ctx context.Context, activity models.Activity) error
}

// ProgramIndex is the full-text index over exchange programs.
type ProgramIndex interface {
	IndexProgram(program models.ExchangeProgram) error
	RemoveProgram(id int) error
	SearchProgramIDs(query string) ([]int, error)
}

// ObjectRemover deletes stored document content.
type ObjectRemover interface {
	DeleteFile(ctx context.Context, key string) error
}
