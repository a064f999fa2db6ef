package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/P3chys/exchange-api/internal/models"
	"go.uber.org/zap"
)

// ExchangeProgramInput carries the editable fields of a program.
type ExchangeProgramInput struct {
	Name                 string
	Description          string
	LimitApplicationDate *time.Time
	StartDate            *time.Time
	FinishDate           *time.Time
	ApplicationDocuments string
	RequiredDocuments    string
	ImagesURL            string
	OrganizationID       int
	CountryID            int
	StateID              int
	StatusID             models.Status
}

type UpdateExchangeProgramInput struct {
	ID int
	ExchangeProgramInput
}

type ExchangeProgramService struct {
	programs     ExchangeProgramStore
	applications ApplicationStore
	ids          IDAllocator
	identity     *IdentityResolver
	index        ProgramIndex
	activity     ActivityRecorder
	logger       *zap.Logger
}

func NewExchangeProgramService(programs ExchangeProgramStore, applications ApplicationStore, ids IDAllocator, identity *IdentityResolver, index ProgramIndex, activity ActivityRecorder, logger *zap.Logger) *ExchangeProgramService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExchangeProgramService{
		programs:     programs,
		applications: applications,
		ids:          ids,
		identity:     identity,
		index:        index,
		activity:     activity,
		logger:       logger.Named("exchange_programs"),
	}
}

func (s *ExchangeProgramService) Publish(ctx context.Context, actorID int, in ExchangeProgramInput) (*models.ExchangeProgram, error) {
	status := in.StatusID
	if status == 0 {
		status = models.StatusActive
	}
	if status == models.StatusDeleted {
		return nil, invalid("a new exchange program cannot start as %s", status)
	}

	program := &models.ExchangeProgram{OrganizationID: in.OrganizationID}
	applyProgramInput(program, in)
	program.StatusID = status
	if err := validateProgram(program); err != nil {
		return nil, err
	}

	id, err := nextID(ctx, s.ids, SequenceExchangePrograms, "exchange program")
	if err != nil {
		return nil, err
	}
	program.ID = id

	if err := s.programs.Create(ctx, program); err != nil {
		return nil, unexpected("failed to create exchange program", err)
	}

	s.logger.Info("exchange program published", zap.Int("program_id", id), zap.Int("organization_id", program.OrganizationID))
	s.indexProgram(*program)
	recordActivity(ctx, s.activity, s.logger, models.Activity{
		UserID:       actorID,
		ActivityType: models.ActivityProgramPublished,
		ProgramID:    &program.ID,
	})

	return program, nil
}

func (s *ExchangeProgramService) GetByID(ctx context.Context, id int) (*models.ExchangeProgram, error) {
	return s.load(ctx, id)
}

// ListVisible returns the programs the caller may see. A non-empty query
// narrows the catalog through the search index first; without an index the
// query is ignored and the whole visible catalog is returned.
func (s *ExchangeProgramService) ListVisible(ctx context.Context, rawUserID, query string) ([]models.ExchangeProgram, error) {
	caller, err := s.identity.Resolve(ctx, rawUserID)
	if err != nil {
		return nil, err
	}

	programs, err := s.programs.GetAll(ctx)
	if err != nil {
		return nil, unexpected("failed to load exchange programs", err)
	}
	if len(programs) == 0 {
		return nil, notFound("no exchange programs found")
	}

	query = strings.TrimSpace(query)
	if query != "" && s.index == nil {
		s.logger.Debug("no search index configured, ignoring query", zap.String("query", query))
	}
	if query != "" && s.index != nil {
		matched, err := s.index.SearchProgramIDs(query)
		if err != nil {
			return nil, unexpected("failed to search exchange programs", err)
		}
		hits := make(map[int]bool, len(matched))
		for _, id := range matched {
			hits[id] = true
		}
		programs = filter(programs, func(p models.ExchangeProgram) bool { return hits[p.ID] })
	}

	applications, err := s.applications.GetAll(ctx)
	if err != nil {
		return nil, unexpected("failed to load applications", err)
	}
	own := filter(applications, func(a models.Application) bool { return a.StudentID == caller.UserID })

	return FilterExchangePrograms(caller, programs, own), nil
}

// Update rewrites the editable fields of a program. Requesting the Deleted
// status closes the program instead.
func (s *ExchangeProgramService) Update(ctx context.Context, actorID int, in UpdateExchangeProgramInput) (*models.ExchangeProgram, error) {
	if in.StatusID == models.StatusDeleted {
		return s.Close(ctx, actorID, in.ID)
	}

	program, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if program.StatusID == models.StatusDeleted {
		return nil, invalid("exchange program %d is closed", in.ID)
	}

	applyProgramInput(program, in.ExchangeProgramInput)
	if err := validateProgram(program); err != nil {
		return nil, err
	}

	if err := s.programs.Save(ctx, program); err != nil {
		return nil, unexpected("failed to update exchange program", err)
	}

	s.indexProgram(*program)
	recordActivity(ctx, s.activity, s.logger, models.Activity{
		UserID:       actorID,
		ActivityType: models.ActivityProgramUpdated,
		ProgramID:    &program.ID,
	})

	return program, nil
}

// Close soft-deletes a program and drops it from the search index.
func (s *ExchangeProgramService) Close(ctx context.Context, actorID, id int) (*models.ExchangeProgram, error) {
	program, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if program.StatusID == models.StatusDeleted {
		return nil, invalid("exchange program %d is already closed", id)
	}

	program.StatusID = models.StatusDeleted
	if err := s.programs.Save(ctx, program); err != nil {
		return nil, unexpected("failed to close exchange program", err)
	}

	if s.index != nil {
		if err := s.index.RemoveProgram(program.ID); err != nil {
			s.logger.Warn("failed to remove program from index", zap.Int("program_id", program.ID), zap.Error(err))
		}
	}
	recordActivity(ctx, s.activity, s.logger, models.Activity{
		UserID:       actorID,
		ActivityType: models.ActivityProgramClosed,
		ProgramID:    &program.ID,
	})

	return program, nil
}

func (s *ExchangeProgramService) load(ctx context.Context, id int) (*models.ExchangeProgram, error) {
	program, err := s.programs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound("exchange program %d not found", id)
		}
		return nil, unexpected("failed to load exchange program", err)
	}
	return program, nil
}

func (s *ExchangeProgramService) indexProgram(program models.ExchangeProgram) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexProgram(program); err != nil {
		s.logger.Warn("failed to index program", zap.Int("program_id", program.ID), zap.Error(err))
	}
}

// applyProgramInput copies the editable fields. The owning organization is
// fixed once the program exists.
func applyProgramInput(p *models.ExchangeProgram, in ExchangeProgramInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.LimitApplicationDate = in.LimitApplicationDate
	p.StartDate = in.StartDate
	p.FinishDate = in.FinishDate
	p.ApplicationDocuments = in.ApplicationDocuments
	p.RequiredDocuments = in.RequiredDocuments
	p.ImagesURL = in.ImagesURL
	p.CountryID = in.CountryID
	p.StateID = in.StateID
	if in.StatusID != 0 {
		p.StatusID = in.StatusID
	}
}

func validateProgram(p *models.ExchangeProgram) error {
	if p.Name == "" {
		return invalid("name is required")
	}
	if p.LimitApplicationDate != nil && p.StartDate != nil && p.LimitApplicationDate.After(*p.StartDate) {
		return invalid("application deadline must not be after the start date")
	}
	if p.StartDate != nil && p.FinishDate != nil && p.StartDate.After(*p.FinishDate) {
		return invalid("start date must not be after the finish date")
	}
	return nil
}
