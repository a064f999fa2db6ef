package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/P3chys/exchange-api/internal/models"
	"go.uber.org/zap"
)

type PublishApplicationInput struct {
	ProgramID            int
	StudentID            int
	Reason               string
	StatusID             models.Status
	ApplicationDocuments []DocumentValues
	RequiredDocuments    []DocumentValues
	ActorID              int
}

type UpdateApplicationInput struct {
	ID                   int
	Reason               string
	StatusID             models.Status
	ApplicationDocuments []DocumentValues
	RequiredDocuments    []DocumentValues
}

type TransitionInput struct {
	ID      int
	Reason  string
	ActorID int
}

// applicationTransitions lists the status changes an application accepts
// from each status. Cancelled and Closed are only reached through Cancel and
// Close, which also capture the reason.
var applicationTransitions = map[models.Status][]models.Status{
	models.StatusPending: {models.StatusCancelled, models.StatusClosed, models.StatusApproved, models.StatusRejected},
}

// finalStatuses end an application's lifecycle; nothing about it changes
// afterwards.
var finalStatuses = map[models.Status]bool{
	models.StatusCancelled: true,
	models.StatusClosed:    true,
	models.StatusDeleted:   true,
}

func canTransition(from, to models.Status) bool {
	for _, allowed := range applicationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type ApplicationService struct {
	applications ApplicationStore
	programs     ExchangeProgramStore
	ids          IDAllocator
	identity     *IdentityResolver
	activity     ActivityRecorder
	objects      ObjectRemover
	logger       *zap.Logger
}

func NewApplicationService(applications ApplicationStore, programs ExchangeProgramStore, ids IDAllocator, identity *IdentityResolver, activity ActivityRecorder, objects ObjectRemover, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		applications: applications,
		programs:     programs,
		ids:          ids,
		identity:     identity,
		activity:     activity,
		objects:      objects,
		logger:       logger.Named("applications"),
	}
}

// Publish creates an application for an open program. Every incoming document
// is new to the application, so ids sent by the client are ignored.
func (s *ApplicationService) Publish(ctx context.Context, in PublishApplicationInput) (*models.Application, error) {
	if in.ProgramID <= 0 || in.StudentID <= 0 {
		return nil, invalid("program and student are required")
	}

	status := in.StatusID
	if status == 0 {
		status = models.StatusPending
	}
	switch status {
	case models.StatusCancelled, models.StatusClosed, models.StatusDeleted:
		return nil, invalid("a new application cannot start as %s", status)
	}

	program, err := s.programs.GetByID(ctx, in.ProgramID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalid("exchange program %d does not exist", in.ProgramID)
		}
		return nil, unexpected("failed to load exchange program", err)
	}
	if program.StatusID == models.StatusDeleted {
		return nil, invalid("exchange program %d is closed", in.ProgramID)
	}

	id, err := nextID(ctx, s.ids, SequenceApplications, "application")
	if err != nil {
		return nil, err
	}
	firstDocumentID, err := nextID(ctx, s.ids, SequenceApplicationDocuments, "application document")
	if err != nil {
		return nil, err
	}

	reconciled := ReconcileDocuments(firstDocumentID-1, newDocuments(in.ApplicationDocuments), newDocuments(in.RequiredDocuments))

	application := &models.Application{
		ID:        id,
		ProgramID: in.ProgramID,
		StudentID: in.StudentID,
		Reason:    in.Reason,
		StatusID:  status,
		Documents: append(
			toDocumentModels(id, models.DocumentTypeApplication, reconciled.Application),
			toDocumentModels(id, models.DocumentTypeRequired, reconciled.Required)...,
		),
	}

	if err := s.applications.Create(ctx, application); err != nil {
		return nil, unexpected("failed to create application", err)
	}

	s.logger.Info("application published",
		zap.Int("application_id", id),
		zap.Int("program_id", in.ProgramID),
		zap.Int("documents", len(application.Documents)),
		zap.Int("last_document_id", reconciled.LastID),
	)
	s.record(ctx, models.Activity{
		UserID:        in.ActorID,
		ActivityType:  models.ActivityApplicationPublished,
		ApplicationID: &application.ID,
		ProgramID:     &application.ProgramID,
	})

	return application, nil
}

func (s *ApplicationService) GetByID(ctx context.Context, id int) (*models.Application, error) {
	return s.load(ctx, id)
}

// ListVisible returns the applications the caller behind rawUserID may see.
func (s *ApplicationService) ListVisible(ctx context.Context, rawUserID string) ([]models.Application, error) {
	caller, err := s.identity.Resolve(ctx, rawUserID)
	if err != nil {
		return nil, err
	}

	applications, err := s.applications.GetAll(ctx)
	if err != nil {
		return nil, unexpected("failed to load applications", err)
	}
	if len(applications) == 0 {
		return nil, notFound("no applications found")
	}

	var programs []models.ExchangeProgram
	if caller.affiliated() {
		programs, err = s.programs.GetAll(ctx)
		if err != nil {
			return nil, unexpected("failed to load exchange programs", err)
		}
	}

	return FilterApplications(caller, applications, programs), nil
}

// Update applies a generic change to an application. A status change to
// Cancelled or Closed is never written directly: it goes through Cancel or
// Close so the reason is captured. Any other status change must be listed in
// applicationTransitions, and applications in a final status are read-only.
func (s *ApplicationService) Update(ctx context.Context, rawUserID string, in UpdateApplicationInput) (*models.Application, error) {
	caller, err := s.identity.Resolve(ctx, rawUserID)
	if err != nil {
		return nil, err
	}

	switch in.StatusID {
	case models.StatusCancelled:
		return s.Cancel(ctx, TransitionInput{ID: in.ID, Reason: in.Reason, ActorID: caller.UserID})
	case models.StatusClosed:
		return s.Close(ctx, TransitionInput{ID: in.ID, Reason: in.Reason, ActorID: caller.UserID})
	}

	if err := ValidateDocumentIDs(in.ApplicationDocuments, in.RequiredDocuments); err != nil {
		return nil, err
	}

	application, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if finalStatuses[application.StatusID] {
		return nil, invalid("application %d is %s and can no longer be updated", application.ID, application.StatusID)
	}
	if in.StatusID != 0 && in.StatusID != application.StatusID && !canTransition(application.StatusID, in.StatusID) {
		return nil, invalid("application %d cannot move from %s to %s", application.ID, application.StatusID, in.StatusID)
	}

	persisted := make(map[int]models.ApplicationDocument, len(application.Documents))
	for _, doc := range application.Documents {
		persisted[doc.ID] = doc
	}
	for _, list := range [][]DocumentValues{in.ApplicationDocuments, in.RequiredDocuments} {
		for _, doc := range list {
			if _, ok := persisted[doc.ID]; doc.ID > 0 && !ok {
				return nil, invalid("document %d does not belong to application %d", doc.ID, in.ID)
			}
		}
	}

	firstDocumentID, err := nextID(ctx, s.ids, SequenceApplicationDocuments, "application document")
	if err != nil {
		return nil, err
	}
	seed := application.MaxDocumentID()
	if seed == 0 {
		seed = firstDocumentID - 1
	}

	reconciled := ReconcileDocuments(seed, in.ApplicationDocuments, in.RequiredDocuments)
	incoming := append(
		toDocumentModels(application.ID, models.DocumentTypeApplication, reconciled.Application),
		toDocumentModels(application.ID, models.DocumentTypeRequired, reconciled.Required)...,
	)

	documents := make([]models.ApplicationDocument, 0, len(persisted)+len(incoming))
	for _, doc := range incoming {
		if old, ok := persisted[doc.ID]; ok {
			doc.CreatedAt = old.CreatedAt
			delete(persisted, doc.ID)
		}
		documents = append(documents, doc)
	}
	for _, doc := range persisted {
		documents = append(documents, doc)
	}
	sort.Slice(documents, func(i, j int) bool { return documents[i].ID < documents[j].ID })

	application.Reason = in.Reason
	if in.StatusID != 0 {
		application.StatusID = in.StatusID
	}
	application.Documents = documents

	if err := s.applications.Save(ctx, application); err != nil {
		return nil, unexpected("failed to update application", err)
	}

	s.logger.Debug("application updated",
		zap.Int("application_id", application.ID),
		zap.Int("seed", seed),
		zap.Int("last_document_id", reconciled.LastID),
	)
	s.record(ctx, models.Activity{
		UserID:        caller.UserID,
		ActivityType:  models.ActivityApplicationUpdated,
		ApplicationID: &application.ID,
		ProgramID:     &application.ProgramID,
	})

	return application, nil
}

func (s *ApplicationService) Cancel(ctx context.Context, in TransitionInput) (*models.Application, error) {
	return s.transition(ctx, in, models.StatusCancelled, models.ActivityApplicationCancelled)
}

func (s *ApplicationService) Close(ctx context.Context, in TransitionInput) (*models.Application, error) {
	return s.transition(ctx, in, models.StatusClosed, models.ActivityApplicationClosed)
}

func (s *ApplicationService) transition(ctx context.Context, in TransitionInput, target models.Status, activityType models.ActivityType) (*models.Application, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, invalid("a reason is required to move an application to %s", target)
	}

	application, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if !canTransition(application.StatusID, target) {
		return nil, invalid("application %d cannot move from %s to %s", application.ID, application.StatusID, target)
	}

	application.StatusID = target
	application.Reason = reason

	if err := s.applications.Save(ctx, application); err != nil {
		return nil, unexpected(fmt.Sprintf("failed to move application to %s", target), err)
	}

	s.record(ctx, models.Activity{
		UserID:        in.ActorID,
		ActivityType:  activityType,
		ApplicationID: &application.ID,
		ProgramID:     &application.ProgramID,
		Metadata:      reasonMetadata(reason),
	})

	return application, nil
}

// DeleteDocument removes one document from an application. Content uploaded
// through the document endpoint is removed from storage as well.
func (s *ApplicationService) DeleteDocument(ctx context.Context, actorID, applicationID, documentID int) error {
	doc, err := s.applications.DeleteDocument(ctx, applicationID, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("document %d not found on application %d", documentID, applicationID)
		}
		return unexpected("failed to delete document", err)
	}

	if s.objects != nil && isStoredObject(doc.URL) {
		if err := s.objects.DeleteFile(ctx, doc.URL); err != nil {
			s.logger.Warn("failed to delete document content",
				zap.Int("application_id", applicationID),
				zap.Int("document_id", documentID),
				zap.Error(err),
			)
		}
	}

	s.record(ctx, models.Activity{
		UserID:        actorID,
		ActivityType:  models.ActivityDocumentDeleted,
		ApplicationID: &applicationID,
		Metadata:      documentMetadata(documentID),
	})

	return nil
}

func (s *ApplicationService) load(ctx context.Context, id int) (*models.Application, error) {
	application, err := s.applications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound("application %d not found", id)
		}
		return nil, unexpected("failed to load application", err)
	}
	return application, nil
}

func (s *ApplicationService) record(ctx context.Context, activity models.Activity) {
	recordActivity(ctx, s.activity, s.logger, activity)
}

func recordActivity(ctx context.Context, recorder ActivityRecorder, logger *zap.Logger, activity models.Activity) {
	if recorder == nil {
		return
	}
	if err := recorder.Record(ctx, activity); err != nil {
		logger.Warn("failed to record activity",
			zap.String("activity_type", string(activity.ActivityType)),
			zap.Error(err),
		)
	}
}

func nextID(ctx context.Context, ids IDAllocator, seq Sequence, subject string) (int, error) {
	id, err := ids.NextID(ctx, seq)
	if err != nil {
		if errors.Is(err, ErrSequenceUnavailable) {
			return 0, invalid("couldn't get id for the new %s", subject)
		}
		return 0, unexpected(fmt.Sprintf("failed to allocate %s id", subject), err)
	}
	return id, nil
}

// isStoredObject tells object keys produced by the upload endpoint apart from
// external links.
func isStoredObject(url string) bool {
	return url != "" && !strings.Contains(url, "://")
}

func reasonMetadata(reason string) string {
	quoted, _ := json.Marshal(reason)
	return `{"reason":` + string(quoted) + `}`
}

func documentMetadata(documentID int) string {
	return `{"document_id":` + strconv.Itoa(documentID) + `}`
}
