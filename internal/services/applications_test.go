package services

import (
	"context"
	"errors"
	"testing"

	"github.com/P3chys/exchange-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type applicationFixture struct {
	service  *ApplicationService
	apps     *fakeApplicationStore
	ids      *fakeAllocator
	recorder *fakeRecorder
	objects  *fakeObjects
}

func newApplicationFixture(apps ...models.Application) *applicationFixture {
	programs := newFakeProgramStore(
		models.ExchangeProgram{ID: 100, Name: "Erasmus Lisbon", OrganizationID: 7, StatusID: models.StatusActive},
		models.ExchangeProgram{ID: 200, Name: "Closed one", OrganizationID: 8, StatusID: models.StatusDeleted},
	)
	users := newFakeUserStore(
		models.User{ID: 1, RoleID: models.RoleStudent},
		models.User{ID: 2, RoleID: models.RoleStudent},
		models.User{ID: 9, RoleID: models.RoleOrganization, OrganizationID: 7},
	)

	f := &applicationFixture{
		apps:     newFakeApplicationStore(apps...),
		ids:      newFakeAllocator(),
		recorder: &fakeRecorder{},
		objects:  &fakeObjects{},
	}
	f.service = NewApplicationService(f.apps, programs, f.ids, NewIdentityResolver(users), f.recorder, f.objects, nil)
	return f
}

func documentIDs(docs []models.ApplicationDocument) []int {
	out := make([]int, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestPublishApplicationNumbersDocumentsFromAllocator(t *testing.T) {
	f := newApplicationFixture()
	f.ids.startAt(SequenceApplications, 5).startAt(SequenceApplicationDocuments, 11)

	app, err := f.service.Publish(context.Background(), PublishApplicationInput{
		ProgramID:            100,
		StudentID:            1,
		Reason:               "semester abroad",
		ApplicationDocuments: []DocumentValues{{ID: 3, Category: "passport"}, {ID: -1, Category: "cv"}},
		RequiredDocuments:    []DocumentValues{{Category: "transcript"}},
		ActorID:              1,
	})

	require.NoError(t, err)
	assert.Equal(t, 5, app.ID)
	assert.Equal(t, models.StatusPending, app.StatusID)
	assert.Equal(t, []int{11, 12, 13}, documentIDs(app.Documents))
	assert.Equal(t, models.DocumentTypeApplication, app.Documents[0].DocumentType)
	assert.Equal(t, models.DocumentTypeRequired, app.Documents[2].DocumentType)
	for _, doc := range app.Documents {
		assert.Equal(t, 5, doc.ApplicationID)
	}

	stored, err := f.apps.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, app.Documents, stored.Documents)
	assert.Equal(t, []models.ActivityType{models.ActivityApplicationPublished}, f.recorder.types())
}

func TestPublishApplicationRejectsBadProgram(t *testing.T) {
	f := newApplicationFixture()

	_, err := f.service.Publish(context.Background(), PublishApplicationInput{ProgramID: 404, StudentID: 1})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.service.Publish(context.Background(), PublishApplicationInput{ProgramID: 200, StudentID: 1})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.service.Publish(context.Background(), PublishApplicationInput{ProgramID: 100, StudentID: 1, StatusID: models.StatusCancelled})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestPublishApplicationAllocatorUnavailable(t *testing.T) {
	f := newApplicationFixture()
	f.ids.fail[SequenceApplications.Table] = ErrSequenceUnavailable

	_, err := f.service.Publish(context.Background(), PublishApplicationInput{ProgramID: 100, StudentID: 1})

	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "couldn't get id for the new application", MessageOf(err))
	all, _ := f.apps.GetAll(context.Background())
	assert.Empty(t, all)
}

func TestPublishApplicationAllocatorFailure(t *testing.T) {
	f := newApplicationFixture()
	f.ids.fail[SequenceApplicationDocuments.Table] = errors.New("connection reset")

	_, err := f.service.Publish(context.Background(), PublishApplicationInput{ProgramID: 100, StudentID: 1})

	assert.Equal(t, KindUnexpected, KindOf(err))
}

func TestPublishApplicationSurvivesActivityFailure(t *testing.T) {
	f := newApplicationFixture()
	f.recorder.err = errors.New("activities table missing")

	app, err := f.service.Publish(context.Background(), PublishApplicationInput{ProgramID: 100, StudentID: 1})

	require.NoError(t, err)
	assert.NotZero(t, app.ID)
}

func existingApplication() models.Application {
	return models.Application{
		ID:        1,
		ProgramID: 100,
		StudentID: 1,
		StatusID:  models.StatusPending,
		Documents: []models.ApplicationDocument{
			{ApplicationID: 1, ID: 4, DocumentType: models.DocumentTypeApplication, Category: "passport"},
			{ApplicationID: 1, ID: 5, DocumentType: models.DocumentTypeRequired, Category: "transcript"},
			{ApplicationID: 1, ID: 6, DocumentType: models.DocumentTypeApplication, Category: "cv"},
		},
	}
}

func TestUpdateApplicationReconcilesAgainstPersistedDocuments(t *testing.T) {
	f := newApplicationFixture(existingApplication())
	f.ids.startAt(SequenceApplicationDocuments, 50)

	app, err := f.service.Update(context.Background(), "1", UpdateApplicationInput{
		ID:                   1,
		Reason:               "added letters",
		ApplicationDocuments: []DocumentValues{{ID: 4, Category: "passport (renewed)"}, {ID: -1, Category: "motivation"}},
		RequiredDocuments:    []DocumentValues{{ID: -1, Category: "language"}},
	})

	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6, 7, 8}, documentIDs(app.Documents))
	assert.Equal(t, "passport (renewed)", app.Documents[0].Category)
	assert.Equal(t, models.DocumentTypeApplication, app.Documents[3].DocumentType)
	assert.Equal(t, models.DocumentTypeRequired, app.Documents[4].DocumentType)
	assert.Equal(t, "added letters", app.Reason)
	assert.Equal(t, models.StatusPending, app.StatusID)
	assert.Equal(t, 1, f.ids.calls[SequenceApplicationDocuments.Table])
	assert.Equal(t, []models.ActivityType{models.ActivityApplicationUpdated}, f.recorder.types())
}

func TestUpdateApplicationWithoutDocumentsSeedsFromAllocator(t *testing.T) {
	f := newApplicationFixture(models.Application{ID: 1, ProgramID: 100, StudentID: 1, StatusID: models.StatusPending})
	f.ids.startAt(SequenceApplicationDocuments, 30)

	app, err := f.service.Update(context.Background(), "1", UpdateApplicationInput{
		ID:                1,
		RequiredDocuments: []DocumentValues{{ID: -1}, {ID: -1}},
	})

	require.NoError(t, err)
	assert.Equal(t, []int{30, 31}, documentIDs(app.Documents))
}

func TestUpdateApplicationRejectsForeignAndDuplicateIDs(t *testing.T) {
	f := newApplicationFixture(existingApplication())

	_, err := f.service.Update(context.Background(), "1", UpdateApplicationInput{
		ID:                   1,
		ApplicationDocuments: []DocumentValues{{ID: 99}},
	})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.service.Update(context.Background(), "1", UpdateApplicationInput{
		ID:                   1,
		ApplicationDocuments: []DocumentValues{{ID: 4}},
		RequiredDocuments:    []DocumentValues{{ID: 4}},
	})
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Zero(t, f.apps.saves)
}

func TestUpdateApplicationRequiresIdentity(t *testing.T) {
	f := newApplicationFixture(existingApplication())

	for _, raw := range []string{"", "abc", "999"} {
		_, err := f.service.Update(context.Background(), raw, UpdateApplicationInput{ID: 1})
		assert.Equal(t, KindUnauthorized, KindOf(err), "claim %q", raw)
	}
}

func TestUpdateApplicationMissing(t *testing.T) {
	f := newApplicationFixture()

	_, err := f.service.Update(context.Background(), "1", UpdateApplicationInput{ID: 42})

	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpdateApplicationRedirectsCancelAndClose(t *testing.T) {
	f := newApplicationFixture(existingApplication(), models.Application{ID: 2, ProgramID: 100, StudentID: 2, StatusID: models.StatusPending})

	cancelled, err := f.service.Update(context.Background(), "1", UpdateApplicationInput{ID: 1, StatusID: models.StatusCancelled, Reason: "changed my mind"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.StatusID)
	assert.Equal(t, "changed my mind", cancelled.Reason)
	assert.Equal(t, existingApplication().Documents, cancelled.Documents)

	closed, err := f.service.Update(context.Background(), "9", UpdateApplicationInput{ID: 2, StatusID: models.StatusClosed, Reason: "quota reached"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, closed.StatusID)

	assert.Equal(t, []models.ActivityType{models.ActivityApplicationCancelled, models.ActivityApplicationClosed}, f.recorder.types())
	assert.Equal(t, 9, f.recorder.activities[1].UserID)
	assert.JSONEq(t, `{"reason":"quota reached"}`, f.recorder.activities[1].Metadata)
}

func TestUpdateApplicationRedirectNeedsReason(t *testing.T) {
	f := newApplicationFixture(existingApplication())

	_, err := f.service.Update(context.Background(), "1", UpdateApplicationInput{ID: 1, StatusID: models.StatusCancelled, Reason: "  "})

	assert.Equal(t, KindValidation, KindOf(err))
	stored, _ := f.apps.GetByID(context.Background(), 1)
	assert.Equal(t, models.StatusPending, stored.StatusID)
}

func TestUpdateApplicationCannotReopenFinalStatus(t *testing.T) {
	f := newApplicationFixture(existingApplication())

	_, err := f.service.Update(context.Background(), "1", UpdateApplicationInput{ID: 1, StatusID: models.StatusCancelled, Reason: "bye"})
	require.NoError(t, err)

	_, err = f.service.Update(context.Background(), "1", UpdateApplicationInput{ID: 1, StatusID: models.StatusPending, Reason: "back"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.service.Update(context.Background(), "1", UpdateApplicationInput{ID: 1, Reason: "just the reason"})
	assert.Equal(t, KindValidation, KindOf(err))

	stored, err := f.apps.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.StatusID)
	assert.Equal(t, "bye", stored.Reason)
}

func TestUpdateApplicationStatusFollowsTransitions(t *testing.T) {
	f := newApplicationFixture(
		existingApplication(),
		models.Application{ID: 2, ProgramID: 100, StudentID: 1, StatusID: models.StatusPending},
		models.Application{ID: 3, ProgramID: 100, StudentID: 1, StatusID: models.StatusApproved},
	)

	approved, err := f.service.Update(context.Background(), "9", UpdateApplicationInput{ID: 1, StatusID: models.StatusApproved, Reason: "welcome"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.StatusID)

	_, err = f.service.Update(context.Background(), "9", UpdateApplicationInput{ID: 2, StatusID: models.StatusDeleted})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.service.Update(context.Background(), "9", UpdateApplicationInput{ID: 3, StatusID: models.StatusRejected})
	assert.Equal(t, KindValidation, KindOf(err))

	unchanged, err := f.service.Update(context.Background(), "9", UpdateApplicationInput{ID: 3, StatusID: models.StatusApproved, Reason: "docs later"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, unchanged.StatusID)
}

func TestActivityMetadata(t *testing.T) {
	assert.JSONEq(t, `{"reason":"said \"no\"\n"}`, reasonMetadata("said \"no\"\n"))
	assert.JSONEq(t, `{"document_id":17}`, documentMetadata(17))
}

func TestTransitionsOnlyFromPending(t *testing.T) {
	for _, status := range []models.Status{models.StatusApproved, models.StatusRejected, models.StatusCancelled, models.StatusClosed} {
		f := newApplicationFixture(models.Application{ID: 1, ProgramID: 100, StudentID: 1, StatusID: status})

		_, err := f.service.Cancel(context.Background(), TransitionInput{ID: 1, Reason: "r"})
		assert.Equal(t, KindValidation, KindOf(err), "cancel from %s", status)

		_, err = f.service.Close(context.Background(), TransitionInput{ID: 1, Reason: "r"})
		assert.Equal(t, KindValidation, KindOf(err), "close from %s", status)
	}
}

func TestCancelMissingApplication(t *testing.T) {
	f := newApplicationFixture()

	_, err := f.service.Cancel(context.Background(), TransitionInput{ID: 7, Reason: "r"})

	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestGetApplicationByID(t *testing.T) {
	f := newApplicationFixture(existingApplication())

	app, err := f.service.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, app.StudentID)

	_, err = f.service.GetByID(context.Background(), 2)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestListVisibleApplications(t *testing.T) {
	empty := newApplicationFixture()
	_, err := empty.service.ListVisible(context.Background(), "1")
	assert.Equal(t, KindNotFound, KindOf(err))

	f := newApplicationFixture(
		models.Application{ID: 1, ProgramID: 100, StudentID: 1, StatusID: models.StatusPending},
		models.Application{ID: 2, ProgramID: 100, StudentID: 2, StatusID: models.StatusPending},
		models.Application{ID: 3, ProgramID: 200, StudentID: 2, StatusID: models.StatusClosed},
	)

	student, err := f.service.ListVisible(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, appIDs(student))

	organization, err := f.service.ListVisible(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, appIDs(organization))

	_, err = f.service.ListVisible(context.Background(), "")
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestDeleteApplicationDocument(t *testing.T) {
	app := existingApplication()
	app.Documents[0].URL = "applications/1/passport.pdf"
	app.Documents[1].URL = "https://example.org/transcript.pdf"
	f := newApplicationFixture(app)

	require.NoError(t, f.service.DeleteDocument(context.Background(), 1, 1, 4))
	require.NoError(t, f.service.DeleteDocument(context.Background(), 1, 1, 5))

	stored, _ := f.apps.GetByID(context.Background(), 1)
	assert.Equal(t, []int{6}, documentIDs(stored.Documents))
	assert.Equal(t, []string{"applications/1/passport.pdf"}, f.objects.deleted)

	err := f.service.DeleteDocument(context.Background(), 1, 1, 4)
	assert.Equal(t, KindNotFound, KindOf(err))
}
