package services_test

import (
	"complaint-portal/database/memstore"
	"complaint-portal/models"
	"complaint-portal/services"
	"complaint-portal/storage"
	"context"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func draftInput() services.ContentInput {
	return services.ContentInput{
		Title:            "Draft title",
		Description:      "Started writing",
		PerpetratorName:  "Alex",
		IncidentDate:     "2024-02-01",
		IncidentLocation: "Warehouse",
	}
}

func TestSaveDraftCreateAndUpdate(t *testing.T) {
	f := newFixture(t, defaultOptions())
	ctx := context.Background()

	draft, err := f.complaints.SaveDraft(ctx, f.user, "", draftInput(), []storage.Upload{
		upload(storage.FieldImages, "a.png", "image/png", "a"),
		upload(storage.FieldAudios, "v.mp3", "audio/mpeg", "v"),
	})
	require.NoError(t, err)
	require.Len(t, draft.Images, 1)
	require.Len(t, draft.Audios, 1)
	firstImage, firstAudio := draft.Images[0], draft.Audios[0]

	in := draftInput()
	in.Title = "Updated title"
	updated, err := f.complaints.SaveDraft(ctx, f.user, draft.ID.Hex(), in, []storage.Upload{
		upload(storage.FieldImages, "b.png", "image/png", "b"),
	})
	require.NoError(t, err)
	assert.Equal(t, draft.ID, updated.ID)
	assert.Equal(t, "Updated title", updated.Title)
	require.Len(t, updated.Images, 1)
	assert.NotEqual(t, firstImage, updated.Images[0], "new images replace the bucket")
	assert.Equal(t, []string{firstAudio}, updated.Audios, "buckets without new files are kept")

	drafts, err := f.complaints.ListDrafts(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Updated title", drafts[0].Title)
}

func TestSaveDraftValidation(t *testing.T) {
	f := newFixture(t, defaultOptions())
	ctx := context.Background()

	_, err := f.complaints.SaveDraft(ctx, f.user, "", services.ContentInput{}, nil)
	assert.NoError(t, err, "empty drafts are allowed")

	_, err = f.complaints.SaveDraft(ctx, f.user, "", services.ContentInput{Title: "abc"}, nil)
	requireKind(t, err, services.KindValidation)

	_, err = f.complaints.SaveDraft(ctx, f.user, "", services.ContentInput{Description: "short"}, nil)
	requireKind(t, err, services.KindValidation)

	future := time.Now().Add(72 * time.Hour).Format(time.RFC3339)
	_, err = f.complaints.SaveDraft(ctx, f.user, "", services.ContentInput{IncidentDate: future}, nil)
	requireKind(t, err, services.KindValidation)
}

// countFiles returns how many regular files exist under root.
func countFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func TestDraftOwnership(t *testing.T) {
	f := newFixture(t, defaultOptions())
	ctx := context.Background()
	draft, err := f.complaints.SaveDraft(ctx, f.user, "", draftInput(), []storage.Upload{
		upload(storage.FieldImages, "mine.png", "image/png", "png"),
	})
	require.NoError(t, err)
	id := draft.ID.Hex()
	filesBefore := countFiles(t, f.root)

	_, err = f.complaints.GetDraft(ctx, f.otherUser, id)
	requireKind(t, err, services.KindForbidden)

	foreign := draftInput()
	foreign.Title = "Overwritten title"
	foreign.Description = "Someone else wrote this"
	_, err = f.complaints.SaveDraft(ctx, f.otherUser, id, foreign, []storage.Upload{
		upload(storage.FieldImages, "theirs.png", "image/png", "png"),
		upload(storage.FieldPDF, "theirs.pdf", "application/pdf", "pdf"),
	})
	requireKind(t, err, services.KindForbidden)

	after, err := f.complaints.GetDraft(ctx, f.user, id)
	require.NoError(t, err)
	assert.Equal(t, draft.Title, after.Title)
	assert.Equal(t, draft.Description, after.Description)
	assert.Equal(t, draft.Attachments, after.Attachments)
	assert.Equal(t, filesBefore, countFiles(t, f.root), "a rejected save writes nothing to the upload root")
	err = f.complaints.DeleteDraft(ctx, f.otherUser, id)
	requireKind(t, err, services.KindForbidden)
	_, err = f.complaints.SubmitDraft(ctx, f.otherUser, id, f.hr.ID.Hex())
	requireKind(t, err, services.KindForbidden)

	_, err = f.complaints.GetDraft(ctx, f.user, "65f1c0ffee0000000000abcd")
	requireKind(t, err, services.KindNotFound)

	require.NoError(t, f.complaints.DeleteDraft(ctx, f.user, id))
	_, err = f.complaints.GetDraft(ctx, f.user, id)
	requireKind(t, err, services.KindNotFound)
}

func TestSubmitDraftPromotes(t *testing.T) {
	for _, tx := range []bool{false, true} {
		f := newFixture(t, defaultOptions())
		if tx {
			f.store.Tx = memstore.Tx{}
		}
		ctx := context.Background()

		draft, err := f.complaints.SaveDraft(ctx, f.user, "", draftInput(), []storage.Upload{
			upload(storage.FieldPDF, "doc.pdf", "application/pdf", "pdf"),
		})
		require.NoError(t, err)

		_, err = f.complaints.SubmitDraft(ctx, f.user, draft.ID.Hex(), f.user.ID.Hex())
		requireKind(t, err, services.KindNotFound)

		c, err := f.complaints.SubmitDraft(ctx, f.user, draft.ID.Hex(), f.hr.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, c.Status)
		assert.Equal(t, draft.Title, c.Title)
		assert.Equal(t, draft.PDF, c.PDF)
		require.NotNil(t, c.SourceDraft)
		assert.Equal(t, draft.ID, *c.SourceDraft)

		_, err = f.store.Drafts.FindByID(ctx, draft.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		f.complaints.Wait()
		f.notifier.AssertCalled(t, "ComplaintAssigned", "hr@example.com", "Draft title")
	}
}

func TestSubmitDraftIsIdempotent(t *testing.T) {
	f := newFixture(t, defaultOptions())
	ctx := context.Background()

	draft, err := f.complaints.SaveDraft(ctx, f.user, "", draftInput(), nil)
	require.NoError(t, err)

	// A previous promotion created the complaint but never removed the draft.
	prior := models.NewComplaint(f.user.ID, f.hr.ID, draft.Content, time.Now())
	prior.SourceDraft = &draft.ID
	require.NoError(t, f.store.Complaints.Create(ctx, prior))

	c, err := f.complaints.SubmitDraft(ctx, f.user, draft.ID.Hex(), f.hr.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, prior.ID, c.ID)

	list, err := f.complaints.ListForUser(ctx, f.user)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = f.store.Drafts.FindByID(ctx, draft.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	f.complaints.Wait()
	f.notifier.AssertNotCalled(t, "ComplaintAssigned", mock.Anything, mock.Anything)
}

func TestReconcilePromotions(t *testing.T) {
	f := newFixture(t, defaultOptions())
	ctx := context.Background()

	orphan, err := f.complaints.SaveDraft(ctx, f.user, "", draftInput(), nil)
	require.NoError(t, err)
	kept, err := f.complaints.SaveDraft(ctx, f.user, "", draftInput(), nil)
	require.NoError(t, err)

	promoted := models.NewComplaint(f.user.ID, f.hr.ID, orphan.Content, time.Now())
	promoted.SourceDraft = &orphan.ID
	require.NoError(t, f.store.Complaints.Create(ctx, promoted))

	n, err := f.complaints.ReconcilePromotions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = f.store.Drafts.FindByID(ctx, orphan.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.store.Drafts.FindByID(ctx, kept.ID)
	assert.NoError(t, err)

	n, err = f.complaints.ReconcilePromotions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

type recordingDrafts struct {
	services.DraftRepository
	deletes [][]primitive.ObjectID
}

func (r *recordingDrafts) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	r.deletes = append(r.deletes, ids)
	return r.DraftRepository.DeleteMany(ctx, ids)
}

func TestReconcilePromotionsForgetsDeletedDrafts(t *testing.T) {
	f := newFixture(t, defaultOptions())
	ctx := context.Background()
	rec := &recordingDrafts{DraftRepository: f.store.Drafts}
	f.store.Drafts = rec

	draft, err := f.complaints.SaveDraft(ctx, f.user, "", draftInput(), nil)
	require.NoError(t, err)
	promoted := models.NewComplaint(f.user.ID, f.hr.ID, draft.Content, time.Now())
	promoted.SourceDraft = &draft.ID
	require.NoError(t, f.store.Complaints.Create(ctx, promoted))

	n, err := f.complaints.ReconcilePromotions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.Len(t, rec.deletes, 1)
	assert.Equal(t, []primitive.ObjectID{draft.ID}, rec.deletes[0])

	for i := 0; i < 3; i++ {
		n, err = f.complaints.ReconcilePromotions(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
	assert.Len(t, rec.deletes, 1, "ids of drafts already removed are not sent again")
}

func TestReconcilePromotionsWorksInBatches(t *testing.T) {
	f := newFixture(t, defaultOptions())
	ctx := context.Background()
	rec := &recordingDrafts{DraftRepository: f.store.Drafts}
	f.store.Drafts = rec

	const total = 1100
	for i := 0; i < total; i++ {
		d := &models.Draft{User: f.user.ID}
		require.NoError(t, f.store.Drafts.Create(ctx, d))
		c := models.NewComplaint(f.user.ID, f.hr.ID, d.Content, time.Now())
		c.SourceDraft = &d.ID
		require.NoError(t, f.store.Complaints.Create(ctx, c))
	}

	n, err := f.complaints.ReconcilePromotions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, total, n)
	require.Len(t, rec.deletes, 3)
	assert.Len(t, rec.deletes[0], 500)
	assert.Len(t, rec.deletes[1], 500)
	assert.Len(t, rec.deletes[2], 100)

	drafts, err := f.store.Drafts.ListByUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, drafts)
}
