package services

import (
	"complaint-portal/models"
	"complaint-portal/storage"
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

type draftRules struct {
	Title        string    `label:"Title" validate:"omitempty,min=5"`
	Description  string    `label:"Description" validate:"omitempty,min=10"`
	IncidentDate time.Time `label:"Incident date" validate:"omitempty,notfuture"`
}

// SaveDraft creates a draft, or updates draftID when it is set. On update the
// text fields are replaced and each attachment bucket is replaced only when
// new files arrived for it.
func (s *ComplaintService) SaveDraft(ctx context.Context, owner *models.User, draftID string, in ContentInput, uploads []storage.Upload) (*models.Draft, error) {
	content, err := in.content()
	if err != nil {
		return nil, err
	}
	if err := check(draftRules{
		Title:        content.Title,
		Description:  content.Description,
		IncidentDate: content.IncidentDate,
	}); err != nil {
		return nil, err
	}

	var draft *models.Draft
	if draftID = strings.TrimSpace(draftID); draftID != "" {
		if draft, err = s.ownDraft(ctx, owner, draftID, "Not authorized to update this draft"); err != nil {
			return nil, err
		}
	}

	att, err := s.storeFiles(ctx, uploads)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if draft == nil {
		content.Attachments = att
		content.Normalize()
		draft = &models.Draft{User: owner.ID, Content: content, CreatedAt: now, UpdatedAt: now}
		if err := s.store.Drafts.Create(ctx, draft); err != nil {
			s.files.Discard(att)
			return nil, err
		}
		return draft, nil
	}

	existing := draft.Attachments
	existing.Merge(att)
	content.Attachments = existing
	content.Normalize()
	draft.Content = content
	draft.UpdatedAt = now
	if err := s.store.Drafts.Update(ctx, draft); err != nil {
		s.files.Discard(att)
		return nil, err
	}
	return draft, nil
}

func (s *ComplaintService) ListDrafts(ctx context.Context, owner *models.User) ([]models.Draft, error) {
	drafts, err := s.store.Drafts.ListByUser(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	for i := range drafts {
		drafts[i].Normalize()
	}
	return drafts, nil
}

func (s *ComplaintService) GetDraft(ctx context.Context, owner *models.User, id string) (*models.Draft, error) {
	return s.ownDraft(ctx, owner, id, "Not authorized to access this draft")
}

func (s *ComplaintService) DeleteDraft(ctx context.Context, owner *models.User, id string) error {
	draft, err := s.ownDraft(ctx, owner, id, "Not authorized to delete this draft")
	if err != nil {
		return err
	}
	if err := s.store.Drafts.Delete(ctx, draft.ID); err != nil {
		if isNotFound(err) {
			return NotFound("Draft not found")
		}
		return err
	}
	return nil
}

// SubmitDraft promotes a draft into a complaint assigned to hrID and removes
// the draft. Submitting a draft that was already promoted returns the
// existing complaint.
func (s *ComplaintService) SubmitDraft(ctx context.Context, owner *models.User, id, hrID string) (*models.Complaint, error) {
	draft, err := s.ownDraft(ctx, owner, id, "Not authorized to submit this draft")
	if err != nil {
		return nil, err
	}
	handler, err := s.resolveHandler(ctx, strings.TrimSpace(hrID))
	if err != nil {
		return nil, err
	}

	existing, err := s.store.Complaints.FindBySourceDraft(ctx, draft.ID)
	switch {
	case err == nil:
		s.logger.Info("draft already promoted", zap.String("draft_id", draft.ID.Hex()), zap.String("complaint_id", existing.ID.Hex()))
		s.removePromotedDraft(ctx, draft)
		return existing, nil
	case !isNotFound(err):
		return nil, err
	}

	complaint := models.NewComplaint(owner.ID, handler.ID, draft.Content, s.now())
	complaint.SourceDraft = &draft.ID

	if s.store.Tx != nil {
		err = s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.store.Complaints.Create(ctx, complaint); err != nil {
				return err
			}
			return s.store.Drafts.Delete(ctx, draft.ID)
		})
	} else if err = s.store.Complaints.Create(ctx, complaint); err == nil {
		s.removePromotedDraft(ctx, draft)
	}
	if errors.Is(err, ErrDuplicate) {
		// A concurrent submit of the same draft won.
		existing, ferr := s.store.Complaints.FindBySourceDraft(ctx, draft.ID)
		if ferr != nil {
			return nil, ferr
		}
		s.removePromotedDraft(ctx, draft)
		return existing, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("draft promoted",
		zap.String("draft_id", draft.ID.Hex()),
		zap.String("complaint_id", complaint.ID.Hex()),
	)
	s.notify(ctx, handler, complaint)
	return complaint, nil
}

// removePromotedDraft deletes a draft whose complaint already exists. A
// failure is left for the reconciler.
func (s *ComplaintService) removePromotedDraft(ctx context.Context, draft *models.Draft) {
	if err := s.store.Drafts.Delete(ctx, draft.ID); err != nil && !isNotFound(err) {
		s.logger.Warn("promoted draft not removed", zap.String("draft_id", draft.ID.Hex()), zap.Error(err))
	}
}

// reconcileBatch bounds how many draft ids one pass holds in memory.
const reconcileBatch = 500

// ReconcilePromotions deletes drafts that survived their promotion. Only
// drafts that still exist are selected, so once they are gone later passes
// send nothing to the store.
func (s *ComplaintService) ReconcilePromotions(ctx context.Context) (int64, error) {
	var total int64
	for {
		ids, err := s.store.Drafts.Promoted(ctx, reconcileBatch)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}
		n, err := s.store.Drafts.DeleteMany(ctx, ids)
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 || len(ids) < reconcileBatch {
			return total, nil
		}
	}
}

func (s *ComplaintService) ownDraft(ctx context.Context, owner *models.User, hex, forbidden string) (*models.Draft, error) {
	id, err := parseID(hex, "Draft not found")
	if err != nil {
		return nil, err
	}
	draft, err := s.store.Drafts.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, NotFound("Draft not found")
		}
		return nil, err
	}
	if draft.User != owner.ID {
		return nil, Forbidden(forbidden)
	}
	draft.Normalize()
	return draft, nil
}
