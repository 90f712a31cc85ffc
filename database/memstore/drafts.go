package memstore

import (
	"complaint-portal/models"
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DraftsRepo struct{ db *db }

func (r *DraftsRepo) Create(_ context.Context, d *models.Draft) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	stored := *d
	stored.Content = copyContent(d.Content)
	r.db.drafts[d.ID] = stored
	return nil
}

func (r *DraftsRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Draft, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	d, ok := r.db.drafts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	d.Content = copyContent(d.Content)
	return &d, nil
}

func (r *DraftsRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Draft, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.Draft{}
	for _, d := range r.db.drafts {
		if d.User == userID {
			d.Content = copyContent(d.Content)
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *DraftsRepo) Update(_ context.Context, d *models.Draft) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.drafts[d.ID]; !ok {
		return models.ErrNotFound
	}
	stored := *d
	stored.Content = copyContent(d.Content)
	r.db.drafts[d.ID] = stored
	return nil
}

func (r *DraftsRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.drafts[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.db.drafts, id)
	return nil
}

func (r *DraftsRepo) DeleteMany(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.db.drafts[id]; ok {
			delete(r.db.drafts, id)
			n++
		}
	}
	return n, nil
}

func (r *DraftsRepo) Promoted(_ context.Context, limit int) ([]primitive.ObjectID, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []primitive.ObjectID{}
	for _, c := range r.db.complaints {
		if len(out) == limit {
			break
		}
		if c.SourceDraft == nil {
			continue
		}
		if _, ok := r.db.drafts[*c.SourceDraft]; ok {
			out = append(out, *c.SourceDraft)
		}
	}
	return out, nil
}
