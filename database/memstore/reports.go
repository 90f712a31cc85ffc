package memstore

import (
	"complaint-portal/models"
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportsRepo struct{ db *db }

func (r *ReportsRepo) Create(_ context.Context, rep *models.HarassmentReport) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if rep.ID.IsZero() {
		rep.ID = primitive.NewObjectID()
	}
	stored := *rep
	stored.IncidentTimeline = copyStrings(rep.IncidentTimeline)
	r.db.reports[rep.ID] = stored
	return nil
}

func (r *ReportsRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.HarassmentReport, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	rep, ok := r.db.reports[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &rep, nil
}

func (r *ReportsRepo) List(_ context.Context) ([]models.HarassmentReport, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]models.HarassmentReport, 0, len(r.db.reports))
	for _, rep := range r.db.reports {
		out = append(out, rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
