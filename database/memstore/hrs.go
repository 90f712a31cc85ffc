package memstore

import (
	"complaint-portal/models"
	"complaint-portal/services"
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HRsRepo struct{ db *db }

func (r *HRsRepo) Create(_ context.Context, p *models.HRProfile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.hrs {
		if existing.User == p.User {
			return services.ErrDuplicate
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.db.hrs[p.ID] = *p
	return nil
}

func (r *HRsRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.HRProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.hrs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (r *HRsRepo) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.HRProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, p := range r.db.hrs {
		if p.User == userID {
			return &p, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *HRsRepo) FindByUsers(_ context.Context, userIDs []primitive.ObjectID) (map[primitive.ObjectID]*models.HRProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	want := make(map[primitive.ObjectID]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}
	out := make(map[primitive.ObjectID]*models.HRProfile)
	for _, p := range r.db.hrs {
		if want[p.User] {
			p := p
			out[p.User] = &p
		}
	}
	return out, nil
}

func (r *HRsRepo) List(_ context.Context) ([]models.HRProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]models.HRProfile, 0, len(r.db.hrs))
	for _, p := range r.db.hrs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *HRsRepo) Update(_ context.Context, p *models.HRProfile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.hrs[p.ID]; !ok {
		return models.ErrNotFound
	}
	r.db.hrs[p.ID] = *p
	return nil
}
