package memstore

import (
	"complaint-portal/models"
	"complaint-portal/services"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UsersRepo struct{ db *db }

func (r *UsersRepo) Create(_ context.Context, u *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return services.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.db.users[u.ID] = *u
	return nil
}

func (r *UsersRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (r *UsersRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *UsersRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make(map[primitive.ObjectID]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.db.users[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

func (r *UsersRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, name, phone, address string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.Name, u.Phone, u.Address = name, phone, address
	r.db.users[id] = u
	return nil
}

func (r *UsersRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.Password = hash
	r.db.users[id] = u
	return nil
}
