// Package memstore keeps every collection in process memory. It backs
// DB_DRIVER=memory and the service and controller tests.
package memstore

import (
	"complaint-portal/models"
	"complaint-portal/services"
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type db struct {
	mu         sync.RWMutex
	users      map[primitive.ObjectID]models.User
	hrs        map[primitive.ObjectID]models.HRProfile
	drafts     map[primitive.ObjectID]models.Draft
	complaints map[primitive.ObjectID]models.Complaint
	reports    map[primitive.ObjectID]models.HarassmentReport
}

// New returns an empty store. Tx is left nil, so promotions take the
// sequential path unless a caller sets it.
func New() *services.Store {
	d := &db{
		users:      map[primitive.ObjectID]models.User{},
		hrs:        map[primitive.ObjectID]models.HRProfile{},
		drafts:     map[primitive.ObjectID]models.Draft{},
		complaints: map[primitive.ObjectID]models.Complaint{},
		reports:    map[primitive.ObjectID]models.HarassmentReport{},
	}
	return &services.Store{
		Users:      &UsersRepo{d},
		HRs:        &HRsRepo{d},
		Drafts:     &DraftsRepo{d},
		Complaints: &ComplaintsRepo{d},
		Reports:    &ReportsRepo{d},
	}
}

// Tx satisfies services.Transactor for tests that exercise the
// transactional promotion path.
type Tx struct{}

func (Tx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func copyContent(c models.Content) models.Content {
	c.Images = copyStrings(c.Images)
	c.Videos = copyStrings(c.Videos)
	c.Audios = copyStrings(c.Audios)
	return c
}
