package services

import (
	"complaint-portal/models"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrDuplicate is returned by Create when a unique key (user email, HR
// profile owner) is already taken.
var ErrDuplicate = errors.New("duplicate key")

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByIDs returns the users that exist among ids, keyed by id.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, phone, address string) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
}

type HRRepository interface {
	Create(ctx context.Context, p *models.HRProfile) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.HRProfile, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.HRProfile, error)
	FindByUsers(ctx context.Context, userIDs []primitive.ObjectID) (map[primitive.ObjectID]*models.HRProfile, error)
	List(ctx context.Context) ([]models.HRProfile, error)
	Update(ctx context.Context, p *models.HRProfile) error
}

type DraftRepository interface {
	Create(ctx context.Context, d *models.Draft) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Draft, error)
	// ListByUser returns the owner's drafts, most recently updated first.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Draft, error)
	Update(ctx context.Context, d *models.Draft) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeleteMany removes whichever of ids still exist and reports how many.
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	// Promoted returns up to limit ids of drafts that still exist although a
	// complaint was already created from them.
	Promoted(ctx context.Context, limit int) ([]primitive.ObjectID, error)
}

type ComplaintRepository interface {
	Create(ctx context.Context, c *models.Complaint) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Complaint, error)
	FindBySourceDraft(ctx context.Context, draftID primitive.ObjectID) (*models.Complaint, error)
	// ListByUser and ListByHR return newest first.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Complaint, error)
	ListByHR(ctx context.Context, hrID primitive.ObjectID) ([]models.Complaint, error)
	// SaveWorkflow persists the handler-controlled fields: status, flag,
	// NGO report and updatedAt.
	SaveWorkflow(ctx context.Context, c *models.Complaint) error
	Perpetrators(ctx context.Context, hrID primitive.ObjectID, normalize bool) ([]models.PerpetratorSummary, error)
}

type ReportRepository interface {
	Create(ctx context.Context, r *models.HarassmentReport) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.HarassmentReport, error)
	// List returns newest first.
	List(ctx context.Context) ([]models.HarassmentReport, error)
}

// Transactor runs fn so that every repository call made with the context it
// receives commits or aborts together.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store groups the repositories a backend provides.
type Store struct {
	Users      UserRepository
	HRs        HRRepository
	Drafts     DraftRepository
	Complaints ComplaintRepository
	Reports    ReportRepository
	// Tx is nil when the backend cannot run multi-document transactions.
	Tx Transactor
}

// Notifier is told about complaints newly assigned to a handler.
type Notifier interface {
	ComplaintAssigned(ctx context.Context, handler *models.User, c *models.Complaint) error
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}

// parseID maps a malformed hex id to the NotFound of the entity it addresses.
func parseID(hex, notFoundMsg string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, NotFound(notFoundMsg)
	}
	return id, nil
}
