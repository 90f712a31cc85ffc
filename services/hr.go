package services

import (
	"complaint-portal/models"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HRUpdateInput is a partial profile update; nil fields are left unchanged.
type HRUpdateInput struct {
	Organization *string `json:"organization"`
	Position     *string `json:"position"`
	Department   *string `json:"department"`
	IsNGO        *bool   `json:"isNGO"`
}

type HRService struct {
	users UserRepository
	hrs   HRRepository
	now   func() time.Time
}

func NewHRService(store *Store) *HRService {
	return &HRService{users: store.Users, hrs: store.HRs, now: time.Now}
}

// List returns the public handler directory with each owner's name and email.
func (s *HRService) List(ctx context.Context) ([]models.HRListing, error) {
	profiles, err := s.hrs.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.User)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.HRListing, 0, len(profiles))
	for i := range profiles {
		listing := models.NewHRListing(&profiles[i], users[profiles[i].User])
		if listing.User != nil {
			listing.User.Phone = ""
		}
		out = append(out, listing)
	}
	return out, nil
}

func (s *HRService) Get(ctx context.Context, id string) (*models.HRListing, error) {
	profile, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, profile.User)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	listing := models.NewHRListing(profile, user)
	return &listing, nil
}

// Update applies in to the profile. Only its owner or an admin may do so.
func (s *HRService) Update(ctx context.Context, caller *models.User, id string, in HRUpdateInput) (*models.HRProfile, error) {
	profile, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.User != caller.ID && caller.Role != models.RoleAdmin {
		return nil, Forbidden("Not authorized to update this HR profile")
	}

	if in.Organization != nil && *in.Organization != "" {
		profile.Organization = *in.Organization
	}
	if in.Position != nil && *in.Position != "" {
		profile.Position = *in.Position
	}
	if in.Department != nil && *in.Department != "" {
		profile.Department = *in.Department
	}
	if in.IsNGO != nil {
		profile.IsNGO = *in.IsNGO
	}
	profile.UpdatedAt = s.now()

	if err := s.hrs.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *HRService) find(ctx context.Context, hex string) (*models.HRProfile, error) {
	id, err := parseID(hex, "HR/NGO not found")
	if err != nil {
		return nil, err
	}
	profile, err := s.hrs.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, NotFound("HR/NGO not found")
		}
		return nil, err
	}
	return profile, nil
}
