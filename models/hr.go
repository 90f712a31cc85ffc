package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HRProfile holds the organization details of a complaint handler.
type HRProfile struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User         primitive.ObjectID `json:"user" bson:"user"`
	Organization string             `json:"organization" bson:"organization"`
	Position     string             `json:"position" bson:"position"`
	Department   string             `json:"department" bson:"department"`
	IsNGO        bool               `json:"isNGO" bson:"isNGO"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// HRSummary is the handler information shown to complainants.
type HRSummary struct {
	ID           primitive.ObjectID `json:"_id"`
	Name         string             `json:"name,omitempty"`
	Organization string             `json:"organization"`
	Position     string             `json:"position"`
	Department   string             `json:"department,omitempty"`
	IsNGO        bool               `json:"isNGO"`
}

// HRListing is an HR profile with its owning user populated, the shape the
// public directory returns.
type HRListing struct {
	ID           primitive.ObjectID `json:"_id"`
	User         *UserSummary       `json:"user"`
	Organization string             `json:"organization"`
	Position     string             `json:"position"`
	Department   string             `json:"department"`
	IsNGO        bool               `json:"isNGO"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

func NewHRListing(p *HRProfile, u *User) HRListing {
	return HRListing{
		ID:           p.ID,
		User:         u.Summary(),
		Organization: p.Organization,
		Position:     p.Position,
		Department:   p.Department,
		IsNGO:        p.IsNGO,
		UpdatedAt:    p.UpdatedAt,
	}
}
