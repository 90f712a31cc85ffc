package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attachments lists the stored evidence of a draft or complaint. Every entry is
// a path relative to the upload root, e.g. "images/images-1700000000000-42.jpg".
type Attachments struct {
	Images []string `json:"images" bson:"images"`
	Videos []string `json:"videos" bson:"videos"`
	Audios []string `json:"audios" bson:"audios"`
	PDF    string   `json:"pdf,omitempty" bson:"pdf,omitempty"`
}

// Entries returns the paths recorded under bucket.
func (a Attachments) Entries(bucket Bucket) []string {
	switch bucket {
	case BucketImage:
		return a.Images
	case BucketVideo:
		return a.Videos
	case BucketAudio:
		return a.Audios
	case BucketPDF:
		if a.PDF != "" {
			return []string{a.PDF}
		}
	}
	return nil
}

// All returns every recorded path.
func (a Attachments) All() []string {
	out := make([]string, 0, len(a.Images)+len(a.Videos)+len(a.Audios)+1)
	out = append(out, a.Images...)
	out = append(out, a.Videos...)
	out = append(out, a.Audios...)
	if a.PDF != "" {
		out = append(out, a.PDF)
	}
	return out
}

// Contains reports whether path is recorded under the given bucket.
func (a Attachments) Contains(bucket Bucket, path string) bool {
	return containsString(a.Entries(bucket), path)
}

// Merge overwrites each bucket of a with the one from next when next has any
// entries there. Empty buckets never clear what is already stored.
func (a *Attachments) Merge(next Attachments) {
	if len(next.Images) > 0 {
		a.Images = next.Images
	}
	if len(next.Videos) > 0 {
		a.Videos = next.Videos
	}
	if len(next.Audios) > 0 {
		a.Audios = next.Audios
	}
	if next.PDF != "" {
		a.PDF = next.PDF
	}
}

// Normalize replaces nil slices with empty ones so documents always carry arrays.
func (a *Attachments) Normalize() {
	if a.Images == nil {
		a.Images = []string{}
	}
	if a.Videos == nil {
		a.Videos = []string{}
	}
	if a.Audios == nil {
		a.Audios = []string{}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Content is the part of a complaint the complainant writes. Drafts and
// complaints share it so promotion is a plain copy.
type Content struct {
	Title              string    `json:"title" bson:"title"`
	Description        string    `json:"description" bson:"description"`
	IsAnonymous        bool      `json:"isAnonymous" bson:"isAnonymous"`
	PerpetratorName    string    `json:"perpetratorName" bson:"perpetratorName"`
	PerpetratorDetails string    `json:"perpetratorDetails" bson:"perpetratorDetails"`
	IncidentDate       time.Time `json:"incidentDate" bson:"incidentDate"`
	IncidentLocation   string    `json:"incidentLocation" bson:"incidentLocation"`
	Attachments        `bson:",inline"`
}

type Draft struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Content   `bson:",inline"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Complaint struct {
	ID          primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	User        primitive.ObjectID  `json:"user" bson:"user"`
	HR          primitive.ObjectID  `json:"hr" bson:"hr"`
	SourceDraft *primitive.ObjectID `json:"sourceDraft,omitempty" bson:"sourceDraft,omitempty"`
	Content     `bson:",inline"`

	Status           Status     `json:"status" bson:"status"`
	IsFlagged        bool       `json:"isFlagged" bson:"isFlagged"`
	FlagReason       string     `json:"flagReason,omitempty" bson:"flagReason,omitempty"`
	ReportedToNGO    bool       `json:"reportedToNGO" bson:"reportedToNGO"`
	NGOReportDetails string     `json:"ngoReportDetails,omitempty" bson:"ngoReportDetails,omitempty"`
	NGOReportDate    *time.Time `json:"ngoReportDate,omitempty" bson:"ngoReportDate,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NewComplaint builds a pending complaint owned by user and assigned to hr.
func NewComplaint(user, hr primitive.ObjectID, content Content, now time.Time) *Complaint {
	content.Normalize()
	return &Complaint{
		User:      user,
		HR:        hr,
		Content:   content,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ComplaintView is a complaint with its complainant and handler populated.
type ComplaintView struct {
	Complaint `json:",inline"`
	UserInfo  *UserSummary `json:"userInfo,omitempty"`
	HRInfo    *HRSummary   `json:"hrInfo,omitempty"`
}
