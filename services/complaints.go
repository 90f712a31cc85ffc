package services

import (
	"complaint-portal/models"
	"complaint-portal/storage"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Files is the attachment store complaints and drafts write evidence to.
type Files interface {
	Store(ctx context.Context, uploads []storage.Upload) (models.Attachments, error)
	Discard(att models.Attachments)
	Open(ctx context.Context, rel string) (io.ReadCloser, error)
}

type ComplaintOptions struct {
	// StrictTransitions enforces the status graph. When false any status
	// string is accepted.
	StrictTransitions bool
	// NormalizePerpetrators groups names case- and whitespace-insensitively.
	NormalizePerpetrators bool
	// AdminCanViewAll lets admins read every complaint, not only assigned ones.
	AdminCanViewAll bool
	// UploadRoot is stripped from legacy attachment paths before matching.
	UploadRoot string
}

// ContentInput is the complainant-written part of a draft or complaint as it
// arrives in a multipart form.
type ContentInput struct {
	Title              string `form:"title"`
	Description        string `form:"description"`
	IsAnonymous        bool   `form:"isAnonymous"`
	PerpetratorName    string `form:"perpetratorName"`
	PerpetratorDetails string `form:"perpetratorDetails"`
	IncidentDate       string `form:"incidentDate"`
	IncidentLocation   string `form:"incidentLocation"`
}

type ComplaintInput struct {
	ContentInput
	HRID string `form:"hrId"`
}

type complaintRules struct {
	Title              string    `label:"Title" validate:"required,min=5"`
	Description        string    `label:"Description" validate:"required,min=20"`
	IsAnonymous        bool      `label:"Anonymous"`
	PerpetratorName    string    `label:"Perpetrator name" validate:"required_if=IsAnonymous false"`
	PerpetratorDetails string    `label:"Perpetrator details" validate:"required_if=IsAnonymous false"`
	IncidentDate       time.Time `label:"Incident date" validate:"required,notfuture"`
	IncidentLocation   string    `label:"Location" validate:"required"`
	HRID               string    `label:"HR/NGO" validate:"required"`
}

type ComplaintService struct {
	store    *Store
	files    Files
	notifier Notifier
	opts     ComplaintOptions
	logger   *zap.Logger
	now      func() time.Time

	// pending tracks notifications still being delivered.
	pending sync.WaitGroup
}

// NewComplaintService wires the complaint and draft operations. notifier may
// be nil.
func NewComplaintService(store *Store, files Files, notifier Notifier, opts ComplaintOptions, logger *zap.Logger) *ComplaintService {
	return &ComplaintService{
		store:    store,
		files:    files,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// content trims the free-text fields. The perpetrator name is kept as sent so
// exact aggregation tells "A" and "A " apart.
func (in ContentInput) content() (models.Content, error) {
	date, err := parseDate(in.IncidentDate)
	if err != nil {
		return models.Content{}, err
	}
	return models.Content{
		Title:              strings.TrimSpace(in.Title),
		Description:        strings.TrimSpace(in.Description),
		IsAnonymous:        in.IsAnonymous,
		PerpetratorName:    in.PerpetratorName,
		PerpetratorDetails: strings.TrimSpace(in.PerpetratorDetails),
		IncidentDate:       date,
		IncidentLocation:   strings.TrimSpace(in.IncidentLocation),
	}, nil
}

// CreateComplaint validates the form, stores the evidence and files a pending
// complaint assigned to the chosen handler.
func (s *ComplaintService) CreateComplaint(ctx context.Context, owner *models.User, in ComplaintInput, uploads []storage.Upload) (*models.Complaint, error) {
	content, err := in.content()
	if err != nil {
		return nil, err
	}
	if err := check(complaintRules{
		Title:              content.Title,
		Description:        content.Description,
		IsAnonymous:        content.IsAnonymous,
		PerpetratorName:    strings.TrimSpace(content.PerpetratorName),
		PerpetratorDetails: content.PerpetratorDetails,
		IncidentDate:       content.IncidentDate,
		IncidentLocation:   content.IncidentLocation,
		HRID:               strings.TrimSpace(in.HRID),
	}); err != nil {
		return nil, err
	}

	handler, err := s.resolveHandler(ctx, strings.TrimSpace(in.HRID))
	if err != nil {
		return nil, err
	}

	att, err := s.storeFiles(ctx, uploads)
	if err != nil {
		return nil, err
	}
	content.Attachments = att

	complaint := models.NewComplaint(owner.ID, handler.ID, content, s.now())
	if err := s.store.Complaints.Create(ctx, complaint); err != nil {
		s.files.Discard(att)
		return nil, err
	}

	s.logger.Info("complaint filed",
		zap.String("complaint_id", complaint.ID.Hex()),
		zap.String("hr_id", handler.ID.Hex()),
		zap.Int("attachments", len(att.All())),
	)
	s.notify(ctx, handler, complaint)
	return complaint, nil
}

// resolveHandler finds the user a complaint is assigned to. hex may be the
// handler's user id or the id of their HR profile; either way the result is a
// user whose role can handle complaints.
func (s *ComplaintService) resolveHandler(ctx context.Context, hex string) (*models.User, error) {
	if hex == "" {
		return nil, Validation("HR/NGO is required")
	}
	id, err := parseID(hex, "HR/NGO not found")
	if err != nil {
		return nil, err
	}

	user, err := s.store.Users.FindByID(ctx, id)
	switch {
	case err == nil:
	case isNotFound(err):
		profile, perr := s.store.HRs.FindByID(ctx, id)
		if perr != nil {
			if isNotFound(perr) {
				return nil, NotFound("HR/NGO not found")
			}
			return nil, perr
		}
		if user, err = s.store.Users.FindByID(ctx, profile.User); err != nil {
			if isNotFound(err) {
				return nil, NotFound("HR/NGO not found")
			}
			return nil, err
		}
	default:
		return nil, err
	}

	if !user.Role.CanHandleComplaints() {
		return nil, NotFound("HR/NGO not found")
	}
	return user, nil
}

func (s *ComplaintService) storeFiles(ctx context.Context, uploads []storage.Upload) (models.Attachments, error) {
	att, err := s.files.Store(ctx, uploads)
	if err != nil {
		var rejected *storage.RejectedError
		if errors.As(err, &rejected) {
			return att, Validation(rejected.Reason)
		}
		return att, err
	}
	att.Normalize()
	return att, nil
}

// notify delivers the assignment notice in the background. The request that
// created the complaint does not wait for it and its cancellation does not
// abort the delivery.
func (s *ComplaintService) notify(ctx context.Context, handler *models.User, c *models.Complaint) {
	if s.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	snapshot := *c
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.notifier.ComplaintAssigned(ctx, handler, &snapshot); err != nil {
			s.logger.Warn("failed to notify handler",
				zap.String("complaint_id", snapshot.ID.Hex()),
				zap.String("hr_id", handler.ID.Hex()),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until every notification started so far has been delivered or
// has failed.
func (s *ComplaintService) Wait() {
	s.pending.Wait()
}

func (s *ComplaintService) load(ctx context.Context, hex string) (*models.Complaint, error) {
	id, err := parseID(hex, "Complaint not found")
	if err != nil {
		return nil, err
	}
	c, err := s.store.Complaints.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, NotFound("Complaint not found")
		}
		return nil, err
	}
	return c, nil
}

// canView applies the read rule shared by fetch, download and PDF export.
func (s *ComplaintService) canView(caller *models.User, c *models.Complaint) bool {
	switch {
	case c.User == caller.ID:
		return true
	case caller.Role.CanHandleComplaints() && c.HR == caller.ID:
		return true
	case caller.Role == models.RoleAdmin && s.opts.AdminCanViewAll:
		return true
	}
	return false
}

func (s *ComplaintService) viewable(ctx context.Context, caller *models.User, hex string) (*models.Complaint, error) {
	c, err := s.load(ctx, hex)
	if err != nil {
		return nil, err
	}
	if !s.canView(caller, c) {
		return nil, Forbidden("Not authorized to view this complaint")
	}
	return c, nil
}

// assigned loads a complaint the caller handles. Only the assignee may act on
// it.
func (s *ComplaintService) assigned(ctx context.Context, caller *models.User, hex string) (*models.Complaint, error) {
	c, err := s.load(ctx, hex)
	if err != nil {
		return nil, err
	}
	if !caller.Role.CanHandleComplaints() || c.HR != caller.ID {
		return nil, Forbidden("Not authorized to update this complaint")
	}
	return c, nil
}

func (s *ComplaintService) Get(ctx context.Context, caller *models.User, id string) (*models.ComplaintView, error) {
	c, err := s.viewable(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	views, err := s.populate(ctx, caller, []models.Complaint{*c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ComplaintService) ListForUser(ctx context.Context, caller *models.User) ([]models.ComplaintView, error) {
	list, err := s.store.Complaints.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, caller, list)
}

func (s *ComplaintService) ListForHR(ctx context.Context, caller *models.User) ([]models.ComplaintView, error) {
	list, err := s.store.Complaints.ListByHR(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, caller, list)
}

// populate attaches complainant and handler details. The complainant of an
// anonymous complaint is only shown to the complainant themself.
func (s *ComplaintService) populate(ctx context.Context, viewer *models.User, list []models.Complaint) ([]models.ComplaintView, error) {
	seen := make(map[primitive.ObjectID]bool)
	var userIDs, hrIDs []primitive.ObjectID
	for _, c := range list {
		if !seen[c.User] {
			seen[c.User] = true
			userIDs = append(userIDs, c.User)
		}
		if !seen[c.HR] {
			seen[c.HR] = true
			userIDs = append(userIDs, c.HR)
		}
		hrIDs = append(hrIDs, c.HR)
	}

	users, err := s.store.Users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	profiles, err := s.store.HRs.FindByUsers(ctx, hrIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.ComplaintView, 0, len(list))
	for _, c := range list {
		c.Attachments.Normalize()
		view := models.ComplaintView{Complaint: c}
		if !c.IsAnonymous || c.User == viewer.ID {
			view.UserInfo = users[c.User].Summary()
		}
		if handler, ok := users[c.HR]; ok {
			info := &models.HRSummary{ID: handler.ID, Name: handler.Name}
			if p, ok := profiles[c.HR]; ok {
				info.Organization = p.Organization
				info.Position = p.Position
				info.Department = p.Department
				info.IsNGO = p.IsNGO
			}
			view.HRInfo = info
		}
		views = append(views, view)
	}
	return views, nil
}
