package services

import (
	"complaint-portal/models"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type StatusInput struct {
	Status     string `json:"status" binding:"required"`
	FlagReason string `json:"flagReason"`
}

type NGOReportInput struct {
	Details string `json:"details"`
}

// UpdateStatus moves an assigned complaint to a new status. In strict mode
// only edges of the status graph are accepted.
func (s *ComplaintService) UpdateStatus(ctx context.Context, caller *models.User, id string, in StatusInput) (*models.Complaint, error) {
	c, err := s.assigned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	next := models.Status(strings.TrimSpace(in.Status))
	if next == "" {
		return nil, Validation("Status is required")
	}
	if s.opts.StrictTransitions {
		if !next.Known() {
			return nil, Validation(fmt.Sprintf("Invalid status %q", next))
		}
		if !c.Status.CanTransitionTo(next) {
			return nil, Validation(fmt.Sprintf("Cannot change status from %s to %s", c.Status, next))
		}
	}

	now := s.now()
	prev := c.Status
	c.Status = next
	switch next {
	case models.StatusFlagged:
		c.IsFlagged = true
		c.FlagReason = in.FlagReason
	case models.StatusReportedToNGO:
		c.ReportedToNGO = true
		if c.NGOReportDate == nil {
			c.NGOReportDate = &now
		}
	}
	c.UpdatedAt = now

	if err := s.store.Complaints.SaveWorkflow(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("complaint status changed",
		zap.String("complaint_id", c.ID.Hex()),
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
	)
	return c, nil
}

// ReportToNGO records that the handler escalated the complaint to an NGO.
// Reporting an already reported complaint again refreshes the details.
func (s *ComplaintService) ReportToNGO(ctx context.Context, caller *models.User, id string, in NGOReportInput) (*models.Complaint, error) {
	c, err := s.assigned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if s.opts.StrictTransitions && c.Status != models.StatusReportedToNGO && !c.Status.CanTransitionTo(models.StatusReportedToNGO) {
		return nil, Validation(fmt.Sprintf("Cannot report a %s complaint to an NGO", c.Status))
	}

	now := s.now()
	c.Status = models.StatusReportedToNGO
	c.ReportedToNGO = true
	c.NGOReportDetails = in.Details
	c.NGOReportDate = &now
	c.UpdatedAt = now

	if err := s.store.Complaints.SaveWorkflow(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("complaint reported to ngo", zap.String("complaint_id", c.ID.Hex()))
	return c, nil
}
