package memstore

import (
	"complaint-portal/models"
	"context"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ComplaintsRepo struct{ db *db }

func (r *ComplaintsRepo) Create(_ context.Context, c *models.Complaint) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	stored := *c
	stored.Content = copyContent(c.Content)
	r.db.complaints[c.ID] = stored
	return nil
}

func (r *ComplaintsRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Complaint, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.complaints[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c.Content = copyContent(c.Content)
	return &c, nil
}

func (r *ComplaintsRepo) FindBySourceDraft(_ context.Context, draftID primitive.ObjectID) (*models.Complaint, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, c := range r.db.complaints {
		if c.SourceDraft != nil && *c.SourceDraft == draftID {
			c.Content = copyContent(c.Content)
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *ComplaintsRepo) list(match func(models.Complaint) bool) []models.Complaint {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.Complaint{}
	for _, c := range r.db.complaints {
		if match(c) {
			c.Content = copyContent(c.Content)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *ComplaintsRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Complaint, error) {
	return r.list(func(c models.Complaint) bool { return c.User == userID }), nil
}

func (r *ComplaintsRepo) ListByHR(_ context.Context, hrID primitive.ObjectID) ([]models.Complaint, error) {
	return r.list(func(c models.Complaint) bool { return c.HR == hrID }), nil
}

func (r *ComplaintsRepo) SaveWorkflow(_ context.Context, c *models.Complaint) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.complaints[c.ID]
	if !ok {
		return models.ErrNotFound
	}
	stored.Status = c.Status
	stored.IsFlagged = c.IsFlagged
	stored.FlagReason = c.FlagReason
	stored.ReportedToNGO = c.ReportedToNGO
	stored.NGOReportDetails = c.NGOReportDetails
	stored.NGOReportDate = c.NGOReportDate
	stored.UpdatedAt = c.UpdatedAt
	r.db.complaints[c.ID] = stored
	return nil
}

// Perpetrators mirrors the Mongo aggregation: group by name, count, keep the
// latest incident date, order by count descending.
func (r *ComplaintsRepo) Perpetrators(_ context.Context, hrID primitive.ObjectID, normalize bool) ([]models.PerpetratorSummary, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	groups := map[string]*models.PerpetratorSummary{}
	var order []string
	for _, c := range r.db.complaints {
		if c.HR != hrID || c.PerpetratorName == "" {
			continue
		}
		key := c.PerpetratorName
		if normalize {
			key = strings.ToLower(strings.TrimSpace(key))
		}
		if key == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &models.PerpetratorSummary{Name: key}
			groups[key] = g
			order = append(order, key)
		}
		g.Count++
		if c.IncidentDate.After(g.LatestIncident) {
			g.LatestIncident = c.IncidentDate
		}
	}

	out := make([]models.PerpetratorSummary, 0, len(groups))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
