package models_test

import (
	"complaint-portal/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from models.Status
		to   models.Status
		want bool
	}{
		{"pending to under review", models.StatusPending, models.StatusUnderReview, true},
		{"pending to resolved", models.StatusPending, models.StatusResolved, true},
		{"under review to flagged", models.StatusUnderReview, models.StatusFlagged, true},
		{"flagged back to under review", models.StatusFlagged, models.StatusUnderReview, true},
		{"reported to ngo to resolved", models.StatusReportedToNGO, models.StatusResolved, true},
		{"reported to ngo back to pending", models.StatusReportedToNGO, models.StatusPending, false},
		{"resolved back to pending", models.StatusResolved, models.StatusPending, false},
		{"under review back to pending", models.StatusUnderReview, models.StatusPending, false},
		{"same status", models.StatusPending, models.StatusPending, false},
		{"unknown target", models.StatusPending, models.Status("archived"), false},
		{"unknown source", models.Status("archived"), models.StatusResolved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_KnownAndTerminal(t *testing.T) {
	assert.True(t, models.StatusFlagged.Known())
	assert.False(t, models.Status("closed").Known())

	assert.True(t, models.StatusResolved.Terminal())
	assert.False(t, models.StatusPending.Terminal())
	assert.False(t, models.Status("closed").Terminal(), "unknown statuses are not terminal")
}
