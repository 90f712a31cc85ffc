package services_test

import (
	"complaint-portal/services"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHRDirectory(t *testing.T) {
	f := newFixture(t, defaultOptions())
	hrs := services.NewHRService(f.store)
	ctx := context.Background()

	list, err := hrs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, l := range list {
		require.NotNil(t, l.User)
		assert.NotEmpty(t, l.User.Email)
		assert.Empty(t, l.User.Phone)
	}

	profile, err := f.store.HRs.FindByUser(ctx, f.hr.ID)
	require.NoError(t, err)
	got, err := hrs.Get(ctx, profile.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Hana HR", got.User.Name)

	_, err = hrs.Get(ctx, "bogus")
	requireKind(t, err, services.KindNotFound)
}

func TestHRUpdate(t *testing.T) {
	f := newFixture(t, defaultOptions())
	hrs := services.NewHRService(f.store)
	ctx := context.Background()
	profile, err := f.store.HRs.FindByUser(ctx, f.hr.ID)
	require.NoError(t, err)

	org := "Helping Hands"
	yes := true
	empty := ""

	_, err = hrs.Update(ctx, f.otherHR, profile.ID.Hex(), services.HRUpdateInput{Organization: &org})
	requireKind(t, err, services.KindForbidden)

	updated, err := hrs.Update(ctx, f.hr, profile.ID.Hex(), services.HRUpdateInput{Organization: &org, IsNGO: &yes, Position: &empty})
	require.NoError(t, err)
	assert.Equal(t, "Helping Hands", updated.Organization)
	assert.True(t, updated.IsNGO)
	assert.Equal(t, "Officer", updated.Position)

	_, err = hrs.Update(ctx, f.admin, profile.ID.Hex(), services.HRUpdateInput{IsNGO: new(bool)})
	require.NoError(t, err)
}

func TestReports(t *testing.T) {
	f := newFixture(t, defaultOptions())
	reports := services.NewReportService(f.store, zap.NewNop())
	ctx := context.Background()

	_, err := reports.Create(ctx, services.ReportInput{RiskLevel: "High"})
	requireKind(t, err, services.KindValidation)

	n := -1
	_, err = reports.Create(ctx, services.ReportInput{TotalIncidents: &n, RiskLevel: "High"})
	requireKind(t, err, services.KindValidation)

	three := 3
	_, err = reports.Create(ctx, services.ReportInput{TotalIncidents: &three})
	requireKind(t, err, services.KindValidation)

	rep, err := reports.Create(ctx, services.ReportInput{TotalIncidents: &three, RiskLevel: "High", IncidentTimeline: []string{"00:12"}})
	require.NoError(t, err)
	assert.Equal(t, "Unknown Video", rep.VideoName)

	list, err := reports.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got, err := reports.Get(ctx, rep.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalIncidents)

	_, err = reports.Get(ctx, "65f1c0ffee0000000000abcd")
	requireKind(t, err, services.KindNotFound)
}
