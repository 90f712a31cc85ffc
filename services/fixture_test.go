package services_test

import (
	"complaint-portal/database/memstore"
	"complaint-portal/models"
	"complaint-portal/services"
	"complaint-portal/storage"
	"complaint-portal/utils"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) ComplaintAssigned(ctx context.Context, handler *models.User, c *models.Complaint) error {
	args := m.Called(handler.Email, c.Title)
	return args.Error(0)
}

type fixture struct {
	store      *services.Store
	auth       *services.AuthService
	complaints *services.ComplaintService
	files      *storage.Resolver
	notifier   *mockNotifier
	root       string

	user, otherUser *models.User
	hr, otherHR     *models.User
	admin           *models.User
}

func defaultOptions() services.ComplaintOptions {
	return services.ComplaintOptions{StrictTransitions: true, AdminCanViewAll: true, UploadRoot: "uploads"}
}

func newFixture(t *testing.T, opts services.ComplaintOptions) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{store: memstore.New(), root: t.TempDir(), notifier: &mockNotifier{}}
	f.notifier.On("ComplaintAssigned", mock.Anything, mock.Anything).Return(nil).Maybe()

	f.files = storage.NewResolver(storage.NewLocalBackend(f.root), zap.NewNop())
	require.NoError(t, f.files.Init(ctx))

	f.auth = services.NewAuthService(f.store, utils.NewTokenIssuer("test-secret", time.Hour), zap.NewNop())
	f.complaints = services.NewComplaintService(f.store, f.files, f.notifier, opts, zap.NewNop())

	f.user = f.register(t, "Uma User", "user@example.com", "user")
	f.otherUser = f.register(t, "Otto User", "other@example.com", "user")
	f.hr = f.register(t, "Hana HR", "hr@example.com", "hr")
	f.otherHR = f.register(t, "Hugo HR", "hr2@example.com", "hr")
	f.admin = f.register(t, "Ada Admin", "admin@example.com", "admin")
	return f
}

func (f *fixture) register(t *testing.T, name, email, role string) *models.User {
	t.Helper()
	ctx := context.Background()
	_, err := f.auth.Register(ctx, services.RegisterInput{
		Name:         name,
		Email:        email,
		Password:     "secret123",
		Phone:        "555-0100",
		Role:         role,
		Organization: "Acme",
		Position:     "Officer",
		Department:   "People",
	})
	require.NoError(t, err)
	u, err := f.store.Users.FindByEmail(ctx, email)
	require.NoError(t, err)
	return u
}

func upload(field, name, contentType, body string) storage.Upload {
	return storage.Upload{
		Field:       field,
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func validInput(hrID string) services.ComplaintInput {
	return services.ComplaintInput{
		ContentInput: services.ContentInput{
			Title:              "TTTTT",
			Description:        "Twenty five characters..",
			PerpetratorName:    "Alex",
			PerpetratorDetails: "Team lead",
			IncidentDate:       "2024-01-15",
			IncidentLocation:   "Office",
		},
		HRID: hrID,
	}
}

func (f *fixture) file(t *testing.T, owner *models.User, in services.ComplaintInput, uploads ...storage.Upload) *models.Complaint {
	t.Helper()
	c, err := f.complaints.CreateComplaint(context.Background(), owner, in, uploads)
	require.NoError(t, err)
	return c
}

func requireKind(t *testing.T, err error, kind services.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, services.KindOf(err), "error: %v", err)
}
