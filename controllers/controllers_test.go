package controllers_test

import (
	"bytes"
	"complaint-portal/controllers"
	"complaint-portal/database/memstore"
	"complaint-portal/routes"
	"complaint-portal/services"
	"complaint-portal/storage"
	"complaint-portal/utils"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type session struct {
	ID    string `json:"_id"`
	Token string `json:"token"`
	Role  string `json:"role"`
}

type apiComplaint struct {
	ID        string   `json:"_id"`
	Title     string   `json:"title"`
	Status    string   `json:"status"`
	IsFlagged bool     `json:"isFlagged"`
	Images    []string `json:"images"`
	HR        string   `json:"hr"`
}

type server struct {
	t      *testing.T
	router *gin.Engine
}

func newServer(t *testing.T) *server {
	t.Helper()
	store := memstore.New()
	files := storage.NewResolver(storage.NewLocalBackend(t.TempDir()), zap.NewNop())
	require.NoError(t, files.Init(context.Background()))

	ctl := &controllers.Controller{
		Auth: services.NewAuthService(store, utils.NewTokenIssuer("test-secret", time.Hour), zap.NewNop()),
		HRs:  services.NewHRService(store),
		Complaints: services.NewComplaintService(store, files, nil, services.ComplaintOptions{
			StrictTransitions: true,
			AdminCanViewAll:   true,
		}, zap.NewNop()),
		Reports: services.NewReportService(store, zap.NewNop()),
		Logger:  zap.NewNop(),
	}
	router, err := routes.NewRouter(ctl, routes.Options{
		CORSOrigins: []string{"http://localhost:3000"},
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	return &server{t: t, router: router}
}

func (s *server) do(method, target, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	s.t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) json(method, target, token string, payload any) *httptest.ResponseRecorder {
	s.t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(s.t, err)
	return s.do(method, target, token, bytes.NewBuffer(b), "application/json")
}

func (s *server) register(name, email, role string) session {
	s.t.Helper()
	w := s.json(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":         name,
		"email":        email,
		"password":     "secret123",
		"role":         role,
		"organization": "Acme",
		"position":     "Officer",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var out session
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type part struct {
	field, filename, contentType string
	data                         []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...part) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func complaintFields(hrID string) map[string]string {
	return map[string]string{
		"title":              "TTTTT",
		"description":        "Twenty five characters ok",
		"perpetratorName":    "Pat",
		"perpetratorDetails": "Team lead",
		"incidentDate":       "2024-01-15",
		"incidentLocation":   "Office",
		"hrId":               hrID,
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)
	user := s.register("Uma User", "uma@example.com", "user")
	assert.Equal(t, "user", user.Role)
	assert.NotEmpty(t, user.Token)

	t.Run("duplicate email", func(t *testing.T) {
		w := s.json(http.MethodPost, "/api/auth/register", "", map[string]any{
			"name": "Uma Again", "email": "UMA@example.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"message":"User already exists"}`, w.Body.String())
	})

	t.Run("login sets cookie", func(t *testing.T) {
		w := s.json(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "uma@example.com", "password": "secret123"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Set-Cookie"), "token=")
	})

	t.Run("wrong password", func(t *testing.T) {
		w := s.json(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "uma@example.com", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("profile requires a token", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/auth/profile", "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"message":"Not authorized, no token"}`, w.Body.String())
	})

	t.Run("profile update", func(t *testing.T) {
		w := s.json(http.MethodPut, "/api/auth/profile", user.Token, map[string]string{"phone": "555-0199"})
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(http.MethodGet, "/api/auth/profile", user.Token, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		profile := decode[map[string]any](t, w)
		assert.Equal(t, "555-0199", profile["phone"])
		assert.NotContains(t, profile, "password")
	})

	t.Run("change password", func(t *testing.T) {
		w := s.json(http.MethodPut, "/api/auth/password", user.Token, map[string]string{"oldPassword": "wrong", "newPassword": "newsecret"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.json(http.MethodPut, "/api/auth/password", user.Token, map[string]string{"oldPassword": "secret123", "newPassword": "newsecret"})
		require.Equal(t, http.StatusOK, w.Code)

		w = s.json(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "uma@example.com", "password": "newsecret"})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCreateComplaint(t *testing.T) {
	s := newServer(t)
	user := s.register("Uma User", "uma@example.com", "user")
	hr := s.register("Hana HR", "hana@example.com", "hr")

	image := []byte("\x89PNG fake image")
	body, ct := multipartBody(t, complaintFields(hr.ID), part{"images", "bruise.png", "image/png", image})
	w := s.do(http.MethodPost, "/api/complaints", user.Token, body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[apiComplaint](t, w)
	assert.Equal(t, "pending", created.Status)
	assert.False(t, created.IsFlagged)
	require.Len(t, created.Images, 1)
	assert.Equal(t, hr.ID, created.HR)

	t.Run("download recorded file", func(t *testing.T) {
		name := path.Base(created.Images[0])
		w := s.do(http.MethodGet, "/api/complaints/"+created.ID+"/download/image/"+name, user.Token, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, image, w.Body.Bytes())
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	})

	t.Run("download unrecorded file", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/complaints/"+created.ID+"/download/image/other.png", user.Token, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("download with bad bucket", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/complaints/"+created.ID+"/download/zip/x.zip", user.Token, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("lists", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/complaints/user", user.Token, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]apiComplaint](t, w), 1)

		w = s.do(http.MethodGet, "/api/complaints/hr", hr.Token, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]apiComplaint](t, w), 1)
	})

	t.Run("pdf", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/complaints/"+created.ID+"/pdf", hr.Token, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	})

	t.Run("unknown complaint", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/complaints/not-an-id", user.Token, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCreateComplaint_Rejections(t *testing.T) {
	s := newServer(t)
	user := s.register("Uma User", "uma@example.com", "user")
	hr := s.register("Hana HR", "hana@example.com", "hr")

	t.Run("not multipart", func(t *testing.T) {
		w := s.json(http.MethodPost, "/api/complaints", user.Token, complaintFields(hr.ID))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"message":"No files uploaded"}`, w.Body.String())
	})

	t.Run("disallowed file type", func(t *testing.T) {
		body, ct := multipartBody(t, complaintFields(hr.ID), part{"images", "run.exe", "application/x-msdownload", []byte("MZ")})
		w := s.do(http.MethodPost, "/api/complaints", user.Token, body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("short title", func(t *testing.T) {
		fields := complaintFields(hr.ID)
		fields["title"] = "T"
		body, ct := multipartBody(t, fields)
		w := s.do(http.MethodPost, "/api/complaints", user.Token, body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"message":"Title must be at least 5 characters"}`, w.Body.String())
	})

	t.Run("handlers cannot file", func(t *testing.T) {
		body, ct := multipartBody(t, complaintFields(hr.ID))
		w := s.do(http.MethodPost, "/api/complaints", hr.Token, body, ct)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("complainants cannot list hr queue", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/complaints/hr", user.Token, nil, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"message":"Not authorized as HR"}`, w.Body.String())
	})
}

func TestWorkflow(t *testing.T) {
	s := newServer(t)
	user := s.register("Uma User", "uma@example.com", "user")
	hr := s.register("Hana HR", "hana@example.com", "hr")
	otherHR := s.register("Hugo HR", "hugo@example.com", "hr")

	body, ct := multipartBody(t, complaintFields(hr.ID))
	w := s.do(http.MethodPost, "/api/complaints", user.Token, body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[apiComplaint](t, w).ID

	w = s.json(http.MethodPut, "/api/complaints/"+id+"/status", otherHR.Token, map[string]string{"status": "under_review"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.json(http.MethodPut, "/api/complaints/"+id+"/status", hr.Token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodPut, "/api/complaints/"+id+"/status", hr.Token, map[string]string{"status": "under_review"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "under_review", decode[apiComplaint](t, w).Status)

	w = s.json(http.MethodPut, "/api/complaints/"+id+"/report-to-ngo", hr.Token, map[string]string{"details": "Escalated"})
	require.Equal(t, http.StatusOK, w.Code)
	reported := decode[map[string]any](t, w)
	assert.Equal(t, true, reported["reportedToNGO"])
	assert.Equal(t, "Escalated", reported["ngoReportDetails"])

	w = s.do(http.MethodGet, "/api/complaints/perpetrators", hr.Token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode[[]map[string]any](t, w)
	require.Len(t, rows, 1)

	w = s.do(http.MethodGet, "/api/complaints/perpetrators/export", hr.Token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
}

func TestDrafts(t *testing.T) {
	s := newServer(t)
	user := s.register("Uma User", "uma@example.com", "user")
	other := s.register("Otto User", "otto@example.com", "user")
	hr := s.register("Hana HR", "hana@example.com", "hr")

	body, ct := multipartBody(t, map[string]string{"title": "Unfinished report"})
	w := s.do(http.MethodPost, "/api/drafts", user.Token, body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	draftID := decode[map[string]any](t, w)["_id"].(string)

	body, ct = multipartBody(t, map[string]string{"draftId": draftID, "title": "Finished report", "description": "Now with a description"},
		part{"pdf", "statement.pdf", "application/pdf", []byte("%PDF-1.4")})
	w = s.do(http.MethodPost, "/api/drafts", user.Token, body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	updated := decode[map[string]any](t, w)
	assert.Equal(t, draftID, updated["_id"])
	assert.Equal(t, "Finished report", updated["title"])

	w = s.do(http.MethodGet, "/api/drafts/"+draftID, other.Token, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/drafts", user.Token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = s.json(http.MethodPost, "/api/drafts/"+draftID+"/submit", user.Token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodPost, "/api/drafts/"+draftID+"/submit", user.Token, map[string]string{"hrId": hr.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	complaint := decode[apiComplaint](t, w)
	assert.Equal(t, "Finished report", complaint.Title)
	assert.Equal(t, "pending", complaint.Status)

	w = s.do(http.MethodGet, "/api/drafts/"+draftID, user.Token, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	t.Run("delete", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"title": "Throwaway"})
		w := s.do(http.MethodPost, "/api/drafts", user.Token, body, ct)
		require.Equal(t, http.StatusCreated, w.Code)
		id := decode[map[string]any](t, w)["_id"].(string)

		w = s.do(http.MethodDelete, "/api/drafts/"+id, user.Token, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Draft removed"}`, w.Body.String())
	})
}

func TestHRDirectory(t *testing.T) {
	s := newServer(t)
	hr := s.register("Hana HR", "hana@example.com", "hr")
	other := s.register("Hugo HR", "hugo@example.com", "hr")

	w := s.do(http.MethodGet, "/api/hr", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 2)
	profileID := ""
	for _, entry := range list {
		if entry["user"].(map[string]any)["_id"] == hr.ID {
			profileID = entry["_id"].(string)
		}
	}
	require.NotEmpty(t, profileID)

	w = s.do(http.MethodGet, "/api/hr/"+profileID, "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = s.json(http.MethodPut, "/api/hr/"+profileID, other.Token, map[string]string{"position": "Director"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.json(http.MethodPut, "/api/hr/"+profileID, hr.Token, map[string]string{"position": "Director"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Director", decode[map[string]any](t, w)["position"])
}

func TestReports(t *testing.T) {
	s := newServer(t)
	user := s.register("Uma User", "uma@example.com", "user")

	w := s.json(http.MethodPost, "/api/harassment", user.Token, map[string]any{
		"totalIncidents":   2,
		"riskLevel":        "high",
		"incidentTimeline": []string{"00:12", "01:40"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.Equal(t, "Harassment data saved successfully", created["message"])
	report := created["report"].(map[string]any)
	assert.Equal(t, "Unknown Video", report["videoName"])

	w = s.do(http.MethodGet, "/api/reports", user.Token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = s.do(http.MethodGet, "/api/reports/"+report["_id"].(string), user.Token, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.json(http.MethodPost, "/api/harassment", user.Token, map[string]any{"riskLevel": "low"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportsRequireSession(t *testing.T) {
	s := newServer(t)
	payload := map[string]any{"totalIncidents": 1, "riskLevel": "low"}

	w := s.json(http.MethodPost, "/api/harassment", "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "analyser clients must send a bearer token")

	w = s.json(http.MethodPost, "/api/harassment", "not-a-jwt", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/reports", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodGet, "/healthz", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "ok"))
}
