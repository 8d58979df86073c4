package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/inficom-solutions/portfolio-backend/database"
	"github.com/inficom-solutions/portfolio-backend/media"
	"github.com/inficom-solutions/portfolio-backend/models"
	"github.com/inficom-solutions/portfolio-backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "correct horse"
	jwtSecret     = "test-secret-test-secret-test-secret"
)

type recordingMedia struct {
	mu    sync.Mutex
	calls []string
	n     int
}

func (m *recordingMedia) Upload(_ context.Context, upload media.Upload) (string, error) {
	if _, err := io.ReadAll(upload.Body); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	url := fmt.Sprintf("https://cdn.example.com/img-%d%s", m.n, media.AllowedTypes[upload.ContentType])
	m.calls = append(m.calls, "upload "+url)
	return url, nil
}

func (m *recordingMedia) Remove(_ context.Context, ref string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "remove "+ref)
}

func (m *recordingMedia) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *recordingMedia) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []services.Email
}

func (m *recordingMailer) Send(_ context.Context, email services.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

type testEnv struct {
	handler http.Handler
	media   *recordingMedia
	mailer  *recordingMailer
	token   string
}

func newTestEnv(t *testing.T, cfg map[string]string) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	auth, err := services.NewAuthenticator(adminEmail, string(hash), jwtSecret, time.Hour)
	require.NoError(t, err)

	env := &testEnv{media: &recordingMedia{}, mailer: &recordingMailer{}}
	if cfg == nil {
		cfg = map[string]string{}
	}
	env.handler = newRouter(App{
		Database:  database.New(db),
		Media:     env.media,
		Auth:      auth,
		Contact:   services.NewContactRelay(env.mailer, []string{"owner@example.com"}),
		UploadDir: cfg["UPLOAD_DIR"],
	}, withConfig(cfg))

	session, err := auth.Login(adminEmail, adminPassword)
	require.NoError(t, err)
	env.token = session.Token
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+e.token)
	return req
}

func jsonRequest(method, target string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type filePart struct {
	name        string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, file *filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, file.name))
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngFile() *filePart {
	return &filePart{name: "shot.png", contentType: "image/png", data: []byte("\x89PNG fake")}
}

func projectFields(name string) map[string]string {
	return map[string]string{
		"name":      name,
		"shortDesc": "Short description",
		"longDesc":  "Long description of the project",
		"link":      "https://example.com/" + name,
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e *testEnv) createProject(t *testing.T, name string) models.Project {
	t.Helper()
	rec := e.do(t, e.authed(multipartRequest(t, http.MethodPost, "/api/projects", projectFields(name), pngFile())))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Project](t, rec)
}

func TestHealthAndNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[HealthResponse](t, rec)
	assert.Equal(t, "OK", health.Status)
	assert.False(t, health.Timestamp.IsZero())

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Route not found"}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestListEmpty(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/api/projects", "/api/testimonials", "/api/services", "/api/features"} {
		rec := env.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `[]`, rec.Body.String(), path)
	}
}

func TestMutationsRequireToken(t *testing.T) {
	env := newTestEnv(t, nil)
	id := uuid.NewString()

	requests := []*http.Request{
		multipartRequest(t, http.MethodPost, "/api/projects", projectFields("p"), pngFile()),
		jsonRequest(http.MethodPut, "/api/projects/"+id, map[string]string{"name": "x"}),
		httptest.NewRequest(http.MethodDelete, "/api/projects/"+id, nil),
		httptest.NewRequest(http.MethodGet, "/api/auth/me", nil),
	}
	for _, req := range requests {
		rec := env.do(t, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, req.Method+" "+req.URL.Path)
	}

	bad := multipartRequest(t, http.MethodPost, "/api/projects", projectFields("p"), pngFile())
	bad.Header.Set("Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, env.do(t, bad).Code)

	assert.Empty(t, env.media.Calls())
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateRejectsUnsupportedImageType(t *testing.T) {
	env := newTestEnv(t, nil)

	file := &filePart{name: "doc.pdf", contentType: "application/pdf", data: []byte("%PDF")}
	rec := env.do(t, env.authed(multipartRequest(t, http.MethodPost, "/api/projects", projectFields("p"), file)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "image", body.Field)
	assert.Empty(t, env.media.Calls())
}

func TestCreateRejectsOversizedImage(t *testing.T) {
	env := newTestEnv(t, map[string]string{"UPLOAD_MAX_MB": "1"})

	file := &filePart{name: "big.png", contentType: "image/png", data: bytes.Repeat([]byte("a"), 1<<20+1)}
	rec := env.do(t, env.authed(multipartRequest(t, http.MethodPost, "/api/projects", projectFields("p"), file)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.media.Calls())
}

func TestLargeUploadLeavesNoTempFiles(t *testing.T) {
	env := newTestEnv(t, nil)
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	// Larger than the in-memory part of the multipart parser.
	file := &filePart{name: "big.png", contentType: "image/png", data: bytes.Repeat([]byte("a"), 9<<20)}
	rec := env.do(t, env.authed(multipartRequest(t, http.MethodPost, "/api/projects", projectFields("big"), file)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	fields := projectFields("p")
	delete(fields, "link")
	rec := env.do(t, env.authed(multipartRequest(t, http.MethodPost, "/api/projects", fields, pngFile())))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Message, "link")
	assert.Empty(t, env.media.Calls())

	rec = env.do(t, env.authed(jsonRequest(http.MethodPost, "/api/testimonials", map[string]any{
		"name": "Ada", "role": "CTO", "text": "Great", "stars": 9,
	})))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := env.authed(httptest.NewRequest(http.MethodPost, "/api/features", strings.NewReader("{not json")))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, env.do(t, req).Code)
}

func TestCreateAndListNewestFirst(t *testing.T) {
	env := newTestEnv(t, nil)

	first := env.createProject(t, "first")
	assert.Equal(t, "https://cdn.example.com/img-1.png", first.Image)
	_, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	second := env.createProject(t, "second")

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.Project](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/projects/"+first.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "first", decode[models.Project](t, rec).Name)
}

func TestGetErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/projects/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/projects/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "project not found", decode[ErrorResponse](t, rec).Message)
}

func TestUpdatePartial(t *testing.T) {
	env := newTestEnv(t, nil)
	created := env.createProject(t, "site")
	env.media.Reset()

	rec := env.do(t, env.authed(jsonRequest(http.MethodPut, "/api/projects/"+created.ID, map[string]string{
		"shortDesc": "Updated summary",
	})))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Project](t, rec)
	assert.Equal(t, "Updated summary", updated.ShortDesc)
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, created.Image, updated.Image)
	assert.Empty(t, env.media.Calls())

	rec = env.do(t, env.authed(jsonRequest(http.MethodPut, "/api/projects/"+created.ID, map[string]string{"name": ""})))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateReplacesImage(t *testing.T) {
	env := newTestEnv(t, nil)
	created := env.createProject(t, "site")
	env.media.Reset()

	file := &filePart{name: "new.webp", contentType: "image/webp", data: []byte("webp")}
	rec := env.do(t, env.authed(multipartRequest(t, http.MethodPut, "/api/projects/"+created.ID, nil, file)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Project](t, rec)
	assert.Equal(t, "https://cdn.example.com/img-2.webp", updated.Image)
	assert.Equal(t, []string{
		"remove " + created.Image,
		"upload https://cdn.example.com/img-2.webp",
	}, env.media.Calls())

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/projects/"+created.ID, nil))
	assert.Equal(t, updated.Image, decode[models.Project](t, rec).Image)
}

func TestUpdateMissingRecord(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, env.authed(multipartRequest(t, http.MethodPut, "/api/projects/"+uuid.NewString(), projectFields("x"), pngFile())))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, env.media.Calls())
}

func TestDeleteCascadesToImage(t *testing.T) {
	env := newTestEnv(t, nil)
	created := env.createProject(t, "site")
	env.media.Reset()

	rec := env.do(t, env.authed(httptest.NewRequest(http.MethodDelete, "/api/projects/"+created.ID, nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Project deleted successfully"}`, rec.Body.String())
	assert.Equal(t, []string{"remove " + created.Image}, env.media.Calls())

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/projects/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteMissingRecordSkipsMedia(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, env.authed(httptest.NewRequest(http.MethodDelete, "/api/projects/"+uuid.NewString(), nil)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, env.media.Calls())
}

func TestServiceLifecycleWithJSON(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, env.authed(jsonRequest(http.MethodPost, "/api/services", map[string]any{
		"title":       "Branding",
		"description": "Logos and identity",
		"features":    []string{"Logo", "Palette"},
		"faqs":        []map[string]string{{"q": "Revisions?", "a": "Three rounds"}},
	})))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Service](t, rec)
	assert.Equal(t, []string{"Logo", "Palette"}, []string(created.Features))
	require.Len(t, created.FAQs, 1)
	assert.Equal(t, "Three rounds", created.FAQs[0].A)
	assert.Empty(t, created.Image)

	rec = env.do(t, env.authed(jsonRequest(http.MethodPut, "/api/services/"+created.ID, map[string]any{
		"included": []string{"Source files"},
	})))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Service](t, rec)
	assert.Equal(t, []string{"Source files"}, []string(updated.Included))
	assert.Equal(t, []string{"Logo", "Palette"}, []string(updated.Features))
}

func TestTestimonialRemoveImage(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, env.authed(multipartRequest(t, http.MethodPost, "/api/testimonials", map[string]string{
		"name": "Ada", "role": "CTO", "text": "Great work", "size": "large",
	}, pngFile())))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Testimonial](t, rec)
	assert.Equal(t, 5.0, created.Stars)
	assert.Equal(t, models.SizeLarge, created.Size)
	env.media.Reset()

	form := strings.NewReader("removeImage=true")
	req := env.authed(httptest.NewRequest(http.MethodPut, "/api/testimonials/"+created.ID, form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[models.Testimonial](t, rec).Image)
	assert.Equal(t, []string{"remove " + created.Image}, env.media.Calls())
}

func TestAuthEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, jsonRequest(http.MethodPost, "/api/auth/login", LoginRequest{Email: adminEmail, Password: "wrong"}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/auth/login", LoginRequest{Email: adminEmail}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/auth/login", LoginRequest{Email: adminEmail, Password: adminPassword}))
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[services.Session](t, rec)
	assert.Equal(t, adminEmail, session.Admin.Email)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec = env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"admin@example.com"}`, rec.Body.String())
}

func TestContactEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, jsonRequest(http.MethodPost, "/api/contact", services.ContactRequest{
		Name: "Grace", Email: "grace@example.com", Service: "Web design", Message: "Please build us a site",
	}))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, "grace@example.com", env.mailer.sent[0].ReplyTo)

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/contact", services.ContactRequest{
		Name: "Grace", Email: "nope", Service: "Web design", Message: "Please build us a site",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email", decode[ErrorResponse](t, rec).Field)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, map[string]string{"ACCEPTED_ORIGINS": "https://site.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "https://site.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := env.do(t, req)
	assert.Equal(t, "https://site.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = env.do(t, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverWritesJSON(t *testing.T) {
	h := LogInternalServerErrors(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An unexpected error occurred", decode[ErrorResponse](t, rec).Message)
}

func TestStaticUploads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.png"), []byte("png-bytes"), 0o644))

	r := chi.NewRouter()
	setupStaticRoutes(r, dir)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/abc.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadsServedWithRemoteMediaHost(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "legacy.jpg"), []byte("jpeg-bytes"), 0o644))
	env := newTestEnv(t, map[string]string{"UPLOAD_DIR": dir})

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/uploads/legacy.jpg", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
	assert.Empty(t, env.media.Calls())
}

func TestTestimonialHalfStars(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, env.authed(jsonRequest(http.MethodPost, "/api/testimonials", map[string]any{
		"name": "Ada", "role": "CTO", "text": "Great", "stars": 4.5,
	})))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 4.5, decode[models.Testimonial](t, rec).Stars)
}
