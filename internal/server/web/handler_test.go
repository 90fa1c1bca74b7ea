package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/image-cloud/api/internal/logging"
	"github.com/image-cloud/api/internal/server/auth"
	"github.com/image-cloud/api/internal/server/config"
	"github.com/image-cloud/api/internal/server/images"
	"github.com/image-cloud/api/internal/server/shared/db"
	"github.com/image-cloud/api/internal/server/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	users  *users.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DefaultQuota = 1000
	cfg.PublicBaseURL = "http://img.test"

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	manager := db.NewInMemoryRepositoryManager()

	pipeline := auth.NewPipeline(manager.Users(), manager.Sessions())
	userService := users.NewService(manager.Users(), manager.Sessions(), cfg, logger)
	imageService := images.NewService(manager.Images(), nil, logger)

	handler := NewHandler(cfg, logger, pipeline, userService, imageService)

	return &testServer{router: NewRouter(handler), users: userService}
}

func (ts *testServer) do(t *testing.T, method, path, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) upload(t *testing.T, token, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="` + filename + `"`},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/images/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (ts *testServer) signupAndLogin(t *testing.T, username, email, password string) string {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/auth/signup", "", url.Values{
		"username": {username}, "email": {email}, "password": {password},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, false, decode(t, w)["error"])

	w = ts.do(t, http.MethodPost, "/auth/login", "", url.Values{
		"username": {username}, "password": {password},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, false, body["error"])

	return body["token"].(string)
}

func TestGetHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestSignup_MissingFields(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/auth/signup", "", url.Values{"username": {"alice"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing username, email or password.", decode(t, w)["message"])
}

func TestSignup_DuplicateUsernameReportsInBody(t *testing.T) {
	ts := newTestServer(t)
	ts.signupAndLogin(t, "alice", "alice@example.com", "secret")

	w := ts.do(t, http.MethodPost, "/auth/signup", "", url.Values{
		"username": {"Alice"}, "email": {"other@example.com"}, "password": {"secret"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "Username taken.", body["message"])
}

func TestLogin_UnknownUser(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/auth/login", "", url.Values{
		"username": {"ghost"}, "password": {"whatever"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "User not found.", body["message"])
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.signupAndLogin(t, "alice", "alice@example.com", "secret")

	w := ts.do(t, http.MethodPost, "/auth/login", "", url.Values{
		"username": {"alice"}, "password": {"wrong"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "Invalid Username/Password.", body["message"])
}

func TestAuthenticate_NoToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodDelete, "/auth/logout", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided.", decode(t, w)["message"])
}

func TestAuthenticate_UnknownToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodDelete, "/auth/logout", "deadbeefdeadbeefdeadbeefdeadbeef", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Invalid token.", decode(t, w)["message"])
}

func TestLogout_TokenStopsWorking(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signupAndLogin(t, "alice", "alice@example.com", "secret")

	w := ts.do(t, http.MethodDelete, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodDelete, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetAccounts_NonAdmin(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signupAndLogin(t, "alice", "alice@example.com", "secret")

	w := ts.do(t, http.MethodGet, "/auth/accounts", token, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You are not an admin.", decode(t, w)["message"])
}

func TestGetAccounts_Admin(t *testing.T) {
	ts := newTestServer(t)

	admin, password, err := ts.users.Bootstrap(context.Background())
	require.NoError(t, err)
	require.NotNil(t, admin)

	token, _, err := ts.users.Login(context.Background(), admin.Username, password)
	require.NoError(t, err)

	ts.signupAndLogin(t, "alice", "alice@example.com", "secret")

	w := ts.do(t, http.MethodGet, "/auth/accounts", token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["error"])
	assert.Len(t, body["users"], 2)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestUpdateAccount_InvalidQuota(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signupAndLogin(t, "alice", "alice@example.com", "secret")

	w := ts.do(t, http.MethodPatch, "/auth/account", token, url.Values{"quota": {"lots"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid quota.", decode(t, w)["message"])
}

func TestUpdateAccount_DuplicateUsername(t *testing.T) {
	ts := newTestServer(t)
	ts.signupAndLogin(t, "bob", "bob@example.com", "secret")
	token := ts.signupAndLogin(t, "alice", "alice@example.com", "secret")

	w := ts.do(t, http.MethodPatch, "/auth/account", token, url.Values{"username": {"Bob"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username taken.", decode(t, w)["message"])
}

func TestAdminDeleteAccount(t *testing.T) {
	ts := newTestServer(t)

	admin, password, err := ts.users.Bootstrap(context.Background())
	require.NoError(t, err)

	token, _, err := ts.users.Login(context.Background(), admin.Username, password)
	require.NoError(t, err)

	ts.signupAndLogin(t, "alice", "alice@example.com", "secret")

	w := ts.do(t, http.MethodDelete, "/admin/auth/account", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No username or email provided.", decode(t, w)["message"])

	w = ts.do(t, http.MethodDelete, "/admin/auth/account", token, url.Values{"username": {"ghost"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodDelete, "/admin/auth/account", token, url.Values{"username": {"alice"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Account deleted.", decode(t, w)["message"])
}

func TestUploadImage_Success(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signupAndLogin(t, "alice", "alice@example.com", "secret")

	w := ts.upload(t, token, "cat.png", "image/png", []byte("pngbytes"))

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["error"])
	assert.Equal(t, "Image uploaded.", body["message"])

	id := body["image"].(map[string]any)["id"].(string)
	assert.Equal(t, "http://img.test/images/"+id+"/raw", body["url"])
	assert.Equal(t, "http://img.test/images/"+id, body["deletion_url"])
}

func TestUploadImage_BadExtension(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signupAndLogin(t, "alice", "alice@example.com", "secret")

	w := ts.upload(t, token, "notes.txt", "image/png", []byte("data"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid file extension.", decode(t, w)["message"])
}

func TestUploadImage_BadContentType(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signupAndLogin(t, "alice", "alice@example.com", "secret")

	w := ts.upload(t, token, "cat.png", "text/plain", []byte("data"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid file type.", decode(t, w)["message"])
}

func TestUploadImage_QuotaExceeded(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signupAndLogin(t, "alice", "alice@example.com", "secret")

	// default quota in the test config is 1000 bytes
	w := ts.upload(t, token, "big.png", "image/png", bytes.Repeat([]byte("x"), 1001))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "File too large.", decode(t, w)["message"])
}

func TestUploadImage_NoToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.upload(t, "", "cat.png", "image/png", []byte("data"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetImageRaw(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signupAndLogin(t, "alice", "alice@example.com", "secret")

	w := ts.upload(t, token, "cat.jpeg", "image/jpeg", []byte("jpegbytes"))
	require.Equal(t, http.StatusOK, w.Code)
	id := decode(t, w)["image"].(map[string]any)["id"].(string)

	w = ts.do(t, http.MethodGet, "/images/"+id+"/raw", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "jpegbytes", w.Body.String())
}

func TestGetImagePage(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signupAndLogin(t, "alice", "alice@example.com", "secret")

	w := ts.upload(t, token, "cat.png", "image/png", []byte("pngbytes"))
	require.Equal(t, http.StatusOK, w.Code)
	id := decode(t, w)["image"].(map[string]any)["id"].(string)

	w = ts.do(t, http.MethodGet, "/images/"+id, "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "http://img.test/images/"+id+"/raw")
	assert.Contains(t, w.Body.String(), "cat.png")
}

func TestGetImage_NotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/images/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Image not found.", decode(t, w)["message"])

	w = ts.do(t, http.MethodGet, "/images/missing/raw", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteImage_OwnerAndStranger(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.signupAndLogin(t, "alice", "alice@example.com", "secret")
	stranger := ts.signupAndLogin(t, "bob", "bob@example.com", "secret")

	w := ts.upload(t, owner, "cat.png", "image/png", []byte("pngbytes"))
	require.Equal(t, http.StatusOK, w.Code)
	id := decode(t, w)["image"].(map[string]any)["id"].(string)

	w = ts.do(t, http.MethodDelete, "/images/"+id, stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You cannot delete this image.", decode(t, w)["message"])

	w = ts.do(t, http.MethodDelete, "/images/"+id, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Image deleted.", decode(t, w)["message"])

	w = ts.do(t, http.MethodGet, "/images/"+id+"/raw", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetShareXConfig(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signupAndLogin(t, "alice", "alice@example.com", "secret")

	w := ts.do(t, http.MethodGet, "/sharex", token, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var cfg map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Equal(t, "http://img.test/images/upload", cfg["RequestURL"])
	assert.Equal(t, "file", cfg["FileFormName"])
	assert.Equal(t, token, cfg["Headers"].(map[string]any)["Authorization"])
}

func TestNoRoute(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found.", decode(t, w)["message"])
}
