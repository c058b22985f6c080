package router

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/homehub-dev/homehub/internal/auth"
	"github.com/homehub-dev/homehub/internal/config"
	"github.com/homehub-dev/homehub/internal/handlers"
	"github.com/homehub-dev/homehub/internal/services"
	"github.com/homehub-dev/homehub/internal/store"
	"github.com/homehub-dev/homehub/internal/store/storetest"
	"github.com/homehub-dev/homehub/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testOrigins = []string{"http://localhost:3000"}

type testServer struct {
	engine *gin.Engine
	conn   *gorm.DB
	events *services.Broadcaster
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	conn := storetest.Open(t)
	st := store.New(conn, time.Second)

	svc := auth.NewService(st, auth.NewTokenIssuer(testSecret, 30*time.Minute), auth.NewPasswordHasher(bcrypt.MinCost), logger)
	events := services.NewBroadcaster(logger)

	h := handlers.New(handlers.Options{
		Auth:     svc,
		Store:    st,
		Events:   events,
		Notifier: services.NewNotifier(config.NotifyConfig{Timeout: time.Second}),
		Origins:  testOrigins,
		Logger:   logger,
	})

	return &testServer{
		engine: NewRouter(h, svc, testOrigins, logger),
		conn:   conn,
		events: events,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) signup(t *testing.T, username string) string {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username":  username,
		"password":  "p1",
		"full_name": strings.ToUpper(username),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return decode[types.TokenResponse](t, w).AccessToken
}

func (s *testServer) closeDatabase(t *testing.T) {
	t.Helper()
	sqlDB, err := s.conn.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestAuthFlow_Alice(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"username": "alice", "password": "p1", "full_name": "Alice A"})
	require.Equal(t, http.StatusOK, w.Code)
	tokenA := decode[types.TokenResponse](t, w)
	assert.Equal(t, "bearer", tokenA.TokenType)
	assert.Len(t, strings.Split(tokenA.AccessToken, "."), 3)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "p1"})
	require.Equal(t, http.StatusOK, w.Code)
	tokenB := decode[types.TokenResponse](t, w)
	assert.NotEqual(t, tokenA.AccessToken, tokenB.AccessToken)

	w = s.do(t, http.MethodGet, "/api/auth/me", tokenA.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	meA := decode[types.UserResponse](t, w)

	w = s.do(t, http.MethodGet, "/api/auth/me", tokenB.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	meB := decode[types.UserResponse](t, w)

	assert.NotEmpty(t, meA.ID)
	assert.Equal(t, meA, meB)
	assert.Equal(t, "alice", meA.Username)
	assert.Equal(t, "Alice A", meA.FullName)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestSignup_Rejects(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "alice")

	w := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"username": "alice", "password": "p2", "full_name": "Again"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, types.ErrorResponse{Error: "Username already registered", Code: types.CodeDuplicateUsername}, decode[types.ErrorResponse](t, w))

	w = s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request", decode[types.ErrorResponse](t, w).Error)

	w = s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"username": "bob", "password": strings.Repeat("x", 73)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBlankNamesAreRejected(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"username": "   ", "password": "p1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, types.ErrorResponse{Error: "Invalid request", Code: types.CodeInvalidRequest}, decode[types.ErrorResponse](t, w))

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": " ", "password": "p1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := s.signup(t, "alice")

	w = s.do(t, http.MethodPost, "/api/hubs", token, gin.H{"name": "\t  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/hubs", token, gin.H{"name": "  Porch  "})
	require.Equal(t, http.StatusCreated, w.Code)
	hub := decode[types.HubResponse](t, w)
	assert.Equal(t, "Porch", hub.Name)

	w = s.do(t, http.MethodPatch, "/api/hubs/"+hub.ID, token, gin.H{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/hubs/"+hub.ID+"/devices", token, gin.H{"name": " ", "device_type": "sensor"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/cameras", token, gin.H{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/family-members", token, gin.H{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/hubs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.HubResponse](t, w), 1)
}

func TestLogin_FailuresLookTheSame(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "alice")

	wrongPassword := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "nope"})
	unknownUser := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "mallory", "password": "p1"})

	for _, w := range []*httptest.ResponseRecorder{wrongPassword, unknownUser} {
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		assert.Equal(t, types.ErrorResponse{Error: "Incorrect username or password", Code: types.CodeInvalidCredentials}, decode[types.ErrorResponse](t, w))
	}
}

func TestMe_Unauthorized(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid authentication credentials", decode[types.ErrorResponse](t, w).Error)

	foreign, err := auth.NewTokenIssuer("another-secret-another-secret-xx", 0).Issue("someone")
	require.NoError(t, err)

	w = s.do(t, http.MethodGet, "/api/auth/me", foreign, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, types.CodeInvalidToken, decode[types.ErrorResponse](t, w).Code)

	orphan, err := auth.NewTokenIssuer(testSecret, 0).Issue("00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)

	w = s.do(t, http.MethodGet, "/api/auth/me", orphan, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User not found", decode[types.ErrorResponse](t, w).Error)
}

func TestHealthAndUnavailableStore(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "up", decode[map[string]string](t, w)["database"])

	s.closeDatabase(t)

	w = s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"username": "alice", "password": "p1", "full_name": "Alice A"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, types.CodeStoreUnavailable, decode[types.ErrorResponse](t, w).Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "p1"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHubsAndDevices(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "alice")
	intruder := s.signup(t, "mallory")

	w := s.do(t, http.MethodPost, "/api/hubs", token, gin.H{"name": "Living room"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	hub := decode[types.HubResponse](t, w)
	assert.False(t, hub.Online)

	w = s.do(t, http.MethodGet, "/api/hubs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.HubResponse](t, w), 1)

	w = s.do(t, http.MethodGet, "/api/hubs", intruder, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/hubs/"+hub.ID, intruder, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/hubs/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, "/api/hubs/"+hub.ID, token, gin.H{"name": "Hallway"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hallway", decode[types.HubResponse](t, w).Name)

	w = s.do(t, http.MethodPost, "/api/hubs/"+hub.ID+"/telemetry", token, gin.H{"temperature": 21.5, "humidity": 40, "alarm_state": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reported := decode[types.HubResponse](t, w)
	assert.True(t, reported.Online)
	require.NotNil(t, reported.Temperature)
	assert.InDelta(t, 21.5, *reported.Temperature, 0.001)

	w = s.do(t, http.MethodPost, "/api/hubs/"+hub.ID+"/telemetry", token, gin.H{"humidity": 140})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/hubs/"+hub.ID+"/devices", token, gin.H{"name": "Thermostat", "device_type": "climate"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	device := decode[types.DeviceResponse](t, w)
	assert.Equal(t, "Unknown", device.Status)
	assert.Equal(t, hub.ID, device.HubID)

	w = s.do(t, http.MethodPost, "/api/hubs/"+hub.ID+"/devices", intruder, gin.H{"name": "Bug", "device_type": "spy"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPatch, "/api/hubs/"+hub.ID+"/devices/"+device.ID, token, gin.H{"status": "heating"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "heating", decode[types.DeviceResponse](t, w).Status)

	w = s.do(t, http.MethodGet, "/api/hubs/"+hub.ID+"/devices", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.DeviceResponse](t, w), 1)

	w = s.do(t, http.MethodDelete, "/api/hubs/"+hub.ID+"/devices/"+device.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodDelete, "/api/hubs/"+hub.ID+"/devices/"+device.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/hubs/"+hub.ID, intruder, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/hubs/"+hub.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/hubs/"+hub.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, types.ErrorResponse{Error: "Hub not found", Code: types.CodeNotFound}, decode[types.ErrorResponse](t, w))
}

func TestCamerasAndFamilyMembers(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "alice")
	intruder := s.signup(t, "mallory")

	w := s.do(t, http.MethodPost, "/api/hubs", token, gin.H{"name": "Porch hub"})
	require.Equal(t, http.StatusCreated, w.Code)
	hub := decode[types.HubResponse](t, w)

	w = s.do(t, http.MethodPost, "/api/cameras", intruder, gin.H{"name": "Sneaky", "hub_id": hub.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/cameras", token, gin.H{"name": "Porch", "hub_id": hub.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	camera := decode[types.CameraResponse](t, w)
	assert.True(t, camera.IsOnline)
	require.NotNil(t, camera.HubID)
	assert.Equal(t, hub.ID, *camera.HubID)

	w = s.do(t, http.MethodPost, "/api/cameras/"+camera.ID+"/motion", token, gin.H{"image_url": "https://img.example.com/1.jpg"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	moved := decode[types.CameraResponse](t, w)
	require.NotNil(t, moved.LastMotion)
	require.NotNil(t, moved.LastImageURL)

	encoding := base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0xff})

	w = s.do(t, http.MethodPost, "/api/family-members", token, gin.H{"name": "Alice", "image_url": "https://img.example.com/a.jpg", "face_encoding": encoding})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	member := decode[types.FamilyMemberResponse](t, w)
	assert.Equal(t, encoding, member.FaceEncoding)

	w = s.do(t, http.MethodPost, "/api/family-members", token, gin.H{"name": "Bad", "face_encoding": "%%%"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/cameras/"+camera.ID+"/family-members/"+member.ID, intruder, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPut, "/api/cameras/"+camera.ID+"/family-members/"+member.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodPut, "/api/cameras/"+camera.ID+"/family-members/"+member.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/cameras/"+camera.ID+"/family-members", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	linked := decode[[]types.FamilyMemberResponse](t, w)
	require.Len(t, linked, 1)
	assert.Equal(t, member.ID, linked[0].ID)

	w = s.do(t, http.MethodDelete, "/api/cameras/"+camera.ID+"/family-members/"+member.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/family-members", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.FamilyMemberResponse](t, w), 1)

	w = s.do(t, http.MethodDelete, "/api/family-members/"+member.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodDelete, "/api/hubs/"+hub.ID, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/cameras", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cameras := decode[[]types.CameraResponse](t, w)
	require.Len(t, cameras, 1)
	assert.Nil(t, cameras[0].HubID, "deleting the hub detaches its cameras")

	w = s.do(t, http.MethodDelete, "/api/cameras/"+camera.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCameraRequestEdges(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "alice")

	for _, hubID := range []string{"", "not-a-uuid"} {
		w := s.do(t, http.MethodPost, "/api/cameras", token, gin.H{"name": "Porch", "hub_id": hubID})
		assert.Equal(t, http.StatusBadRequest, w.Code, "hub_id %q", hubID)
	}

	w := s.do(t, http.MethodPost, "/api/cameras", token, gin.H{"name": "Porch"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	camera := decode[types.CameraResponse](t, w)

	// A chunked request with an empty body carries no content length.
	req := httptest.NewRequest(http.MethodPost, "/api/cameras/"+camera.ID+"/motion", strings.NewReader(""))
	req.ContentLength = -1
	req.Header.Set("Authorization", "Bearer "+token)

	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, decode[types.CameraResponse](t, w).LastMotion)

	w = s.do(t, http.MethodPost, "/api/cameras/"+camera.ID+"/motion", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/cameras/"+camera.ID+"/motion", token, gin.H{"image_url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebSocket_StreamsHubEvents(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "alice")

	srv := httptest.NewServer(s.engine)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Authorization": {"Bearer " + token}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var welcome map[string]string
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "connected", welcome["type"])

	w := s.do(t, http.MethodPost, "/api/hubs", token, gin.H{"name": "Hall"})
	require.Equal(t, http.StatusCreated, w.Code)
	hub := decode[types.HubResponse](t, w)

	w = s.do(t, http.MethodPost, "/api/hubs/"+hub.ID+"/telemetry", token, gin.H{"alarm_state": true})
	require.Equal(t, http.StatusOK, w.Code)

	var event services.HubEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, services.EventTypeHub, event.Type)
	assert.Equal(t, hub.ID, event.Hub.ID)
	assert.True(t, event.Hub.Online)
	assert.True(t, event.Hub.AlarmState)
}
