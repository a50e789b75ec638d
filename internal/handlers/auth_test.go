package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Mykyta-Harashchenko/contacthub/internal/config"
	"github.com/Mykyta-Harashchenko/contacthub/internal/models"
	"github.com/Mykyta-Harashchenko/contacthub/internal/security"
	"github.com/Mykyta-Harashchenko/contacthub/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// recordingQueue captures enqueued tasks instead of delivering them.
type recordingQueue struct {
	mu    sync.Mutex
	tasks []*services.EmailTask
}

func (q *recordingQueue) Enqueue(task *services.EmailTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *recordingQueue) IsAsync() bool { return false }
func (q *recordingQueue) Close() error  { return nil }

func (q *recordingQueue) recorded() []*services.EmailTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*services.EmailTask(nil), q.tasks...)
}

type authTestEnv struct {
	router *gin.Engine
	db     *gorm.DB
	codec  *security.TokenCodec
	queue  *recordingQueue
}

func setupAuthEnv(t *testing.T) *authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Contact{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	codec, err := security.NewTokenCodec(&config.JWTConfig{
		Secret:    "test-secret-for-handler-testing",
		Algorithm: "HS256",
	})
	if err != nil {
		t.Fatalf("failed to build token codec: %v", err)
	}

	queue := &recordingQueue{}
	auth := services.NewAuthService(db, codec, nil)
	handler := NewAuthHandler(auth, queue)

	router := gin.New()
	api := router.Group("/api/auth")
	{
		api.POST("/signup", handler.Signup)
		api.POST("/login", handler.Login)
		api.GET("/refresh_token", handler.Refresh)
		api.GET("/confirmed_email/:token", handler.ConfirmEmail)
		api.POST("/request_email", handler.RequestEmail)
	}

	return &authTestEnv{router: router, db: db, codec: codec, queue: queue}
}

func (e *authTestEnv) postJSON(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	e.router.ServeHTTP(w, req)
	return w
}

func (e *authTestEnv) signup(t *testing.T, email string) {
	t.Helper()

	w := e.postJSON(t, "/api/auth/signup", gin.H{
		"username": "user-" + email,
		"email":    email,
		"password": "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup returned %d: %s", w.Code, w.Body.String())
	}
}

func (e *authTestEnv) confirm(t *testing.T, email string) {
	t.Helper()

	if err := e.db.Model(&models.User{}).Where("email = ?", email).Update("confirmed", true).Error; err != nil {
		t.Fatalf("failed to confirm user: %v", err)
	}
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return resp.Data
}

func TestSignupHandler(t *testing.T) {
	env := setupAuthEnv(t)

	env.signup(t, "a@x.com")

	tasks := env.queue.recorded()
	if len(tasks) != 1 {
		t.Fatalf("enqueued %d tasks, expected 1 verification email", len(tasks))
	}
	if tasks[0].To != "a@x.com" {
		t.Errorf("task To = %q, expected %q", tasks[0].To, "a@x.com")
	}
	if tasks[0].Host == "" {
		t.Error("task Host should carry the request base URL")
	}
}

func TestSignupHandler_Duplicate(t *testing.T) {
	env := setupAuthEnv(t)
	env.signup(t, "a@x.com")

	w := env.postJSON(t, "/api/auth/signup", gin.H{
		"username": "other",
		"email":    "a@x.com",
		"password": "password123",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate signup returned %d, expected %d", w.Code, http.StatusConflict)
	}
}

func TestSignupHandler_InvalidBody(t *testing.T) {
	env := setupAuthEnv(t)

	w := env.postJSON(t, "/api/auth/signup", gin.H{
		"username": "ab", // too short
		"email":    "not-an-email",
		"password": "123",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid signup returned %d, expected %d", w.Code, http.StatusBadRequest)
	}
}

func TestLoginHandler(t *testing.T) {
	env := setupAuthEnv(t)
	env.signup(t, "a@x.com")

	// Unconfirmed first
	w := env.postJSON(t, "/api/auth/login", gin.H{"email": "a@x.com", "password": "password123"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unconfirmed login returned %d, expected %d", w.Code, http.StatusUnauthorized)
	}

	env.confirm(t, "a@x.com")
	w = env.postJSON(t, "/api/auth/login", gin.H{"email": "a@x.com", "password": "password123"})
	if w.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", w.Code, w.Body.String())
	}

	data := decodeData(t, w)
	if data["access_token"] == "" || data["refresh_token"] == "" {
		t.Errorf("login response missing tokens: %v", data)
	}
	if data["token_type"] != "bearer" {
		t.Errorf("token_type = %v, expected %q", data["token_type"], "bearer")
	}
}

func TestRefreshHandler(t *testing.T) {
	env := setupAuthEnv(t)
	env.signup(t, "a@x.com")
	env.confirm(t, "a@x.com")

	w := env.postJSON(t, "/api/auth/login", gin.H{"email": "a@x.com", "password": "password123"})
	refreshToken, _ := decodeData(t, w)["refresh_token"].(string)
	if refreshToken == "" {
		t.Fatal("login did not return a refresh token")
	}

	w2 := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/auth/refresh_token", nil)
	req.Header.Set("Authorization", "Bearer "+refreshToken)
	env.router.ServeHTTP(w2, req)

	if w2.Code != http.StatusOK {
		t.Fatalf("refresh returned %d: %s", w2.Code, w2.Body.String())
	}

	// The spent token must not work twice
	w3 := httptest.NewRecorder()
	req2, _ := http.NewRequest("GET", "/api/auth/refresh_token", nil)
	req2.Header.Set("Authorization", "Bearer "+refreshToken)
	env.router.ServeHTTP(w3, req2)

	if w3.Code != http.StatusUnauthorized {
		t.Errorf("replayed refresh returned %d, expected %d", w3.Code, http.StatusUnauthorized)
	}
}

func TestRefreshHandler_NoHeader(t *testing.T) {
	env := setupAuthEnv(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/auth/refresh_token", nil)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("refresh without header returned %d, expected %d", w.Code, http.StatusUnauthorized)
	}
}

func TestConfirmEmailHandler(t *testing.T) {
	env := setupAuthEnv(t)
	env.signup(t, "a@x.com")

	token, err := env.codec.IssueEmail("a@x.com")
	if err != nil {
		t.Fatalf("IssueEmail() error = %v", err)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/auth/confirmed_email/"+token, nil)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("confirm returned %d: %s", w.Code, w.Body.String())
	}

	var user models.User
	env.db.Where("email = ?", "a@x.com").First(&user)
	if !user.Confirmed {
		t.Error("user should be confirmed after visiting the link")
	}
}

func TestConfirmEmailHandler_BadToken(t *testing.T) {
	env := setupAuthEnv(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/auth/confirmed_email/garbage", nil)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad token returned %d, expected %d", w.Code, http.StatusUnprocessableEntity)
	}
}

func TestRequestEmailHandler(t *testing.T) {
	env := setupAuthEnv(t)
	env.signup(t, "a@x.com")
	env.queue.tasks = nil

	w := env.postJSON(t, "/api/auth/request_email", gin.H{"email": "a@x.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("request_email returned %d: %s", w.Code, w.Body.String())
	}
	if len(env.queue.recorded()) != 1 {
		t.Errorf("enqueued %d tasks, expected 1 re-send", len(env.queue.recorded()))
	}

	// Unknown emails get the same reply but no task
	w = env.postJSON(t, "/api/auth/request_email", gin.H{"email": "nobody@x.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("request_email for unknown returned %d: %s", w.Code, w.Body.String())
	}
	if len(env.queue.recorded()) != 1 {
		t.Error("unknown email must not enqueue a task")
	}
}
