package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"jotshi_backend/internal/ai"
	"jotshi_backend/internal/astro"
	appdb "jotshi_backend/internal/db"
	"jotshi_backend/internal/domain"
	"jotshi_backend/internal/prompts"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

type fakeModel struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    int
	onStream func() // Runs when a stream opens
}

func (f *fakeModel) set(reply string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply, f.err = reply, err
}

func (f *fakeModel) next() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.reply, f.err
}

func (f *fakeModel) Complete(context.Context, string, string) (string, error) { return f.next() }

func (f *fakeModel) Describe(context.Context, string, string, []byte, string) (string, error) {
	return f.next()
}

func (f *fakeModel) Stream(_ context.Context, _ []ai.Message, fn func(string) error) error {
	if f.onStream != nil {
		f.onStream()
	}
	reply, err := f.next()
	if err != nil {
		return err
	}
	for _, word := range strings.SplitAfter(reply, " ") {
		if err := fn(word); err != nil {
			return err
		}
	}
	return nil
}

type fakeStore struct {
	paths []string
}

func (s *fakeStore) Upload(_ context.Context, path, _ string, body io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, body)
	s.paths = append(s.paths, path)
	return "https://cdn.test/avatars/" + path, nil
}

type testEnv struct {
	db     *gorm.DB
	rdb    *redis.Client
	mr     *miniredis.Miniredis
	model  *fakeModel
	store  *fakeStore
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, appdb.Migrate(gdb))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	env := &testEnv{db: gdb, rdb: rdb, mr: mr, model: &fakeModel{}, store: &fakeStore{}}
	svc := astro.NewService(env.model, env.model, env.model, prompts.MustLoad(), rdb)
	env.router = gin.New()
	RegisterRoutes(env.router, Deps{
		DB:                gdb,
		Redis:             rdb,
		Astro:             svc,
		Storage:           env.store,
		JWTSecret:         testSecret,
		MinConsultMinutes: 5,
	})
	return env
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(req, token)
}

func (e *testEnv) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signup registers a profile and returns its token and ID.
func (e *testEnv) signup(t *testing.T, email string) (string, string) {
	t.Helper()
	w := e.do(http.MethodPost, "/auth/register", "", gin.H{"email": email, "password": "correct-horse", "full_name": "Test User"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp AuthResponse
	decode(t, w, &resp)
	return resp.Token, resp.Profile.ID
}

func (e *testEnv) grant(t *testing.T, userID, role string) {
	t.Helper()
	require.NoError(t, e.db.Create(&domain.UserRole{UserID: userID, Role: role}).Error)
}

func (e *testEnv) balance(t *testing.T, userID string) float64 {
	t.Helper()
	var p domain.Profile
	require.NoError(t, e.db.First(&p, "id = ?", userID).Error)
	return p.WalletBalance
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
