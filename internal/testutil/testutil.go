package testutil

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jcall/wanderstay/internal/api"
	"github.com/jcall/wanderstay/internal/api/middleware"
	"github.com/jcall/wanderstay/internal/config"
	"github.com/jcall/wanderstay/internal/domain"
	"github.com/jcall/wanderstay/internal/repository"
	repoPostgres "github.com/jcall/wanderstay/internal/repository/postgres"
	"github.com/jcall/wanderstay/internal/service"
	"github.com/jcall/wanderstay/internal/session"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an isolated in-memory sqlite database with the full
// schema. The repository layer emits portable SQL so the suite runs
// without a postgres instance.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&domain.User{},
		&domain.Listing{},
		&domain.Review{},
		&session.Record{},
	)
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// Truncate clears all tables for test isolation.
func Truncate(t *testing.T, db *gorm.DB) {
	t.Helper()

	for _, table := range []string{"reviews", "listings", "sessions", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestServer holds all components for integration testing.
type TestServer struct {
	Server   *httptest.Server
	DB       *gorm.DB
	Repos    *repository.Repositories
	Services *service.Services
	Counters *middleware.MemoryCounterStore

	// Client keeps a cookie jar and follows redirects; NoRedirect shares
	// the same jar but surfaces 3xx responses for assertions.
	Client     *http.Client
	NoRedirect *http.Client
}

func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	db := NewTestDB(t)
	repos := repoPostgres.NewRepositories(db)
	services := service.NewServices(repos)

	sessions := session.NewManager(session.NewMemoryStore(), "test-session-secret")
	counters := middleware.NewMemoryCounterStore()
	limiter := middleware.NewRateLimiter(counters)

	cfg := &config.Config{
		Port:          "0",
		Environment:   "test",
		SessionSecret: "test-session-secret",
		UploadDir:     t.TempDir(),
	}

	router := api.NewRouter(services, sessions, limiter, cfg)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}

	return &TestServer{
		Server:   server,
		DB:       db,
		Repos:    repos,
		Services: services,
		Counters: counters,
		Client:   &http.Client{Jar: jar},
		NoRedirect: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}

// PostForm submits an urlencoded form without following redirects.
func (ts *TestServer) PostForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()

	resp, err := ts.NoRedirect.Post(ts.URL(path), "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

// Get fetches a page without following redirects.
func (ts *TestServer) Get(t *testing.T, path string) *http.Response {
	t.Helper()

	resp, err := ts.NoRedirect.Get(ts.URL(path))
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

// Login authenticates through the HTTP surface so the cookie jar carries a
// real session.
func (ts *TestServer) Login(t *testing.T, username, password string) {
	t.Helper()

	resp := ts.PostForm(t, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login for %s: unexpected status %d", username, resp.StatusCode)
	}
}
