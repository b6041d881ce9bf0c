package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kitroom/kitroom-backend/internal/holdings"
	"github.com/kitroom/kitroom-backend/internal/inventory"
	pkgauth "github.com/kitroom/kitroom-backend/pkg/auth"
	"github.com/kitroom/kitroom-backend/pkg/config"
	"github.com/kitroom/kitroom-backend/pkg/db/models"
	"github.com/kitroom/kitroom-backend/pkg/logger"
	"github.com/kitroom/kitroom-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "kitroom-test"},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	dsn := "file:routes_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.InventoryRecord{}, &models.UniformMedia{}, &models.HeldItem{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	runner := gormTxRunner{db: conn}
	invRepo := inventory.NewRepository(conn)
	inventoryService := inventory.NewService(invRepo, runner, logg)
	holdingsService := holdings.NewService(
		holdings.NewRepository(conn),
		invRepo,
		inventory.NewLocator(500, 3*time.Second, logg),
		runner,
		holdings.NewGuard(15*time.Second),
		metrics.NewEngineMetrics(nil),
		logg,
		3,
	)

	return NewRouter(cfg, logg, stubPinger{}, nil, holdingsService, inventoryService)
}

func buildToken(t *testing.T, cfg *config.Config, role pkgauth.Role) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		MemberID: uuid.New(),
		Role:     role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(t, testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestHoldingsRejectMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/holdings", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestHoldingsSucceedWithMemberJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/holdings", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, pkgauth.RoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for member holdings got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	member := httptest.NewRequest(http.MethodGet, "/api/admin/v1/inventory", nil)
	member.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, pkgauth.RoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, member)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member on admin route got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/inventory", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, pkgauth.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin list got %d", resp.Code)
	}
}

func TestCreateInventoryRejectsBadJSON(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/inventory", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, pkgauth.RoleAdmin))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestSubmitHoldingsEndToEnd(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	adminToken := buildToken(t, cfg, pkgauth.RoleAdmin)

	seed := httptest.NewRequest(http.MethodPost, "/api/admin/v1/inventory",
		strings.NewReader(`{"category":"Shirt","type":"Digital Shirt","size":"M","quantity":4}`))
	seed.Header.Set("Authorization", "Bearer "+adminToken)
	seed.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, seed)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 seeding stock got %d: %s", resp.Code, resp.Body.String())
	}

	submit := httptest.NewRequest(http.MethodPost, "/api/v1/holdings",
		strings.NewReader(`{"items":[{"category":"T-Shirt","type":"Digital","size":"M"}]}`))
	submit.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, pkgauth.RoleMember))
	submit.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, submit)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for submit got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"deducted_units":1`) {
		t.Fatalf("expected one deducted unit, body: %s", resp.Body.String())
	}
}
