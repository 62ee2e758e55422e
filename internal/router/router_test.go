package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/storedesk/internal/cache"
	"github.com/storedesk/internal/config"
	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type routerTestEnv struct {
	engine    *gin.Engine
	container *provider.Container
	db        *gorm.DB
}

func setupRouterTest(t *testing.T) *routerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	_ = cache.InitRedis(nil)
	cache.Flush()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(models.Tables()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "router-test-secret"
	cfg.JWT.ExpireHours = 1
	cfg.Security.PasswordPolicy.MinLength = 6
	cfg.Storage.Driver = "local"
	cfg.Storage.LocalDir = t.TempDir()
	cfg.Storage.PublicURL = "/uploads"
	cfg.Metrics.Enabled = true

	container, err := provider.NewContainer(context.Background(), cfg, db)
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	return &routerTestEnv{engine: SetupRouter(cfg, container), container: container, db: db}
}

func (e *routerTestEnv) createAdmin(t *testing.T, username, password string, isSuper bool) *models.Admin {
	t.Helper()
	hash, err := e.container.AuthService.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := &models.Admin{Username: username, PasswordHash: hash, IsSuper: isSuper}
	if err := e.db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func (e *routerTestEnv) do(t *testing.T, method, path, token string, body interface{}) envelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Locale", "en-US")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s http status want 200 got %d", method, path, w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s unmarshal failed: %v body=%s", method, path, err, w.Body.String())
	}
	return resp
}

func (e *routerTestEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/admin/login", "", gin.H{"username": username, "password": password})
	if resp.StatusCode != 0 {
		t.Fatalf("login failed: %+v", resp)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("login token missing: %s", string(resp.Data))
	}
	return data.Token
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	env := setupRouterTest(t)

	for _, path := range []string{"/health", "/api/health"} {
		w := httptest.NewRecorder()
		env.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"OK"`) {
			t.Fatalf("%s unexpected response: %d %s", path, w.Code, w.Body.String())
		}
	}

	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "storedesk_http_requests_total") {
		t.Fatalf("metrics output should include request counter")
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := setupRouterTest(t)

	resp := env.do(t, http.MethodGet, "/api/v1/admin/coupons", "", nil)
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401 without token, got %+v", resp)
	}
	resp = env.do(t, http.MethodPost, "/api/v1/admin/login", "", gin.H{"username": "ghost", "password": "secret1"})
	if resp.StatusCode != 401 || resp.Msg != "Invalid username or password" {
		t.Fatalf("expected invalid credentials, got %+v", resp)
	}
}

func TestCouponAdminAndPublicFlow(t *testing.T) {
	env := setupRouterTest(t)
	env.createAdmin(t, "root", "secret1", true)
	token := env.login(t, "root", "secret1")
	if err := env.db.Create(&models.User{Email: "buyer@example.com", DisplayName: "Buyer"}).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	created := env.do(t, http.MethodPost, "/api/v1/admin/coupons", token, gin.H{
		"code":                 "save20",
		"description":          "20% off",
		"discount_percentage":  20,
		"min_order_amount":     "50",
		"expiry_date":          time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		"usage_limit_per_user": 1,
		"total_usage_limit":    5,
	})
	if created.StatusCode != 0 {
		t.Fatalf("create coupon failed: %+v", created)
	}
	var coupon struct {
		ID   uint   `json:"id"`
		Code string `json:"code"`
	}
	if err := json.Unmarshal(created.Data, &coupon); err != nil || coupon.Code != "SAVE20" {
		t.Fatalf("unexpected coupon payload: %s", string(created.Data))
	}

	dup := env.do(t, http.MethodPost, "/api/v1/admin/coupons", token, gin.H{
		"code":        "SAVE20",
		"expiry_date": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
	if dup.StatusCode != 400 || dup.Msg != "Coupon code already exists" {
		t.Fatalf("expected duplicate code rejection, got %+v", dup)
	}

	quote := env.do(t, http.MethodPost, "/api/v1/public/coupons/validate", "", gin.H{
		"coupon_code":  "SAVE20",
		"user_id":      1,
		"order_amount": 100,
	})
	if quote.StatusCode != 0 {
		t.Fatalf("validate failed: %+v", quote)
	}
	var quoted struct {
		DiscountAmount string `json:"discount_amount"`
		FinalAmount    string `json:"final_amount"`
	}
	if err := json.Unmarshal(quote.Data, &quoted); err != nil {
		t.Fatalf("unmarshal quote failed: %v", err)
	}
	if quoted.DiscountAmount != "20.00" || quoted.FinalAmount != "80.00" {
		t.Fatalf("unexpected quote: %+v", quoted)
	}

	below := env.do(t, http.MethodPost, "/api/v1/public/coupons/validate", "", gin.H{
		"coupon_code":  "SAVE20",
		"user_id":      1,
		"order_amount": "30",
	})
	if below.StatusCode != 400 || !strings.Contains(below.Msg, "50.00") {
		t.Fatalf("expected min amount rejection with threshold, got %+v", below)
	}

	badCode := env.do(t, http.MethodPost, "/api/v1/public/coupons/validate", "", gin.H{
		"coupon_code":  "no spaces!",
		"user_id":      1,
		"order_amount": 100,
	})
	if badCode.StatusCode != 400 {
		t.Fatalf("expected malformed code rejection, got %+v", badCode)
	}

	applied := env.do(t, http.MethodPost, "/api/v1/public/coupons/apply", "", gin.H{"coupon_code": "save20", "user_id": 1})
	if applied.StatusCode != 0 {
		t.Fatalf("apply failed: %+v", applied)
	}
	again := env.do(t, http.MethodPost, "/api/v1/public/coupons/apply", "", gin.H{"coupon_code": "SAVE20", "user_id": 1})
	if again.StatusCode != 400 || again.Msg != "You have already used this coupon 1 time(s)" {
		t.Fatalf("expected per user limit, got %+v", again)
	}

	stats := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/coupons/%d/stats", coupon.ID), token, nil)
	if stats.StatusCode != 0 {
		t.Fatalf("stats failed: %+v", stats)
	}
	var statsData struct {
		TotalUsedCount int `json:"total_used_count"`
		UniqueUsers    int `json:"unique_users"`
		UsageRecords   []struct {
			UserEmail string `json:"user_email"`
		} `json:"usage_records"`
	}
	if err := json.Unmarshal(stats.Data, &statsData); err != nil {
		t.Fatalf("unmarshal stats failed: %v", err)
	}
	if statsData.TotalUsedCount != 1 || statsData.UniqueUsers != 1 || len(statsData.UsageRecords) != 1 {
		t.Fatalf("unexpected stats: %+v", statsData)
	}
	if statsData.UsageRecords[0].UserEmail != "buyer@example.com" {
		t.Fatalf("stats should join user email, got %+v", statsData.UsageRecords[0])
	}

	missing := env.do(t, http.MethodGet, "/api/v1/admin/coupons/9999", token, nil)
	if missing.StatusCode != 404 {
		t.Fatalf("expected 404 for missing coupon, got %+v", missing)
	}
}

func TestAdminRBACRestrictsByRole(t *testing.T) {
	env := setupRouterTest(t)
	admin := env.createAdmin(t, "couponist", "secret1", false)
	if err := env.container.AuthzService.SetAdminRoles(admin.ID, []string{"coupon_manager"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}
	token := env.login(t, "couponist", "secret1")

	if resp := env.do(t, http.MethodGet, "/api/v1/admin/coupons", token, nil); resp.StatusCode != 0 {
		t.Fatalf("coupon manager should list coupons, got %+v", resp)
	}
	if resp := env.do(t, http.MethodGet, "/api/v1/admin/categories", token, nil); resp.StatusCode != 0 {
		t.Fatalf("inherited auditor role should read categories, got %+v", resp)
	}
	resp := env.do(t, http.MethodPost, "/api/v1/admin/categories", token, gin.H{"name": "Books"})
	if resp.StatusCode != 403 {
		t.Fatalf("coupon manager should not create categories, got %+v", resp)
	}
	if resp := env.do(t, http.MethodGet, "/api/v1/admin/verify", token, nil); resp.StatusCode != 0 {
		t.Fatalf("verify should not require rbac, got %+v", resp)
	}
}

func TestPasswordChangeRevokesOldToken(t *testing.T) {
	env := setupRouterTest(t)
	env.createAdmin(t, "root", "secret1", true)
	token := env.login(t, "root", "secret1")

	short := env.do(t, http.MethodPut, "/api/v1/admin/password", token, gin.H{"current_password": "secret1", "new_password": "abc"})
	if short.StatusCode != 400 || short.Msg != "Password must be at least 6 characters" {
		t.Fatalf("expected policy rejection, got %+v", short)
	}
	wrong := env.do(t, http.MethodPut, "/api/v1/admin/password", token, gin.H{"current_password": "nope", "new_password": "secret2"})
	if wrong.StatusCode != 401 {
		t.Fatalf("expected wrong current password rejection, got %+v", wrong)
	}
	ok := env.do(t, http.MethodPut, "/api/v1/admin/password", token, gin.H{"current_password": "secret1", "new_password": "secret2"})
	if ok.StatusCode != 0 {
		t.Fatalf("change password failed: %+v", ok)
	}

	revoked := env.do(t, http.MethodGet, "/api/v1/admin/verify", token, nil)
	if revoked.StatusCode != 401 {
		t.Fatalf("old token should be revoked, got %+v", revoked)
	}
	fresh := env.login(t, "root", "secret2")
	if resp := env.do(t, http.MethodGet, "/api/v1/admin/verify", fresh, nil); resp.StatusCode != 0 {
		t.Fatalf("new token should work, got %+v", resp)
	}
}

func TestAdminPermissionCatalog(t *testing.T) {
	env := setupRouterTest(t)
	items := buildAdminPermissionCatalog(env.engine)
	if len(items) == 0 {
		t.Fatalf("expected permission catalog items")
	}
	found := false
	for _, item := range items {
		if item.Object == "/admin/login" || item.Object == "/admin/verify" {
			t.Fatalf("self-service routes should be excluded: %+v", item)
		}
		if item.Permission == "PATCH:/admin/orders/:id/status" {
			found = true
			if item.Module != "orders" {
				t.Fatalf("unexpected module: %+v", item)
			}
		}
	}
	if !found {
		t.Fatalf("order status permission missing")
	}
}
