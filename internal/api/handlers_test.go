package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"glucolog/internal/auth"
	"glucolog/internal/config"
	"glucolog/internal/entity"
	"glucolog/internal/model"
	modelsql "glucolog/internal/model/sql"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServer(t *testing.T) (*gin.Engine, model.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&entity.DbUser{}, &entity.DbReading{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	repo := modelsql.NewGormRepository(db)

	cfg := config.Config{
		SecretKey:                "test-secret",
		SessionIssuer:            "glucolog",
		SessionExpirationMinutes: 60,
	}
	handler, err := NewHTTPHandler(cfg, repo)
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}

	r := gin.New()
	handler.RegisterRoutes(r)
	return r, repo
}

func postForm(r *gin.Engine, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == sessionCookieName && ck.Value != "" {
			return ck
		}
	}
	return nil
}

func signup(t *testing.T, r *gin.Engine, email, password string) {
	t.Helper()
	w := postForm(r, "/signup", url.Values{"email": {email}, "password": {password}})
	if w.Code != http.StatusFound {
		t.Fatalf("expected signup redirect, got status %d", w.Code)
	}
}

func login(t *testing.T, r *gin.Engine, email, password string) *http.Cookie {
	t.Helper()
	w := postForm(r, "/login", url.Values{"email": {email}, "password": {password}})
	if w.Code != http.StatusFound {
		t.Fatalf("expected login redirect, got status %d: %s", w.Code, w.Body.String())
	}
	ck := sessionCookie(t, w)
	if ck == nil {
		t.Fatal("expected session cookie after login")
	}
	return ck
}

func createAdmin(t *testing.T, repo model.Repository, email, password string) *entity.DbUser {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash admin password: %v", err)
	}
	admin := &entity.DbUser{
		Email:         email,
		PasswordHash:  hash,
		Role:          entity.UserRoleAdmin,
		IsActive:      true,
		BeforeFoodMin: entity.DefaultBeforeFoodMin,
		BeforeFoodMax: entity.DefaultBeforeFoodMax,
		AfterFoodMin:  entity.DefaultAfterFoodMin,
		AfterFoodMax:  entity.DefaultAfterFoodMax,
	}
	if err := repo.CreateUser(context.Background(), admin); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	return admin
}

func TestSignupAndLogin(t *testing.T) {
	r, _ := newTestServer(t)

	signup(t, r, "alice@example.com", "S3curePass!")
	ck := login(t, r, "alice@example.com", "S3curePass!")

	w := get(r, "/dashboard", ck)
	if w.Code != http.StatusOK {
		t.Fatalf("expected dashboard to render, got status %d", w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r, _ := newTestServer(t)
	signup(t, r, "alice@example.com", "S3curePass!")

	w := postForm(r, "/login", url.Values{"email": {"alice@example.com"}, "password": {"wrong"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected re-rendered login form, got status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid email or password.") {
		t.Fatal("expected invalid-credentials notice in response body")
	}
	if sessionCookie(t, w) != nil {
		t.Fatal("expected no session cookie on failed login")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	r, repo := newTestServer(t)
	signup(t, r, "alice@example.com", "S3curePass!")

	w := postForm(r, "/signup", url.Values{"email": {"alice@example.com"}, "password": {"other"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected re-rendered signup form, got status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Email already exists.") {
		t.Fatal("expected duplicate-email notice in response body")
	}

	count, err := repo.CountUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error counting users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected no new row for duplicate signup, got %d users", count)
	}
}

func TestDeactivatedUserCannotLogin(t *testing.T) {
	r, repo := newTestServer(t)
	signup(t, r, "alice@example.com", "S3curePass!")

	user, err := repo.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error loading user: %v", err)
	}
	if err := repo.UpdateUser(context.Background(), user.ID, map[string]interface{}{"is_active": false}); err != nil {
		t.Fatalf("unexpected error deactivating user: %v", err)
	}

	w := postForm(r, "/login", url.Values{"email": {"alice@example.com"}, "password": {"S3curePass!"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected re-rendered login form, got status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "deactivated") {
		t.Fatal("expected account-deactivated notice in response body")
	}
	if sessionCookie(t, w) != nil {
		t.Fatal("expected no session cookie for deactivated account")
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	r, _ := newTestServer(t)

	w := get(r, "/dashboard")
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect for unauthenticated page request, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}

	w = get(r, "/api/chart_data")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated API request, got %d", w.Code)
	}
}

func TestAddReadingRoundTrip(t *testing.T) {
	r, repo := newTestServer(t)
	signup(t, r, "alice@example.com", "S3curePass!")
	ck := login(t, r, "alice@example.com", "S3curePass!")

	w := postForm(r, "/add_reading", url.Values{
		"date":          {"2025-02-14"},
		"time_of_day":   {"Night"},
		"meal_relation": {"After Food"},
		"sugar_value":   {"185"},
		"food_eaten":    {"rice and curry"},
	}, ck)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect after adding reading, got %d", w.Code)
	}

	user, err := repo.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error loading user: %v", err)
	}
	readings, err := repo.ListReadingsByUser(context.Background(), user.ID, 0)
	if err != nil {
		t.Fatalf("unexpected error listing readings: %v", err)
	}
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}
	got := readings[0]
	if got.Date.Format(entity.DateLayout) != "2025-02-14" ||
		got.TimeOfDay != "Night" ||
		got.MealRelation != entity.MealAfterFood ||
		got.SugarValue != 185 ||
		got.FoodEaten != "rice and curry" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
	if got.ID == 0 || got.CreatedAt.IsZero() {
		t.Fatal("expected assigned id and creation timestamp")
	}
}

func TestAddReadingRejectsNonNumericSugar(t *testing.T) {
	r, repo := newTestServer(t)
	signup(t, r, "alice@example.com", "S3curePass!")
	ck := login(t, r, "alice@example.com", "S3curePass!")

	w := postForm(r, "/add_reading", url.Values{
		"date":          {"2025-02-14"},
		"time_of_day":   {"Morning"},
		"meal_relation": {"Before Food"},
		"sugar_value":   {"not-a-number"},
	}, ck)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect for invalid input, got %d", w.Code)
	}

	count, err := repo.CountReadings(context.Background())
	if err != nil {
		t.Fatalf("unexpected error counting readings: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no reading stored for invalid input, got %d", count)
	}
}

func TestDeleteReadingAuthorization(t *testing.T) {
	r, repo := newTestServer(t)
	signup(t, r, "alice@example.com", "S3curePass!")
	signup(t, r, "bob@example.com", "S3curePass!")
	aliceCk := login(t, r, "alice@example.com", "S3curePass!")

	w := postForm(r, "/add_reading", url.Values{
		"date":          {"2025-02-14"},
		"time_of_day":   {"Morning"},
		"meal_relation": {"Before Food"},
		"sugar_value":   {"110"},
	}, aliceCk)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect after adding reading, got %d", w.Code)
	}

	alice, err := repo.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error loading alice: %v", err)
	}
	readings, err := repo.ListReadingsByUser(context.Background(), alice.ID, 0)
	if err != nil || len(readings) != 1 {
		t.Fatalf("expected alice to own 1 reading, got %d (err %v)", len(readings), err)
	}
	readingID := readings[0].ID

	// A stranger cannot delete it.
	bobCk := login(t, r, "bob@example.com", "S3curePass!")
	w = get(r, "/delete_reading/"+uintToString(readingID), bobCk)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect for unauthorized delete, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/history" {
		t.Fatalf("expected redirect to /history, got %q", loc)
	}
	if _, err := repo.GetReading(context.Background(), readingID); err != nil {
		t.Fatalf("expected reading to survive unauthorized delete: %v", err)
	}

	// An admin can.
	createAdmin(t, repo, "admin@example.com", "Admin@2025!")
	adminCk := login(t, r, "admin@example.com", "Admin@2025!")
	w = get(r, "/delete_reading/"+uintToString(readingID), adminCk)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect after admin delete, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/manage_readings" {
		t.Fatalf("expected redirect to /manage_readings, got %q", loc)
	}
	if _, err := repo.GetReading(context.Background(), readingID); err == nil {
		t.Fatal("expected reading to be deleted by admin")
	}
}

func TestDeleteReadingNotFound(t *testing.T) {
	r, _ := newTestServer(t)
	signup(t, r, "alice@example.com", "S3curePass!")
	ck := login(t, r, "alice@example.com", "S3curePass!")

	w := get(r, "/delete_reading/9999", ck)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown reading, got %d", w.Code)
	}
}

func TestChartDataPrivacy(t *testing.T) {
	r, repo := newTestServer(t)
	signup(t, r, "alice@example.com", "S3curePass!")
	ck := login(t, r, "alice@example.com", "S3curePass!")

	for _, form := range []url.Values{
		{"date": {"2025-01-01"}, "time_of_day": {"Morning"}, "meal_relation": {"Before Food"}, "sugar_value": {"100"}},
		{"date": {"2025-01-02"}, "time_of_day": {"Night"}, "meal_relation": {"After Food"}, "sugar_value": {"180"}},
	} {
		if w := postForm(r, "/add_reading", form, ck); w.Code != http.StatusFound {
			t.Fatalf("expected redirect after adding reading, got %d", w.Code)
		}
	}

	w := get(r, "/api/chart_data", ck)
	if w.Code != http.StatusOK {
		t.Fatalf("expected chart data, got status %d", w.Code)
	}
	var payload entity.ChartDataResponse
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to unmarshal chart payload: %v", err)
	}
	if len(payload.BeforeFood) != 1 || len(payload.AfterFood) != 1 {
		t.Fatalf("expected one point per series, got %d/%d", len(payload.BeforeFood), len(payload.AfterFood))
	}
	for _, point := range append(payload.BeforeFood, payload.AfterFood...) {
		if point.UserEmail != nil {
			t.Fatal("expected user_email to stay null for non-admin actor")
		}
	}
	if payload.BeforeFoodRange.Min != entity.DefaultBeforeFoodMin ||
		payload.AfterFoodRange.Max != entity.DefaultAfterFoodMax {
		t.Fatalf("expected default reference ranges, got %+v/%+v",
			payload.BeforeFoodRange, payload.AfterFoodRange)
	}

	// The admin variant carries owner emails.
	createAdmin(t, repo, "admin@example.com", "Admin@2025!")
	adminCk := login(t, r, "admin@example.com", "Admin@2025!")
	w = get(r, "/api/chart_data", adminCk)
	if w.Code != http.StatusOK {
		t.Fatalf("expected admin chart data, got status %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to unmarshal admin chart payload: %v", err)
	}
	for _, point := range append(payload.BeforeFood, payload.AfterFood...) {
		if point.UserEmail == nil || *point.UserEmail != "alice@example.com" {
			t.Fatal("expected owner email on admin chart points")
		}
	}
}

func TestAdminRoutesRedirectNonAdmins(t *testing.T) {
	r, _ := newTestServer(t)
	signup(t, r, "alice@example.com", "S3curePass!")
	ck := login(t, r, "alice@example.com", "S3curePass!")

	for _, path := range []string{"/admin_dashboard", "/manage_users", "/manage_readings", "/toggle_user/1", "/reset_user_password/1"} {
		w := get(r, path, ck)
		if w.Code != http.StatusFound {
			t.Fatalf("expected redirect for %s, got %d", path, w.Code)
		}
		if loc := w.Header().Get("Location"); loc != "/dashboard" {
			t.Fatalf("expected redirect to /dashboard for %s, got %q", path, loc)
		}
	}
}

func TestToggleUserIdempotence(t *testing.T) {
	r, repo := newTestServer(t)
	signup(t, r, "alice@example.com", "S3curePass!")
	createAdmin(t, repo, "admin@example.com", "Admin@2025!")
	adminCk := login(t, r, "admin@example.com", "Admin@2025!")

	alice, err := repo.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error loading alice: %v", err)
	}
	id := uintToString(alice.ID)

	if w := get(r, "/toggle_user/"+id, adminCk); w.Code != http.StatusFound {
		t.Fatalf("expected redirect after toggle, got %d", w.Code)
	}
	toggled, err := repo.GetUserByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("unexpected error reloading alice: %v", err)
	}
	if toggled.IsActive {
		t.Fatal("expected user to be deactivated after first toggle")
	}

	if w := get(r, "/toggle_user/"+id, adminCk); w.Code != http.StatusFound {
		t.Fatalf("expected redirect after second toggle, got %d", w.Code)
	}
	restored, err := repo.GetUserByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("unexpected error reloading alice: %v", err)
	}
	if !restored.IsActive {
		t.Fatal("expected second toggle to restore the original flag")
	}
}

func TestToggleUserNotFound(t *testing.T) {
	r, repo := newTestServer(t)
	createAdmin(t, repo, "admin@example.com", "Admin@2025!")
	adminCk := login(t, r, "admin@example.com", "Admin@2025!")

	w := get(r, "/toggle_user/9999", adminCk)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", w.Code)
	}
}

func TestResetUserPassword(t *testing.T) {
	r, repo := newTestServer(t)
	signup(t, r, "alice@example.com", "S3curePass!")
	createAdmin(t, repo, "admin@example.com", "Admin@2025!")
	adminCk := login(t, r, "admin@example.com", "Admin@2025!")

	alice, err := repo.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error loading alice: %v", err)
	}

	w := get(r, "/reset_user_password/"+uintToString(alice.ID), adminCk)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect after reset, got %d", w.Code)
	}

	// Old password no longer verifies; the temporary one does.
	if w := postForm(r, "/login", url.Values{"email": {"alice@example.com"}, "password": {"S3curePass!"}}); sessionCookie(t, w) != nil {
		t.Fatal("expected old password to stop working")
	}
	login(t, r, "alice@example.com", tempPassword)
}

func TestProfileUpdate(t *testing.T) {
	r, repo := newTestServer(t)
	signup(t, r, "alice@example.com", "S3curePass!")
	ck := login(t, r, "alice@example.com", "S3curePass!")

	w := postForm(r, "/update_profile", url.Values{
		"name":            {"Alice"},
		"before_food_min": {"70"},
		"before_food_max": {"120"},
		"after_food_min":  {"85"},
		"after_food_max":  {"170"},
	}, ck)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect after profile update, got %d", w.Code)
	}

	user, err := repo.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error loading user: %v", err)
	}
	if user.DisplayName != "Alice" || user.BeforeFoodMin != 70 || user.AfterFoodMax != 170 {
		t.Fatalf("expected profile changes to persist, got %+v", user)
	}
}

func TestProfileUpdatePasswordMismatch(t *testing.T) {
	r, repo := newTestServer(t)
	signup(t, r, "alice@example.com", "S3curePass!")
	ck := login(t, r, "alice@example.com", "S3curePass!")

	w := postForm(r, "/update_profile", url.Values{
		"name":             {"Changed"},
		"before_food_min":  {"70"},
		"before_food_max":  {"120"},
		"after_food_min":   {"85"},
		"after_food_max":   {"170"},
		"new_password":     {"NewPass1!"},
		"confirm_password": {"Different!"},
	}, ck)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect on mismatch, got %d", w.Code)
	}

	// Nothing was committed, password included.
	user, err := repo.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error loading user: %v", err)
	}
	if user.DisplayName == "Changed" {
		t.Fatal("expected no changes committed on password mismatch")
	}
	login(t, r, "alice@example.com", "S3curePass!")
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func TestParseIDParam(t *testing.T) {
	// One past the platform uint max, e.g. 4294967296 on 32-bit.
	overflow := "1" + strings.Repeat("0", len(strconv.FormatUint(uint64(^uint(0)), 10)))

	tests := []struct {
		name  string
		param string
		want  uint
		ok    bool
	}{
		{"simple id", "42", 42, true},
		{"trims whitespace", " 7 ", 7, true},
		{"zero rejected", "0", 0, false},
		{"negative rejected", "-1", 0, false},
		{"non-numeric rejected", "abc", 0, false},
		{"platform overflow rejected", overflow, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Params = gin.Params{{Key: "id", Value: tt.param}}

			got, ok := parseIDParam(c)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("parseIDParam(%q) = (%d, %v), want (%d, %v)", tt.param, got, ok, tt.want, tt.ok)
			}
		})
	}
}
