package api

import (
	"embed"
	"html/template"
	"strconv"
	"strings"
	"time"

	"glucolog/internal/auth"
	"glucolog/internal/config"
	"glucolog/internal/model"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg         config.Config
	repo        model.Repository
	authManager *auth.Manager
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, repo model.Repository) (*HTTPHandler, error) {
	expiry := time.Duration(cfg.SessionExpirationMinutes) * time.Minute
	authManager, err := auth.NewManager(cfg.SecretKey, cfg.SessionIssuer, expiry)
	if err != nil {
		return nil, err
	}

	return &HTTPHandler{
		cfg:         cfg,
		repo:        repo,
		authManager: authManager,
	}, nil
}

// RegisterRoutes wires the HTTP surface onto the engine. The admin
// mutating endpoints stay plain GETs to preserve the existing links.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	r.GET("/", h.Index)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/signup", h.SignupPage)
	r.POST("/signup", h.Signup)

	authed := r.Group("")
	authed.Use(h.RequireSession())
	authed.GET("/logout", h.Logout)
	authed.GET("/dashboard", h.Dashboard)
	authed.POST("/add_reading", h.AddReading)
	authed.GET("/history", h.History)
	authed.GET("/profile", h.Profile)
	authed.POST("/update_profile", h.UpdateProfile)
	authed.GET("/delete_reading/:id", h.DeleteReading)
	authed.GET("/api/chart_data", h.ChartData)

	admin := authed.Group("")
	admin.Use(h.RequireAdmin())
	admin.GET("/admin_dashboard", h.AdminDashboard)
	admin.GET("/manage_users", h.ManageUsers)
	admin.GET("/manage_readings", h.ManageReadings)
	admin.GET("/toggle_user/:id", h.ToggleUser)
	admin.GET("/reset_user_password/:id", h.ResetUserPassword)
}

// parseIDParam parses the numeric :id path parameter. The bit size
// follows the platform int width so the uint conversion never truncates.
func parseIDParam(c *gin.Context) (uint, bool) {
	value := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(value, 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
