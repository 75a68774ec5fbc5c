package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"glucolog/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	currentUserContextKey = "current-user"
	sessionCookieName     = "glucolog_session"
)

var errNoSession = errors.New("no session")

// RequestUser 存储请求上下文中的认证用户信息
type RequestUser struct {
	ID          uint
	Email       string
	DisplayName string
	Role        string

	BeforeFoodMin int
	BeforeFoodMax int
	AfterFoodMin  int
	AfterFoodMax  int
}

// IsAdmin 判断用户是否具有管理员权限
func (u *RequestUser) IsAdmin() bool {
	return u != nil && u.Role == entity.UserRoleAdmin
}

func (h *HTTPHandler) setSessionCookie(c *gin.Context, token string) {
	maxAge := h.cfg.SessionExpirationMinutes * 60
	c.SetCookie(sessionCookieName, token, maxAge, "/", "", false, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
}

// sessionToken extracts the token from the session cookie, falling back
// to a Bearer Authorization header for non-browser clients.
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(sessionCookieName); err == nil && strings.TrimSpace(token) != "" {
		return strings.TrimSpace(token)
	}

	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// sessionUser resolves the session token to a fresh user row. The row is
// reloaded per request so role or active-flag changes take effect
// immediately.
func (h *HTTPHandler) sessionUser(c *gin.Context) (*entity.DbUser, error) {
	token := sessionToken(c)
	if token == "" {
		return nil, errNoSession
	}

	claims, err := h.authManager.ParseToken(token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	return h.repo.GetUserByID(ctx, claims.UserID)
}

// RequireSession 会话认证中间件：页面请求跳转到登录页，API 请求返回 401
func (h *HTTPHandler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.sessionUser(c)
		if err != nil {
			if !errors.Is(err, errNoSession) && !errors.Is(err, gorm.ErrRecordNotFound) {
				logrus.WithError(err).Warn("failed to resolve session")
			}
			rejectUnauthenticated(c)
			return
		}

		if !user.IsActive {
			clearSessionCookie(c)
			if isAPIRequest(c) {
				c.AbortWithStatusJSON(http.StatusForbidden, APIError{
					Code:    ErrCodeUserDisabled,
					Message: "account is deactivated",
				})
				return
			}
			setFlash(c, "error", "Your account is deactivated. Please contact admin.")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(currentUserContextKey, &RequestUser{
			ID:            user.ID,
			Email:         user.Email,
			DisplayName:   user.DisplayName,
			Role:          user.Role,
			BeforeFoodMin: user.BeforeFoodMin,
			BeforeFoodMax: user.BeforeFoodMax,
			AfterFoodMin:  user.AfterFoodMin,
			AfterFoodMax:  user.AfterFoodMax,
		})
		c.Next()
	}
}

// RequireAdmin 管理员权限守卫中间件：非管理员静默跳回用户仪表盘
func (h *HTTPHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			if isAPIRequest(c) {
				c.AbortWithStatusJSON(http.StatusForbidden, APIError{
					Code:    ErrCodeForbidden,
					Message: "admin privileges required",
				})
				return
			}
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}

func isAPIRequest(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

func rejectUnauthenticated(c *gin.Context) {
	if isAPIRequest(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
			Code:    ErrCodeUnauthorized,
			Message: "authentication required",
		})
		return
	}
	c.Redirect(http.StatusFound, "/login")
	c.Abort()
}

// CurrentUser 从上下文获取当前认证用户
func CurrentUser(c *gin.Context) *RequestUser {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*RequestUser)
	if !ok {
		return nil
	}
	return user
}
