package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"glucolog/internal/auth"
	"glucolog/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Index role-routes the landing page.
func (h *HTTPHandler) Index(c *gin.Context) {
	user, err := h.sessionUser(c)
	if err == nil && user.IsActive {
		if user.IsAdmin() {
			c.Redirect(http.StatusFound, "/admin_dashboard")
		} else {
			c.Redirect(http.StatusFound, "/dashboard")
		}
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *HTTPHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Flash": popFlash(c)})
}

func (h *HTTPHandler) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).Error("failed to load user for login")
		}
		h.renderLoginError(c, "Invalid email or password.")
		return
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		logrus.WithField("email", email).Warn("password verification failed")
		h.renderLoginError(c, "Invalid email or password.")
		return
	}

	if !user.IsActive {
		h.renderLoginError(c, "Your account is deactivated. Please contact admin.")
		return
	}

	token, _, err := h.authManager.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).Error("failed to generate session token")
		h.renderLoginError(c, "Failed to create session.")
		return
	}

	h.setSessionCookie(c, token)
	if user.IsAdmin() {
		c.Redirect(http.StatusFound, "/admin_dashboard")
	} else {
		c.Redirect(http.StatusFound, "/dashboard")
	}
}

func (h *HTTPHandler) renderLoginError(c *gin.Context, message string) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Flash": &Flash{Level: "error", Message: message},
	})
}

func (h *HTTPHandler) SignupPage(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", gin.H{"Flash": popFlash(c)})
}

func (h *HTTPHandler) Signup(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	if email == "" || password == "" {
		h.renderSignupError(c, "Email and password are required.")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	// Exact-match existence check; emails stay case-sensitive as stored.
	if _, err := h.repo.GetUserByEmail(ctx, email); err == nil {
		h.renderSignupError(c, "Email already exists.")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Error("failed to check email during signup")
		h.renderSignupError(c, "Failed to create account.")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		h.renderSignupError(c, "Failed to create account.")
		return
	}

	user := &entity.DbUser{
		Email:         email,
		PasswordHash:  hash,
		Role:          entity.UserRoleUser,
		IsActive:      true,
		BeforeFoodMin: entity.DefaultBeforeFoodMin,
		BeforeFoodMax: entity.DefaultBeforeFoodMax,
		AfterFoodMin:  entity.DefaultAfterFoodMin,
		AfterFoodMax:  entity.DefaultAfterFoodMax,
	}

	if err := h.repo.CreateUser(ctx, user); err != nil {
		logrus.WithError(err).Error("failed to create user")
		h.renderSignupError(c, "Failed to create account.")
		return
	}

	setFlash(c, "success", "Account created successfully! Please login.")
	c.Redirect(http.StatusFound, "/login")
}

func (h *HTTPHandler) renderSignupError(c *gin.Context, message string) {
	c.HTML(http.StatusOK, "signup.html", gin.H{
		"Flash": &Flash{Level: "error", Message: message},
	})
}

// Logout tears down the session.
func (h *HTTPHandler) Logout(c *gin.Context) {
	clearSessionCookie(c)
	c.Redirect(http.StatusFound, "/login")
}
