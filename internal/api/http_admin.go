package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"glucolog/internal/auth"
	"glucolog/internal/stats"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// tempPassword is issued by the admin reset flow and shown once in the
// flash notice.
const tempPassword = "TempPass123!"

func (h *HTTPHandler) AdminDashboard(c *gin.Context) {
	user := CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	totalUsers, err := h.repo.CountUsers(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to count users")
		c.String(http.StatusInternalServerError, "failed to load admin dashboard")
		return
	}
	activeUsers, err := h.repo.CountActiveUsers(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to count active users")
		c.String(http.StatusInternalServerError, "failed to load admin dashboard")
		return
	}
	totalReadings, err := h.repo.CountReadings(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to count readings")
		c.String(http.StatusInternalServerError, "failed to load admin dashboard")
		return
	}

	readings, err := h.repo.ListAllReadings(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to load readings")
		c.String(http.StatusInternalServerError, "failed to load admin dashboard")
		return
	}
	summary := stats.Summarize(readings)

	c.HTML(http.StatusOK, "admin_dashboard.html", gin.H{
		"User": user,
		"Stats": stats.AdminOverview{
			TotalUsers:    totalUsers,
			ActiveUsers:   activeUsers,
			TotalReadings: totalReadings,
			AvgSugar:      summary.AvgSugar,
			BeforeAvg:     summary.BeforeAvg,
			AfterAvg:      summary.AfterAvg,
		},
		"Flash": popFlash(c),
	})
}

func (h *HTTPHandler) ManageUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	users, err := h.repo.ListUsers(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list users")
		c.String(http.StatusInternalServerError, "failed to load users")
		return
	}

	c.HTML(http.StatusOK, "manage_users.html", gin.H{
		"User":  CurrentUser(c),
		"Users": users,
		"Flash": popFlash(c),
	})
}

func (h *HTTPHandler) ManageReadings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	readings, err := h.repo.ListAllReadings(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list readings")
		c.String(http.StatusInternalServerError, "failed to load readings")
		return
	}

	c.HTML(http.StatusOK, "manage_readings.html", gin.H{
		"User":     CurrentUser(c),
		"Readings": readings,
		"Flash":    popFlash(c),
	})
}

// ToggleUser flips the target account's active flag.
func (h *HTTPHandler) ToggleUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.String(http.StatusNotFound, "404 not found")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	target, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.String(http.StatusNotFound, "404 not found")
			return
		}
		logrus.WithError(err).WithField("user_id", id).Error("failed to load user")
		c.String(http.StatusInternalServerError, "failed to update user")
		return
	}

	nowActive := !target.IsActive
	if err := h.repo.UpdateUser(ctx, target.ID, map[string]interface{}{"is_active": nowActive}); err != nil {
		logrus.WithError(err).WithField("user_id", id).Error("failed to toggle user")
		setFlash(c, "error", "Failed to update user.")
		c.Redirect(http.StatusFound, "/manage_users")
		return
	}

	status := "deactivated"
	if nowActive {
		status = "activated"
	}
	setFlash(c, "success", fmt.Sprintf("User %s has been %s.", target.Email, status))
	c.Redirect(http.StatusFound, "/manage_users")
}

// ResetUserPassword overwrites the target's hash with the temporary
// password and surfaces the plaintext to the admin via the flash notice.
func (h *HTTPHandler) ResetUserPassword(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.String(http.StatusNotFound, "404 not found")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	target, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.String(http.StatusNotFound, "404 not found")
			return
		}
		logrus.WithError(err).WithField("user_id", id).Error("failed to load user")
		c.String(http.StatusInternalServerError, "failed to reset password")
		return
	}

	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		logrus.WithError(err).Error("failed to hash temporary password")
		setFlash(c, "error", "Failed to reset password.")
		c.Redirect(http.StatusFound, "/manage_users")
		return
	}

	if err := h.repo.UpdateUser(ctx, target.ID, map[string]interface{}{"password_hash": hash}); err != nil {
		logrus.WithError(err).WithField("user_id", id).Error("failed to reset password")
		setFlash(c, "error", "Failed to reset password.")
		c.Redirect(http.StatusFound, "/manage_users")
		return
	}

	setFlash(c, "success", fmt.Sprintf("Password reset for %s. Temporary password: %s", target.Email, tempPassword))
	c.Redirect(http.StatusFound, "/manage_users")
}
