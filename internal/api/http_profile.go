package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"glucolog/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func (h *HTTPHandler) Profile(c *gin.Context) {
	c.HTML(http.StatusOK, "profile.html", gin.H{
		"User":  CurrentUser(c),
		"Flash": popFlash(c),
	})
}

func (h *HTTPHandler) UpdateProfile(c *gin.Context) {
	user := CurrentUser(c)
	updates := make(map[string]interface{})

	if name := strings.TrimSpace(c.PostForm("name")); name != "" {
		updates["display_name"] = name
	}

	rangeFields := []struct{ form, column string }{
		{"before_food_min", "before_food_min"},
		{"before_food_max", "before_food_max"},
		{"after_food_min", "after_food_min"},
		{"after_food_max", "after_food_max"},
	}
	for _, field := range rangeFields {
		value, err := strconv.Atoi(strings.TrimSpace(c.PostForm(field.form)))
		if err != nil {
			setFlash(c, "error", "Error updating profile: "+err.Error())
			c.Redirect(http.StatusFound, "/profile")
			return
		}
		updates[field.column] = value
	}

	successMessage := "Profile updated successfully!"

	newPassword := strings.TrimSpace(c.PostForm("new_password"))
	confirmPassword := strings.TrimSpace(c.PostForm("confirm_password"))
	if newPassword != "" {
		if newPassword != confirmPassword {
			// Nothing is committed on a mismatch.
			setFlash(c, "error", "Passwords do not match!")
			c.Redirect(http.StatusFound, "/profile")
			return
		}
		hash, err := auth.HashPassword(newPassword)
		if err != nil {
			logrus.WithError(err).Error("failed to hash password for profile update")
			setFlash(c, "error", "Error updating profile: "+err.Error())
			c.Redirect(http.StatusFound, "/profile")
			return
		}
		updates["password_hash"] = hash
		successMessage = "Profile and password updated successfully!"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.UpdateUser(ctx, user.ID, updates); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to update profile")
		setFlash(c, "error", "Error updating profile: "+err.Error())
		c.Redirect(http.StatusFound, "/profile")
		return
	}

	setFlash(c, "success", successMessage)
	c.Redirect(http.StatusFound, "/profile")
}
