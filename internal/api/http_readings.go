package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"glucolog/internal/entity"
	"glucolog/internal/stats"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// dashboardRecentLimit caps the readings table on the dashboard; the
// history page shows everything.
const dashboardRecentLimit = 10

func (h *HTTPHandler) Dashboard(c *gin.Context) {
	user := CurrentUser(c)
	if user.IsAdmin() {
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	readings, err := h.repo.ListReadingsByUser(ctx, user.ID, 0)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load readings")
		c.String(http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	recent := readings
	if len(recent) > dashboardRecentLimit {
		recent = recent[:dashboardRecentLimit]
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"User":     user,
		"Readings": recent,
		"Stats":    stats.Summarize(readings),
		"Flash":    popFlash(c),
	})
}

func (h *HTTPHandler) AddReading(c *gin.Context) {
	user := CurrentUser(c)

	day, err := time.Parse(entity.DateLayout, strings.TrimSpace(c.PostForm("date")))
	if err != nil {
		setFlash(c, "error", "Invalid date.")
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	sugar, err := strconv.Atoi(strings.TrimSpace(c.PostForm("sugar_value")))
	if err != nil {
		setFlash(c, "error", "Sugar value must be a number.")
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	// No further validation: unknown meal relations, blank labels and
	// out-of-range values are stored as submitted.
	reading := &entity.DbReading{
		UserID:       user.ID,
		Date:         day,
		TimeOfDay:    c.PostForm("time_of_day"),
		MealRelation: c.PostForm("meal_relation"),
		SugarValue:   sugar,
		FoodEaten:    c.PostForm("food_eaten"),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.CreateReading(ctx, reading); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to create reading")
		setFlash(c, "error", "Failed to save reading.")
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	setFlash(c, "success", "Reading added successfully!")
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *HTTPHandler) History(c *gin.Context) {
	user := CurrentUser(c)
	if user.IsAdmin() {
		c.Redirect(http.StatusFound, "/manage_readings")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	readings, err := h.repo.ListReadingsByUser(ctx, user.ID, 0)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load history")
		c.String(http.StatusInternalServerError, "failed to load history")
		return
	}

	c.HTML(http.StatusOK, "history.html", gin.H{
		"User":     user,
		"Readings": readings,
		"Flash":    popFlash(c),
	})
}

func (h *HTTPHandler) DeleteReading(c *gin.Context) {
	user := CurrentUser(c)

	id, ok := parseIDParam(c)
	if !ok {
		c.String(http.StatusNotFound, "404 not found")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	reading, err := h.repo.GetReading(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.String(http.StatusNotFound, "404 not found")
			return
		}
		logrus.WithError(err).WithField("reading_id", id).Error("failed to load reading")
		c.String(http.StatusInternalServerError, "failed to delete reading")
		return
	}

	// Users delete only their own readings; admins delete any.
	if !user.IsAdmin() && reading.UserID != user.ID {
		setFlash(c, "error", "Unauthorized action.")
		c.Redirect(http.StatusFound, "/history")
		return
	}

	if err := h.repo.DeleteReading(ctx, id); err != nil {
		logrus.WithError(err).WithField("reading_id", id).Error("failed to delete reading")
		setFlash(c, "error", "Failed to delete reading.")
		c.Redirect(http.StatusFound, "/history")
		return
	}

	setFlash(c, "success", "Reading deleted successfully!")
	if user.IsAdmin() {
		c.Redirect(http.StatusFound, "/manage_readings")
	} else {
		c.Redirect(http.StatusFound, "/history")
	}
}
