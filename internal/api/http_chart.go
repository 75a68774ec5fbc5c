package api

import (
	"context"
	"net/http"
	"time"

	"glucolog/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ChartData feeds the client-side chart. Admins see every user's data
// with owner emails; regular users see only their own readings and the
// user_email field stays null.
func (h *HTTPHandler) ChartData(c *gin.Context) {
	user := CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	scope := user.ID
	if user.IsAdmin() {
		scope = 0
	}
	readings, err := h.repo.ListReadingsForChart(ctx, scope)
	if err != nil {
		logrus.WithError(err).Error("failed to load chart readings")
		InternalError(c, "failed to load chart data")
		return
	}

	response := entity.ChartDataResponse{
		BeforeFood:      make([]entity.ChartPoint, 0, len(readings)),
		AfterFood:       make([]entity.ChartPoint, 0, len(readings)),
		BeforeFoodRange: entity.ChartRange{Min: user.BeforeFoodMin, Max: user.BeforeFoodMax},
		AfterFoodRange:  entity.ChartRange{Min: user.AfterFoodMin, Max: user.AfterFoodMax},
	}

	for _, reading := range readings {
		point := entity.ChartPoint{
			Date:  reading.Date.Format(entity.DateLayout),
			Value: reading.SugarValue,
			Food:  reading.FoodEaten,
			Time:  reading.TimeOfDay,
		}
		if user.IsAdmin() && reading.User != nil {
			email := reading.User.Email
			point.UserEmail = &email
		}

		// Only "Before Food" readings chart on the before series;
		// everything else lands on the after series.
		if reading.MealRelation == entity.MealBeforeFood {
			response.BeforeFood = append(response.BeforeFood, point)
		} else {
			response.AfterFood = append(response.AfterFood, point)
		}
	}

	c.JSON(http.StatusOK, response)
}
