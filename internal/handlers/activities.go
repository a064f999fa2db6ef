package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/P3chys/exchange-api/internal/models"
	"github.com/gin-gonic/gin"
)

type ActivityLister interface {
	GetRecentActivities(ctx context.Context, activityType models.ActivityType, limit int) ([]models.Activity, error)
}

func GetRecentActivities(activity ActivityLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}

		activities, err := activity.GetRecentActivities(c.Request.Context(), models.ActivityType(c.Query("type")), limit)
		if err != nil {
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch activities")
			return
		}

		respondData(c, http.StatusOK, activities)
	}
}
