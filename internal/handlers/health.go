package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck reports the database and every optional dependency. Only the
// database decides the status code; the others are informational.
func HealthCheck(db *gorm.DB, deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		body := gin.H{"status": "healthy", "database": "ok"}

		sqlDB, err := db.DB()
		if err != nil {
			body["status"], body["database"] = "unhealthy", "disconnected"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			body["status"], body["database"] = "unhealthy", "unreachable"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}

		for name, dep := range deps {
			if dep == nil {
				body[name] = "disabled"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				body[name] = "unreachable"
				continue
			}
			body[name] = "ok"
		}

		c.JSON(http.StatusOK, body)
	}
}
