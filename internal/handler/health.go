package handler

import (
	"context"
	"net/http"
	"time"

	"anypos/internal/infra"
	"anypos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity and reports the mail relay breaker state;
// never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, mailBreaker *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		// Dead-letter depth per job queue; -1 when Redis is unreachable.
		dlq := gin.H{}
		for _, q := range []string{worker.QueueDayEndReport, worker.QueueEmail} {
			n, err := worker.DLQLength(ctx, rdb, q)
			if err != nil {
				n = -1
			}
			dlq[q] = n
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
			"mail":  mailBreaker.State().String(),
			"dlq":   dlq,
		})
	}
}
