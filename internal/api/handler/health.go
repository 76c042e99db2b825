package handler

import (
	"net/http"

	"github.com/hollis/supportdesk/internal/api/response"
	"github.com/hollis/supportdesk/internal/repository/mongo"
	"github.com/hollis/supportdesk/internal/repository/redis"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck reports readiness: both the record store and the session
// store must answer a ping.
func ReadyCheck(store *mongo.Store, cache *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "record store not ready")
			return
		}
		if err := cache.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "session store not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
