// Package health provides liveness and readiness HTTP handlers.
//
// Readiness runs named checks in parallel under a shared timeout; any failure
// turns the response into 503. Responses are plain text unless the client asks
// for JSON with "Accept: application/json" or "?format=json":
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	    "redis":    redis.Healthcheck(client),
//	}, health.WithTimeout(3*time.Second)))
//
// JSON response:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "postgres": {"status": "healthy", "duration_ms": 2},
//	    "redis": {"status": "unhealthy", "error": "connection refused", "duration_ms": 0}
//	  }
//	}
package health
