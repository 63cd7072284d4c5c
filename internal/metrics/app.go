package metrics

import "time"

// RecordHealthCheck records one checker run.
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	count(HealthCheckTotal, map[string]string{
		"check":  checkName,
		"status": outcomeLabel(healthy, "healthy", "unhealthy"),
	})
	observe(HealthCheckDuration, duration, map[string]string{"check": checkName})
}

// SetServerStartTime records the start time as a Unix timestamp.
func SetServerStartTime(timestamp int64) {
	gauge(ServerStartTime, float64(timestamp), nil)
}

// SetServerUptime records the uptime in seconds.
func SetServerUptime(seconds int64) {
	gauge(ServerUptime, float64(seconds), nil)
}

// RecordConfigReload counts SIGHUP reload attempts.
func RecordConfigReload(success bool) {
	count(ConfigReloadTotal, map[string]string{"status": outcomeLabel(success, "success", "failure")})
}
