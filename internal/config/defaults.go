package config

import (
	"strings"

	"github.com/spf13/viper"
)

const defaultSessionSecret = "printhub-dev-secret"

// PRINTHUB_BACKEND_BASEURL maps to backend.baseurl.
var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 3000)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "30s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("backend.baseurl", "http://localhost:8000")
	v.SetDefault("backend.timeout", "15s")
	v.SetDefault("backend.pagelimit", 100)

	v.SetDefault("session.cookiename", "printhub_session")
	v.SetDefault("session.secret", defaultSessionSecret)
	v.SetDefault("session.ttl", "8h")
	v.SetDefault("session.secure", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.accesskey", "")
	v.SetDefault("archive.secretkey", "")
	v.SetDefault("archive.bucket", "printhub-snapshots")
	v.SetDefault("archive.usessl", false)
	v.SetDefault("archive.region", "us-east-1")

	v.SetDefault("fleet.refreshinterval", "5m")
	v.SetDefault("fleet.lowtonerthreshold", 20)
	v.SetDefault("fleet.statusconcurrency", 8)
	v.SetDefault("fleet.redirectdelay", "1500ms")
	v.SetDefault("fleet.feedsize", 50)

	v.SetDefault("worker.stream", "printers:lowtoner")
	v.SetDefault("worker.group", "alert-history")
	v.SetDefault("worker.consumer", "alertworker-1")
	v.SetDefault("worker.claiminterval", "1m")
	v.SetDefault("worker.retention", "720h")
	v.SetDefault("worker.pruneschedule", "0 0 3 * * *")
}
