package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "AGRILINK_"

func (c *Config) applyEnvOverrides() error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str(envPrefix+"ENV", &c.Env)

	str(envPrefix+"HTTP_HOST", &c.Server.Host)
	integer(envPrefix+"HTTP_PORT", &c.Server.Port)
	if v, ok := lookup(envPrefix + "ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}

	str(envPrefix+"LOG_MODE", &c.Log.Mode)
	str(envPrefix+"LOG_LEVEL", &c.Log.Level)
	boolean(envPrefix+"LOG_REDACT", &c.Log.Redact)
	str(envPrefix+"LOG_HASH_SALT", &c.Log.HashSalt)

	str(envPrefix+"BAAS_URL", &c.BaaS.URL)
	str(envPrefix+"BAAS_ANON_KEY", &c.BaaS.AnonKey)
	str(envPrefix+"BAAS_JWT_SECRET", &c.BaaS.JWTSecret)
	duration(envPrefix+"BAAS_TIMEOUT", &c.BaaS.Timeout)

	str(envPrefix+"USERS_IDENTITY", &c.Users.Identity)
	str(envPrefix+"USERS_STORE", &c.Users.Store)
	str(envPrefix+"CATALOG_STORE", &c.Catalog.Store)

	str(envPrefix+"SESSION_STORE", &c.Session.Store)
	str(envPrefix+"REDIS_ADDR", &c.Session.RedisAddr)
	str(envPrefix+"REDIS_PASSWORD", &c.Session.RedisPassword)
	boolean(envPrefix+"COOKIE_SECURE", &c.Session.CookieSecure)

	duration(envPrefix+"PLACEMENT_DELAY", &c.Checkout.PlacementDelay)

	str(envPrefix+"ORDERS_STORE", &c.Orders.Store)
	// Spanner ids keep their conventional names.
	str("SPANNER_PROJECT_ID", &c.Orders.Spanner.ProjectID)
	str("SPANNER_INSTANCE_ID", &c.Orders.Spanner.InstanceID)
	str("SPANNER_DATABASE_ID", &c.Orders.Spanner.DatabaseID)

	boolean(envPrefix+"OTEL_ENABLED", &c.Telemetry.Enabled)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &c.Telemetry.Endpoint)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment override: %w", errs[0])
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
