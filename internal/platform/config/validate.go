package config

import (
	"errors"
	"fmt"
	"slices"
)

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Server.Port > 0 && c.Server.Port < 65536, "server.port %d out of range", c.Server.Port)

	check(slices.Contains([]string{"baas", "memory"}, c.Users.Identity), "users.identity must be baas or memory, got %q", c.Users.Identity)
	check(slices.Contains([]string{"baas", "memory"}, c.Users.Store), "users.store must be baas or memory, got %q", c.Users.Store)
	check(slices.Contains([]string{"baas", "memory"}, c.Catalog.Store), "catalog.store must be baas or memory, got %q", c.Catalog.Store)
	if c.UsesBaaS() {
		check(c.BaaS.URL != "", "baas.url is required when a baas store or identity provider is selected")
		check(c.BaaS.AnonKey != "", "baas.anon_key is required when a baas store or identity provider is selected")
	}
	check(c.Users.Identity != "baas" || c.BaaS.JWTSecret != "", "baas.jwt_secret is required for the baas identity provider")
	check(c.Users.Identity != "memory" || !c.IsProduction(), "users.identity memory is not allowed in production")

	check(slices.Contains([]string{"memory", "redis"}, c.Session.Store), "session.store must be memory or redis, got %q", c.Session.Store)
	check(c.Session.Store != "redis" || c.Session.RedisAddr != "", "session.redis_addr is required for the redis store")
	check(c.Session.TTL > 0, "session.ttl must be positive")
	check(c.Session.CookieName != "", "session.cookie_name is required")

	check(len(c.Checkout.Currency) == 3, "checkout.currency must be a 3-letter code, got %q", c.Checkout.Currency)
	check(c.Checkout.PlacementDelay >= 0, "checkout.placement_delay must not be negative")
	check(c.Checkout.DefaultMinimumQuantity >= 0, "checkout.default_minimum_quantity must not be negative")
	check(c.Checkout.DefaultDeliveryFeeCents >= 0, "checkout.default_delivery_fee_cents must not be negative")
	for seller, p := range c.Checkout.Sellers {
		check(p.MinimumQuantity >= 0, "checkout.sellers[%s].minimum_quantity must not be negative", seller)
		check(p.DeliveryFeeCents >= 0, "checkout.sellers[%s].delivery_fee_cents must not be negative", seller)
	}

	check(slices.Contains([]string{"memory", "spanner"}, c.Orders.Store), "orders.store must be memory or spanner, got %q", c.Orders.Store)
	if c.Orders.Store == "spanner" {
		s := c.Orders.Spanner
		check(s.ProjectID != "" && s.InstanceID != "" && s.DatabaseID != "", "orders.spanner project_id, instance_id and database_id are required")
	}

	check(c.Telemetry.SampleRatio >= 0 && c.Telemetry.SampleRatio <= 1, "telemetry.sample_ratio must be within [0,1]")

	return errors.Join(errs...)
}

// UsesBaaS reports whether any store or the identity provider is the BaaS.
func (c *Config) UsesBaaS() bool {
	return c.Users.Identity == "baas" || c.Users.Store == "baas" || c.Catalog.Store == "baas"
}
