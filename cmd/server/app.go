package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"

	gospanner "cloud.google.com/go/spanner"
	goredis "github.com/redis/go-redis/v9"

	"github.com/agrilink/marketplace/internal/platform/authn"
	"github.com/agrilink/marketplace/internal/platform/baas"
	"github.com/agrilink/marketplace/internal/platform/config"
	"github.com/agrilink/marketplace/internal/platform/eventbus"
	"github.com/agrilink/marketplace/internal/platform/httpserver"
	"github.com/agrilink/marketplace/internal/platform/session"
	"github.com/agrilink/marketplace/internal/platform/spanner"
	"github.com/agrilink/marketplace/internal/platform/transaction"
	"github.com/agrilink/marketplace/modules/catalog"
	catalogdomain "github.com/agrilink/marketplace/modules/catalog/domain"
	catalogpersistence "github.com/agrilink/marketplace/modules/catalog/infrastructure/persistence"
	"github.com/agrilink/marketplace/modules/notifications"
	notificationsdomain "github.com/agrilink/marketplace/modules/notifications/domain"
	"github.com/agrilink/marketplace/modules/notifications/infrastructure/dedup"
	"github.com/agrilink/marketplace/modules/orders"
	ordersdomain "github.com/agrilink/marketplace/modules/orders/domain"
	ordercatalog "github.com/agrilink/marketplace/modules/orders/infrastructure/catalog"
	orderspersistence "github.com/agrilink/marketplace/modules/orders/infrastructure/persistence"
	"github.com/agrilink/marketplace/modules/orders/infrastructure/placement"
	sharedtx "github.com/agrilink/marketplace/modules/shared/transaction"
	"github.com/agrilink/marketplace/modules/shared/types"
	"github.com/agrilink/marketplace/modules/users"
	usersdomain "github.com/agrilink/marketplace/modules/users/domain"
	"github.com/agrilink/marketplace/modules/users/infrastructure/identity"
	userspersistence "github.com/agrilink/marketplace/modules/users/infrastructure/persistence"
)

// app holds the wired modules.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	sessions *authn.Manager
	users    users.Module
	catalog  catalog.Module
	orders   orders.Module

	closers []func()
}

// Close releases external connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	var baasClient *baas.Client
	if cfg.UsesBaaS() {
		baasClient, err = baas.NewClient(baas.Config{
			URL:        cfg.BaaS.URL,
			AnonKey:    cfg.BaaS.AnonKey,
			Timeout:    cfg.BaaS.Timeout,
			MaxRetries: cfg.BaaS.MaxRetries,
		}, logger)
		if err != nil {
			return nil, err
		}
	}

	// Sessions
	var (
		store session.Store
		rdb   *goredis.Client
	)
	switch cfg.Session.Store {
	case "redis":
		rdb, err = session.Dial(ctx, cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		store = session.NewRedisStore(rdb, cfg.Session.TTL)
	default:
		store = session.NewMemoryStore(cfg.Session.TTL)
	}

	// Identity
	secret := cfg.BaaS.JWTSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return nil, err
		}
		logger.Warn("no jwt secret configured, using an ephemeral one")
	}
	verifier, err := baas.NewTokenVerifier(secret)
	if err != nil {
		return nil, err
	}

	var provider usersdomain.IdentityProvider
	switch cfg.Users.Identity {
	case "baas":
		provider = identity.NewBaaSProvider(baasClient)
	default:
		provider = identity.NewMemoryProvider(identity.MemoryConfig{
			Signer: verifier,
			Logger: logger,
		})
	}

	a.sessions = authn.NewManager(authn.Config{
		Store: store,
		Cookie: authn.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			MaxAge: cfg.Session.TTL,
		},
		Verifier:    verifier,
		Refresh:     identity.RefreshFunc(provider),
		RefreshSkew: cfg.Session.RefreshSkew,
		Logger:      logger,
	})

	// Initialize event bus (for inter-module communication)
	registry := eventbus.NewEventHandlerRegistry(logger)
	eventBus := eventbus.New(registry, logger)

	// Initialize repositories
	var profiles usersdomain.ProfileRepository = userspersistence.NewInMemoryRepository()
	if cfg.Users.Store == "baas" {
		profiles = userspersistence.NewBaaSRepository(baasClient)
	}

	var products catalogdomain.ProductRepository
	if cfg.Catalog.Store == "baas" {
		products = catalogpersistence.NewBaaSRepository(baasClient)
	} else {
		products = catalogpersistence.NewInMemoryRepository(catalogpersistence.SampleProducts(cfg.Checkout.Currency)...)
	}

	var (
		ledger   ordersdomain.OrderRepository
		ledgerTx sharedtx.Scope
	)
	switch cfg.Orders.Store {
	case "spanner":
		var client *gospanner.Client
		client, err = spanner.NewClient(ctx, spanner.Config{
			ProjectID:  cfg.Orders.Spanner.ProjectID,
			InstanceID: cfg.Orders.Spanner.InstanceID,
			DatabaseID: cfg.Orders.Spanner.DatabaseID,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		logger.Info("connected to spanner",
			slog.String("database", cfg.Orders.Spanner.DatabaseID),
			slog.Bool("emulator", spanner.UsingEmulator()),
		)
		ledger = orderspersistence.NewSpannerRepository(client)
		ledgerTx = spanner.NewReadWriteTransactionScope(client)
	default:
		ledger = orderspersistence.NewInMemoryRepository()
		ledgerTx = transaction.NewLocalScope()
	}

	policies, err := checkoutPolicies(cfg.Checkout)
	if err != nil {
		return nil, err
	}

	// Initialize modules
	// Each module subscribes to events it cares about internally
	a.users = users.New(users.Config{
		Repository:     profiles,
		Identity:       provider,
		Sessions:       a.sessions,
		TxScope:        transaction.NewLocalScope(),
		EventPublisher: eventBus,
		Logger:         logger,
	})

	a.catalog = catalog.New(catalog.Config{
		Repository: products,
		Logger:     logger,
	})

	a.orders = orders.New(orders.Config{
		Repository:      ledger,
		Catalog:         ordercatalog.NewAdapter(a.catalog),
		Policies:        policies,
		Placer:          placement.NewSimulated(cfg.Checkout.PlacementDelay),
		Currency:        cfg.Checkout.Currency,
		TxScope:         ledgerTx,
		HandlerRegistry: registry,
		EventPublisher:  eventBus,
		EventSubscriber: registry,
		Logger:          logger,
	})

	var claims notificationsdomain.Deduplicator
	if rdb != nil {
		claims = dedup.NewRedis(rdb, dedup.DefaultTTL)
	}
	_ = notifications.New(notifications.Config{
		EventSubscriber: registry,
		Deduplicator:    claims,
		Logger:          logger,
	})

	return a, nil
}

// handler builds the HTTP router and middleware chain.
func (a *app) handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"version":%q}`, version)
	})

	// Each module registers its own routes (same pattern as event subscriptions)
	a.users.RegisterRoutes(mux)
	a.catalog.RegisterRoutes(mux)
	a.orders.RegisterRoutes(mux)

	// Middleware runs outermost first.
	return httpserver.Middleware(mux,
		httpserver.Recovery(a.logger),
		httpserver.RequestID(),
		httpserver.Tracing("agrilink"),
		httpserver.Logging(a.logger),
		httpserver.CORS(a.cfg.Server.AllowedOrigins),
		a.sessions.Middleware,
	)
}

func checkoutPolicies(cfg config.CheckoutConfig) (ordersdomain.StaticPolicies, error) {
	fee, err := types.NewMoney(cfg.DefaultDeliveryFeeCents, cfg.Currency)
	if err != nil {
		return ordersdomain.StaticPolicies{}, fmt.Errorf("checkout default fee: %w", err)
	}
	policies := ordersdomain.StaticPolicies{
		Default: ordersdomain.SellerPolicy{MinimumQuantity: cfg.DefaultMinimumQuantity, DeliveryFee: fee},
		Sellers: make(map[string]ordersdomain.SellerPolicy, len(cfg.Sellers)),
	}
	for seller, p := range cfg.Sellers {
		id, err := types.ParseUserID(seller)
		if err != nil {
			return ordersdomain.StaticPolicies{}, fmt.Errorf("checkout seller %q: %w", seller, err)
		}
		sellerFee, err := types.NewMoney(p.DeliveryFeeCents, cfg.Currency)
		if err != nil {
			return ordersdomain.StaticPolicies{}, fmt.Errorf("checkout seller %q fee: %w", seller, err)
		}
		policies.Sellers[id.String()] = ordersdomain.SellerPolicy{MinimumQuantity: p.MinimumQuantity, DeliveryFee: sellerFee}
	}
	return policies, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
