// Package container wires the application together through a samber/do
// injector. Each *Package function registers the providers for one concern;
// binaries compose the packages they need.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/securelink/internal/analytics"
	analyticsstore "github.com/serroba/securelink/internal/analytics/store"
	"github.com/serroba/securelink/internal/crypto"
	"github.com/serroba/securelink/internal/handlers"
	"github.com/serroba/securelink/internal/health"
	"github.com/serroba/securelink/internal/link"
	"github.com/serroba/securelink/internal/messaging"
	"github.com/serroba/securelink/internal/middleware"
	"github.com/serroba/securelink/internal/ratelimit"
	"github.com/serroba/securelink/internal/store"
	"go.uber.org/zap"
)

// Options is the process configuration, populated by humacli from flags and
// environment variables.
type Options struct {
	Port       int    `default:"8888"           help:"Port to listen on"      short:"p"`
	CodeLength int    `default:"8"              help:"Length of short codes"  short:"c"`
	RedisAddr  string `default:"localhost:6379" help:"Redis server address"   short:"r"`
	RedisDB    int    `default:"0"              help:"Redis database number"  name:"redis-db"`
	RedisPass  string `help:"Redis password"                                  name:"redis-password"`

	// EncryptionKey seals link payloads. Base64, decoding to an AES key.
	// Required: the process refuses to start without it.
	EncryptionKey string `help:"Base64-encoded AES key for sealing link payloads" name:"encryption-key"`

	LinkExpirationHours      int `default:"1" help:"Hours a link stays valid"                name:"link-expiration-hours"`
	LinkFinalExpirationHours int `default:"2" help:"Hours before the store evicts an entry"  name:"link-final-expiration-hours"`

	DatabaseURL string `help:"PostgreSQL URL for the analytics store (consumer only)" name:"database-url"`
	LogFormat   string `default:"console" help:"Log format: console or json"          name:"log-format"`
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the shared Redis client.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{
			Addr:     options.RedisAddr,
			DB:       options.RedisDB,
			Password: options.RedisPass,
		}), nil
	})
}

// PostgresPackage provides the pgx pool for the analytics store.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)

		return pgxpool.New(context.Background(), options.DatabaseURL)
	})
}

// CryptoPackage provides the authenticated encryption codec. A missing or
// malformed key fails resolution, which aborts startup.
func CryptoPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*crypto.Codec, error) {
		options := do.MustInvoke[*Options](i)

		return crypto.NewCodecFromString(options.EncryptionKey)
	})
}

// StorePackage provides the Redis-backed link repository and rate limit
// counters.
func StorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (link.Repository, error) {
		return store.NewRedisStore(do.MustInvoke[*redis.Client](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (ratelimit.Store, error) {
		return store.NewRateLimitRedisStore(do.MustInvoke[*redis.Client](i)), nil
	})
}

// LinkPackage provides the link lifecycle service.
func LinkPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*link.Service, error) {
		options := do.MustInvoke[*Options](i)

		return link.NewService(
			do.MustInvoke[link.Repository](i),
			do.MustInvoke[*crypto.Codec](i),
			link.Options{
				Expiration: hours(options.LinkExpirationHours),
				StoreTTL:   hours(options.LinkFinalExpirationHours),
				CodeLength: options.CodeLength,
			},
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// RateLimitPackage provides the policy limiter and scope resolver.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		return ratelimit.NewPolicyLimiter(
			do.MustInvoke[ratelimit.Store](i),
			ratelimit.DefaultPolicy(),
		), nil
	})

	do.Provide(injector, func(_ *do.Injector) (ratelimit.ScopeResolver, error) {
		return ratelimit.NewOperationScopeResolver(), nil
	})
}

// PublisherGroupPackage provides the Redis stream publisher and the typed
// publish functions for link usage events.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: do.MustInvoke[*redis.Client](i),
		}, watermill.NewStdLogger(false, false))
		if err != nil {
			return nil, fmt.Errorf("create redis stream publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkGeneratedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkGeneratedEvent](
			group.Publisher(), analytics.TopicLinkGenerated), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkResolvedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkResolvedEvent](
			group.Publisher(), analytics.TopicLinkResolved), nil
	})
}

// ConsumerGroupPackage provides the Redis stream subscriber and the consumer
// group persisting link usage events. Events land in PostgreSQL when a
// database is configured, and in the log otherwise.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		options := do.MustInvoke[*Options](i)

		if options.DatabaseURL == "" {
			return analyticsstore.NewNoop(do.MustInvoke[*zap.Logger](i)), nil
		}

		return analyticsstore.NewPostgres(do.MustInvoke[*pgxpool.Pool](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		eventStore := do.MustInvoke[analytics.Store](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        do.MustInvoke[*redis.Client](i),
			ConsumerGroup: "securelink-analytics",
		}, watermill.NewStdLogger(false, false))
		if err != nil {
			return nil, fmt.Errorf("create redis stream subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)

		group.Add(messaging.NewConsumer(subscriber, analytics.TopicLinkGenerated,
			func(ctx context.Context, event *analytics.LinkGeneratedEvent) error {
				return eventStore.SaveLinkGenerated(ctx, event)
			}, logger))

		group.Add(messaging.NewConsumer(subscriber, analytics.TopicLinkResolved,
			func(ctx context.Context, event *analytics.LinkResolvedEvent) error {
				return eventStore.SaveLinkResolved(ctx, event)
			}, logger))

		return group, nil
	})
}

// HTTPPackage provides the chi router and the huma API with all middleware
// and routes registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("Secure Link Service", "1.0.0"))

		generateRequestID, err := nanoid.Standard(12)
		if err != nil {
			return nil, fmt.Errorf("create request id generator: %w", err)
		}

		api.UseMiddleware(
			middleware.RequestMeta(api, generateRequestID),
			middleware.PolicyRateLimiter(api,
				do.MustInvoke[*ratelimit.PolicyLimiter](i),
				do.MustInvoke[ratelimit.ScopeResolver](i),
				logger,
			),
		)

		linkHandler := handlers.NewLinkHandler(
			do.MustInvoke[*link.Service](i),
			do.MustInvoke[messaging.Publish[analytics.LinkGeneratedEvent]](i),
			do.MustInvoke[messaging.Publish[analytics.LinkResolvedEvent]](i),
			logger,
		)
		handlers.RegisterRoutes(api, linkHandler)

		redisClient := do.MustInvoke[*redis.Client](i)
		health.RegisterRoutes(api, health.NewHandler(health.NewRedisChecker(redisClient)))

		return api, nil
	})
}

func hours(n int) time.Duration {
	return time.Duration(n) * time.Hour
}
