package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	redisstorage "github.com/gofiber/storage/redis"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/SlotSync/app/controllers"
	"github.com/ManuelReschke/SlotSync/app/repository"
	"github.com/ManuelReschke/SlotSync/internal/pkg/cache"
	"github.com/ManuelReschke/SlotSync/internal/pkg/calendarsync"
	"github.com/ManuelReschke/SlotSync/internal/pkg/database"
	"github.com/ManuelReschke/SlotSync/internal/pkg/env"
	"github.com/ManuelReschke/SlotSync/internal/pkg/ghl"
	"github.com/ManuelReschke/SlotSync/internal/pkg/jobqueue"
	"github.com/ManuelReschke/SlotSync/internal/pkg/middleware"
	"github.com/ManuelReschke/SlotSync/internal/pkg/router"
	"github.com/ManuelReschke/SlotSync/internal/pkg/security"
	"github.com/ManuelReschke/SlotSync/internal/pkg/token"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, queue := NewApplication()
	queue.Start()

	go func() {
		<-ctx.Done()
		log.Info("[SlotSync] shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorf("[SlotSync] shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
	queue.Stop()
}

func NewApplication() (*fiber.App, *jobqueue.Queue) {
	env.SetupEnvFile()
	db, err := database.SetupDatabase()
	if err != nil {
		log.Fatalf("[SlotSync] %v", err)
	}
	rdb := cache.SetupCache()

	cipher := security.NewTokenCipher(env.GetEnv("TOKEN_ENCRYPTION_KEY", ""))
	if cipher == nil {
		log.Warn("[SlotSync] TOKEN_ENCRYPTION_KEY is not set, tokens are stored in plaintext")
	}
	repos := repository.NewFactory(db, cipher, rdb).GetRepositories()

	client := ghl.NewClientFromEnv()
	oauth := ghl.NewOAuthFromEnv()

	tokens := token.NewManager(repos.Credentials, token.NewOAuthRefresher(repos.Credentials, oauth))
	authorizer := token.NewAuthorizer(oauth, repos.Credentials, client, repos.AccountDetails)

	syncService := calendarsync.NewService(tokens, client, repos.AccountDetails, repos.SyncStores(),
		calendarsync.WithConcurrency(env.GetIntEnv("SYNC_CONCURRENCY", 4)))
	queue := jobqueue.NewQueue(rdb, syncService, env.GetIntEnv("JOB_QUEUE_WORKERS", jobqueue.DefaultWorkers))

	app := fiber.New(fiber.Config{
		AppName:   "SlotSync",
		BodyLimit: 16 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	origin := env.GetEnv("CORS_ORIGIN", "*")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origin,
		AllowCredentials: origin != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-API-Key",
	}))

	// fiber metrics
	if user := env.GetEnv("METRICS_USER", ""); user != "" {
		app.Get("/metrics", basicauth.New(basicauth.Config{
			Users: map[string]string{user: env.GetEnv("METRICS_PASSWORD", "")},
		}), monitor.New())
	}

	// SWAGGER / OPENAPI
	if spec := findFile("public/docs/v1/openapi.yml"); spec != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: spec,
			Path:     "v1",
		}))
	}

	// ROUTER
	router.InstallRouter(app, router.Dependencies{
		Calendars:      controllers.NewCalendarController(tokens, client, syncService, queue),
		Passthrough:    controllers.NewPassthroughController(tokens, client),
		OAuth:          controllers.NewOAuthController(oauth, authorizer),
		Jobs:           controllers.NewJobController(queue),
		APIKey:         middleware.APIKeyConfig{Key: env.GetEnv("API_KEY", ""), AllowEmpty: env.IsDev()},
		LimiterStorage: limiterStorage(rdb),
		LimiterMax:     env.GetIntEnv("API_RATE_LIMIT", 60),
		Health: map[string]router.HealthCheck{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"cache": func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		},
	})

	return app, queue
}

// limiterStorage shares the cache server with the rate limiter on its own database.
func limiterStorage(rdb *redis.Client) fiber.Storage {
	opts := rdb.Options()
	host, portStr, err := net.SplitHostPort(opts.Addr)
	if err != nil {
		log.Warnf("[SlotSync] rate limiter falls back to memory: %v", err)
		return nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Warnf("[SlotSync] rate limiter falls back to memory: %v", err)
		return nil
	}

	return redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Password: opts.Password,
		Database: env.GetIntEnv("LIMITER_CACHE_DB", 2),
		Reset:    false,
	})
}

// findFile resolves rel against the working directory and the repository root.
func findFile(rel string) string {
	for _, base := range []string{"./", "../../", "../../../"} {
		if _, err := os.Stat(base + rel); err == nil {
			return base + rel
		}
	}
	return ""
}
