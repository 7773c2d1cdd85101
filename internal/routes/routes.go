package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cpadesk/cpadesk/internal/client"
	"github.com/cpadesk/cpadesk/internal/config"
	"github.com/cpadesk/cpadesk/internal/cross"
	"github.com/cpadesk/cpadesk/internal/ledger"
	"github.com/cpadesk/cpadesk/internal/middleware"
	"github.com/cpadesk/cpadesk/internal/notification"
	"github.com/cpadesk/cpadesk/internal/task"
	"github.com/cpadesk/cpadesk/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Stores
	var (
		walletRepo  wallet.Repository
		ledgerStore ledger.Store
		clientRepo  client.Repository
		crossRepo   cross.Repository
		taskRepo    task.Repository
	)
	if d.DB != nil {
		walletRepo = wallet.NewPostgresRepository(d.DB)
		ledgerStore = ledger.NewPostgresStore(d.DB)
		clientRepo = client.NewPostgresRepository(d.DB)
		crossRepo = cross.NewPostgresRepository(d.DB)
		taskRepo = task.NewPostgresRepository(d.DB)
	} else {
		walletRepo = wallet.NewMemoryRepository()
		ledgerStore = ledger.NewInMemoryStore()
		clientRepo = client.NewMemoryRepository()
		crossRepo = cross.NewMemoryRepository()
		taskRepo = task.NewMemoryRepository()
	}

	// Services and handlers
	notifier := notification.NewLoggerNotifier(d.Logger)
	walletSvc := wallet.NewService(walletRepo)
	ledgerSvc := ledger.NewService(ledgerStore, walletSvc, notifier, d.Logger, d.Cfg.AllowNegativeBalance)
	clientSvc := client.NewService(clientRepo, walletSvc)
	crossSvc := cross.NewService(crossRepo, clientSvc, notifier)
	taskSvc := task.NewService(taskRepo, notifier)

	walletHandler := wallet.NewHandler(walletSvc)
	ledgerHandler := ledger.NewHandler(ledgerSvc)
	clientHandler := client.NewHandler(clientSvc)
	crossHandler := cross.NewHandler(crossSvc)
	taskHandler := task.NewHandler(taskSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterWalletRoutes(api, walletHandler, ledgerHandler)
	RegisterLedgerRoutes(api, ledgerHandler)
	RegisterClientRoutes(api, clientHandler)
	RegisterCrossRoutes(api, crossHandler)
	RegisterTaskRoutes(api, taskHandler)

	return nil
}
