package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/Ananth-NQI/dukachat-backend/database"
	"github.com/Ananth-NQI/dukachat-backend/internal/config"
	"github.com/Ananth-NQI/dukachat-backend/internal/delivery"
	"github.com/Ananth-NQI/dukachat-backend/internal/handlers"
	"github.com/Ananth-NQI/dukachat-backend/internal/jobs"
	"github.com/Ananth-NQI/dukachat-backend/internal/routes"
	"github.com/Ananth-NQI/dukachat-backend/internal/services"
	"github.com/Ananth-NQI/dukachat-backend/internal/session"
	"github.com/Ananth-NQI/dukachat-backend/internal/storage"
	"github.com/Ananth-NQI/dukachat-backend/internal/whatsapp"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	// Initialize storage
	var store storage.Store
	var ping func() error
	storageType := "In-Memory (Testing)"

	if cfg.Database.UseMemory {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Printf("📦 Connecting to %s database...", cfg.Database.Driver)
		if err := database.Connect(cfg.Database.Driver, cfg.DatabaseDSN()); err != nil {
			log.Fatal("Failed to connect to database:", err)
		}

		dbStore := storage.NewDatabaseStore(database.DB)
		log.Println("🔄 Running database migrations...")
		if err := dbStore.Migrate(); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = dbStore
		ping = func() error { return database.Ping(database.DB) }
		storageType = cfg.Database.Driver + " database"
	}

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.UpsertProducts(seedCtx, cfg.Products()); err != nil {
		log.Fatal("Failed to load catalog:", err)
	}
	cancelSeed()
	log.Printf("✅ Catalog loaded: %d products", len(cfg.Business.Products))

	// Session store
	var sessionStore session.Store
	var redisClient *redis.Client
	if cfg.Session.Backend == config.SessionRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("⚠️  Redis not reachable at %s: %v", cfg.Session.RedisAddr, err)
		}
		cancel()
		sessionStore = session.NewRedisStore(redisClient, cfg.Session.TTL)
	} else {
		sessionStore = session.NewMemoryStore()
	}
	sessions := session.NewManager(sessionStore)
	log.Printf("✅ Sessions: %s", sessions.Backend())

	// Outbound gateway
	var gateway services.Gateway
	switch cfg.Gateway {
	case config.GatewayCloud:
		gateway = whatsapp.NewClient(cfg.WhatsApp.APIBase, cfg.WhatsApp.Token, cfg.WhatsApp.PhoneNumberID)
	case config.GatewayTwilio:
		tw, err := services.NewTwilioGateway(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From)
		if err != nil {
			log.Fatal("Failed to initialize Twilio gateway:", err)
		}
		gateway = tw
	default:
		gateway = services.LogGateway{}
	}
	breaker := services.NewBreakerGateway("whatsapp-"+cfg.Gateway, gateway)
	log.Printf("✅ Gateway initialized: %s", cfg.Gateway)

	// Operator console feed
	var notifier services.Notifier = services.NopNotifier{}
	var wsNotifier *services.WSNotifier
	if cfg.Realtime.URL != "" {
		wsNotifier = services.NewWSNotifier(cfg.Realtime.URL, cfg.Realtime.Token)
		notifier = wsNotifier
		log.Printf("✅ Realtime hub: %s", cfg.Realtime.URL)
	}

	// Flow engine
	fees, err := cfg.FeeTable()
	if err != nil {
		log.Fatal("Invalid fee table:", err)
	}
	resolver := delivery.NewResolver(cfg.LocationIndex(), fees, cfg.ResolverOptions()...)
	engine := services.NewEngine(store, resolver, services.Settings{
		ShopName:           cfg.Business.Shop.Name,
		PickupInstructions: cfg.Business.Shop.Pickup,
		OutsideAreaFee:     cfg.Business.Shop.OutsideAreaFee,
		StreetPageSize:     cfg.Business.Shop.StreetPageSize,
		Payments:           cfg.Business.Payments,
	})
	messages := services.NewMessageLog(store, notifier)
	dispatcher := services.NewDispatcher(sessions, engine, breaker, messages)

	// Scheduled housekeeping
	maintenance := jobs.NewMaintenanceJob(sessions, dispatcher, cfg.Session.TTL)
	maintenance.Start()

	log.Println("✅ All services initialized and scheduled jobs started")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName:   "DukaChat Backend v" + version,
		Immutable: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, routes.Handlers{
		WhatsApp: handlers.NewWhatsAppHandler(cfg.WhatsApp.VerifyToken, dispatcher),
		Payment:  handlers.NewPaymentHandler(dispatcher),
		Orders:   handlers.NewOrderHandler(store),
		Health: &handlers.HealthHandler{
			Version:  version,
			Storage:  storageType,
			Sessions: sessions.Backend(),
			Gateway:  cfg.Gateway,
			Ping:     ping,
			Breaker:  breaker,
		},
	}, routes.Options{
		AppSecret:     cfg.WhatsApp.AppSecret,
		ProofAPIToken: cfg.ProofAPIToken,
		Development:   !cfg.IsProduction(),

		TwilioInbound:    cfg.Gateway == config.GatewayTwilio,
		TwilioAuthToken:  cfg.Twilio.AuthToken,
		TwilioWebhookURL: cfg.Twilio.WebhookURL,
	})

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping maintenance jobs...")
		maintenance.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
		if wsNotifier != nil {
			_ = wsNotifier.Close()
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if database.DB != nil {
			_ = database.Close(database.DB)
		}
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 DukaChat Backend starting on port %s", cfg.Port)
	log.Printf("🏪 Shop: %s", cfg.Business.Shop.Name)
	log.Printf("📊 Storage: %s", storageType)
	log.Printf("💬 Sessions: %s", sessions.Backend())
	log.Printf("🌍 Environment: %s", cfg.Environment)
	log.Printf("📱 WhatsApp: %s", cfg.Gateway)
	log.Println("========================================")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
