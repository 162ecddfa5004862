package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/Ananth-NQI/dukachat-backend/internal/delivery"
	"github.com/Ananth-NQI/dukachat-backend/internal/location"
	"github.com/Ananth-NQI/dukachat-backend/internal/models"
)

// Gateway kinds
const (
	GatewayCloud  = "cloud"
	GatewayTwilio = "twilio"
	GatewayLog    = "log"
)

// Session backends
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Config holds the process settings (environment) and the business file
type Config struct {
	Port        string
	Environment string
	Gateway     string

	WhatsApp WhatsAppConfig
	Twilio   TwilioConfig
	Database DatabaseConfig
	Session  SessionConfig
	Realtime RealtimeConfig

	// Bearer token for POST /api/payments/proof; empty leaves it open
	ProofAPIToken string

	BusinessPath string
	Business     Business
}

type WhatsAppConfig struct {
	VerifyToken   string
	AppSecret     string
	Token         string
	PhoneNumberID string
	APIBase       string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	// Public URL Twilio posts to; signatures are computed over it
	WebhookURL string
}

type DatabaseConfig struct {
	UseMemory bool
	Driver    string
	DSN       string
	User      string
	Pass      string
	Name      string
	Host      string
	// Cloud SQL instance; connects through the /cloudsql socket when set
	InstanceConnectionName string
}

type SessionConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	TTL           time.Duration
}

type RealtimeConfig struct {
	URL   string
	Token string
}

// Business is the shop's TOML file: catalog, fees, payment methods and locations
type Business struct {
	Shop     Shop                   `toml:"shop"`
	Fees     Fees                   `toml:"fees"`
	Payments []models.PaymentMethod `toml:"payments"`
	Regions  []location.Region      `toml:"regions"`
	Products []Product              `toml:"products"`
}

type Shop struct {
	Name           string           `toml:"name"`
	Pickup         models.Localized `toml:"pickup"`
	OriginLat      *float64         `toml:"origin_lat"`
	OriginLon      *float64         `toml:"origin_lon"`
	OutsideAreaFee int64            `toml:"outside_area_fee"`
	StreetPageSize int              `toml:"street_page_size"`
	GPSMaxRadiusM  float64          `toml:"gps_max_radius_m"`
}

type Fees struct {
	Bands     []delivery.Band  `toml:"bands"`
	Overrides map[string]int64 `toml:"overrides"`
}

type Product struct {
	SKU         string `toml:"sku"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Price       int64  `toml:"price"`
	ParentSKU   string `toml:"parent_sku"`
	Sort        int    `toml:"sort"`
	Active      *bool  `toml:"active"`
}

func defaults() Config {
	return Config{
		Port:        "8080",
		Environment: "development",
		Gateway:     GatewayCloud,
		WhatsApp: WhatsAppConfig{
			APIBase: "https://graph.facebook.com/v21.0",
		},
		Database: DatabaseConfig{
			Driver: "postgres",
			User:   "postgres",
			Name:   "dukachat",
			Host:   "localhost",
		},
		Session: SessionConfig{
			Backend:   SessionMemory,
			RedisAddr: "localhost:6379",
		},
		BusinessPath: "business.toml",
		Business: Business{
			Shop: Shop{
				Name:           "DukaChat",
				OutsideAreaFee: 15000,
				StreetPageSize: 9,
				GPSMaxRadiusM:  delivery.DefaultMaxRadiusM,
			},
		},
	}
}

// Load reads .env (if present), the environment and the business file.
// A missing business file is not an error: the shop runs on defaults
// with an empty catalog and no location index.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - using environment variables")
	}

	cfg := defaults()
	applyEnv(&cfg)

	if err := cfg.loadBusiness(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadBusiness() error {
	if c.BusinessPath == "" {
		return nil
	}
	if _, err := os.Stat(c.BusinessPath); errors.Is(err, os.ErrNotExist) {
		log.Printf("⚠️  Business file %s not found - running without catalog or locations", c.BusinessPath)
		return nil
	}
	if _, err := toml.DecodeFile(c.BusinessPath, &c.Business); err != nil {
		return fmt.Errorf("read business file %s: %w", c.BusinessPath, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.Environment, "ENVIRONMENT")
	setString(&cfg.Gateway, "GATEWAY")

	setString(&cfg.WhatsApp.VerifyToken, "WHATSAPP_VERIFY_TOKEN")
	setString(&cfg.WhatsApp.AppSecret, "WHATSAPP_APP_SECRET")
	setString(&cfg.WhatsApp.Token, "WHATSAPP_TOKEN")
	setString(&cfg.WhatsApp.PhoneNumberID, "WHATSAPP_PHONE_NUMBER_ID")
	setString(&cfg.WhatsApp.APIBase, "WHATSAPP_API_BASE")

	setString(&cfg.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	setString(&cfg.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	setString(&cfg.Twilio.From, "TWILIO_WHATSAPP_FROM")
	setString(&cfg.Twilio.WebhookURL, "TWILIO_WEBHOOK_URL")

	if v := os.Getenv("USE_MEMORY_STORE"); v != "" {
		cfg.Database.UseMemory = v == "true"
	}
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.DSN, "DB_DSN")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Pass, "DB_PASS")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.InstanceConnectionName, "INSTANCE_CONNECTION_NAME")

	setString(&cfg.Session.Backend, "SESSION_BACKEND")
	setString(&cfg.Session.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Session.RedisPassword, "REDIS_PASSWORD")
	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Session.TTL = time.Duration(n) * time.Minute
		} else {
			log.Printf("⚠️  Ignoring invalid SESSION_TTL_MINUTES=%q", v)
		}
	}

	setString(&cfg.Realtime.URL, "REALTIME_URL")
	setString(&cfg.Realtime.Token, "REALTIME_TOKEN")
	setString(&cfg.ProofAPIToken, "PROOF_API_TOKEN")
	setString(&cfg.BusinessPath, "BUSINESS_CONFIG")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate normalizes enumerations and falls back to safe defaults where
// the shop can still run. It fails only on settings that cannot work.
func (c *Config) Validate() error {
	c.Gateway = strings.ToLower(c.Gateway)
	switch c.Gateway {
	case GatewayCloud:
		if c.WhatsApp.Token == "" || c.WhatsApp.PhoneNumberID == "" {
			log.Println("⚠️  WhatsApp Cloud API credentials not found - replies will only be logged")
			c.Gateway = GatewayLog
		}
	case GatewayTwilio:
		if c.Twilio.AccountSID == "" || c.Twilio.AuthToken == "" || c.Twilio.From == "" {
			log.Println("⚠️  Twilio credentials not found - replies will only be logged")
			c.Gateway = GatewayLog
		}
	case GatewayLog:
	default:
		return fmt.Errorf("unsupported GATEWAY %q", c.Gateway)
	}

	c.Session.Backend = strings.ToLower(c.Session.Backend)
	switch c.Session.Backend {
	case SessionMemory:
	case SessionRedis:
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("SESSION_BACKEND=redis needs REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.Session.Backend)
	}

	c.Database.Driver = strings.ToLower(c.Database.Driver)
	if !c.Database.UseMemory && c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.WhatsApp.AppSecret == "" {
		log.Println("⚠️  WHATSAPP_APP_SECRET not set - webhook signatures will not be checked")
	}

	shop := &c.Business.Shop
	if shop.StreetPageSize <= 0 {
		shop.StreetPageSize = 9
	}
	if shop.GPSMaxRadiusM <= 0 {
		shop.GPSMaxRadiusM = delivery.DefaultMaxRadiusM
	}
	if shop.OutsideAreaFee < 0 {
		return fmt.Errorf("shop.outside_area_fee must not be negative")
	}

	if _, err := delivery.NewFeeTable(c.Business.Fees.Bands, c.Business.Fees.Overrides); err != nil {
		log.Printf("⚠️  %v - using default fee bands", err)
		c.Business.Fees = Fees{}
	}
	return nil
}

// FeeTable builds the delivery fee table; no bands means the defaults
func (c *Config) FeeTable() (*delivery.FeeTable, error) {
	bands := c.Business.Fees.Bands
	if len(bands) == 0 {
		bands = delivery.DefaultBands()
	}
	return delivery.NewFeeTable(bands, c.Business.Fees.Overrides)
}

// LocationIndex builds the region hierarchy from the business file
func (c *Config) LocationIndex() *location.Index {
	return location.NewIndex(c.Business.Regions)
}

// ResolverOptions returns the shop origin and GPS radius settings
func (c *Config) ResolverOptions() []delivery.Option {
	shop := c.Business.Shop
	opts := []delivery.Option{delivery.WithMaxRadius(shop.GPSMaxRadiusM)}
	if shop.OriginLat != nil && shop.OriginLon != nil {
		opts = append(opts, delivery.WithOrigin(*shop.OriginLat, *shop.OriginLon))
	}
	return opts
}

// Products converts the configured catalog; entries without an explicit
// active flag are active.
func (c *Config) Products() []*models.Product {
	out := make([]*models.Product, 0, len(c.Business.Products))
	for _, p := range c.Business.Products {
		active := p.Active == nil || *p.Active
		out = append(out, &models.Product{
			SKU:         p.SKU,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			ParentSKU:   p.ParentSKU,
			SortOrder:   p.Sort,
			Active:      active,
		})
	}
	return out
}

// DatabaseDSN returns DB_DSN, or builds a postgres DSN from the DB_* parts
func (c *Config) DatabaseDSN() string {
	db := c.Database
	if db.DSN != "" || db.Driver != "postgres" {
		return db.DSN
	}
	if db.InstanceConnectionName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable",
			db.InstanceConnectionName, db.User, db.Pass, db.Name)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=5432 sslmode=disable",
		db.Host, db.User, db.Pass, db.Name)
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Database.InstanceConnectionName != ""
}
