package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCandidates is the fallback order tried after the preferred data
// location. Relative entries resolve against DATA_BASE_URL or DATA_DIR.
var DefaultCandidates = []string{
	"/src/assets/data.json",
	"/assets/data.json",
	"./assets/data.json",
	"./src/assets/data.json",
	"/data.json",
	"./data.json",
}

// DefaultSessionSecret signs session tokens when SESSION_SECRET is unset. It
// is only accepted in development.
const DefaultSessionSecret = "A_VERY_SECURE_SECRET_KEY_REPLACE_LATER"

// Config is everything the API reads from the environment.
type Config struct {
	Port   string
	AppEnv string

	// Product data
	DataBaseURL  string
	DataDir      string
	DataURL      string
	Candidates   []string
	FetchTimeout time.Duration

	// Cart persistence
	CartBackend string
	CartDir     string
	RedisURL    string
	MySQLDSN    string

	// HTTP surface
	SessionSecret string
	CORSOrigins   []string
	CartRateLimit float64

	// Catalog and pricing
	PageSize          int
	DiscountThreshold float64
	DiscountPercent   float64
	ShippingFee       float64
}

// Load reads the .env file when present and then the process environment.
// A missing .env is not an error: the API relies on system variables then.
func Load(files ...string) (*Config, bool) {
	loadedEnv := godotenv.Load(files...) == nil

	cfg := &Config{
		Port:   getenv("PORT", "8080"),
		AppEnv: getenv("APP_ENV", "production"),

		DataBaseURL:  os.Getenv("DATA_BASE_URL"),
		DataDir:      getenv("DATA_DIR", "."),
		DataURL:      getenv("DATA_URL", "/src/assets/data.json"),
		Candidates:   splitList(getenv("DATA_CANDIDATES", strings.Join(DefaultCandidates, ","))),
		FetchTimeout: getDuration("FETCH_TIMEOUT", 10*time.Second),

		CartBackend: strings.ToLower(getenv("CART_BACKEND", "memory")),
		CartDir:     getenv("CART_DIR", "./cart-data"),
		RedisURL:    getenv("REDIS_URL", "redis://localhost:6379"),
		MySQLDSN:    os.Getenv("DB_DSN_PRIMARY"),

		SessionSecret: getenv("SESSION_SECRET", DefaultSessionSecret),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "http://localhost:5173")),
		CartRateLimit: getFloat("CART_RATE_LIMIT", 10),

		PageSize:          getInt("PAGE_SIZE", 12),
		DiscountThreshold: getFloat("DISCOUNT_THRESHOLD", 3000),
		DiscountPercent:   getFloat("DISCOUNT_PERCENT", 10),
		ShippingFee:       getFloat("SHIPPING_FEE", 30),
	}
	return cfg, loadedEnv
}

// Validate rejects settings the API cannot start with.
func (c *Config) Validate() error {
	switch c.CartBackend {
	case "memory", "file", "redis":
	case "mysql":
		if c.MySQLDSN == "" {
			return fmt.Errorf("CART_BACKEND=mysql requires DB_DSN_PRIMARY")
		}
	default:
		return fmt.Errorf("unknown CART_BACKEND %q", c.CartBackend)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.DiscountPercent < 0 || c.DiscountPercent > 100 {
		return fmt.Errorf("DISCOUNT_PERCENT must be 0-100, got %v", c.DiscountPercent)
	}
	if c.SessionSecret == DefaultSessionSecret && !c.IsDevelopment() {
		return fmt.Errorf("SESSION_SECRET must be set when APP_ENV=%s", c.AppEnv)
	}
	return nil
}

// IsDevelopment switches on human-readable logs and gin debug mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getenv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getenv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
