package shared

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string   `envconfig:"APP_ENV" default:"prod"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	HTTPAddr    string   `envconfig:"HTTP_ADDR" default:":8080"`
	MetricsAddr string   `envconfig:"METRICS_ADDR"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	PMSBase     string        `envconfig:"PMS_BASE_URL" default:"http://localhost:5000/api"`
	PMSRPS      int           `envconfig:"PMS_RPS" default:"20"`
	PMSTimeout  time.Duration `envconfig:"PMS_TIMEOUT" default:"20s"`
	// service account of the cache warmer; the API only forwards caller tokens
	PMSUser     string        `envconfig:"PMS_USER"`
	PMSPassword string        `envconfig:"PMS_PASSWORD"`
	LoginPath   string        `envconfig:"LOGIN_PATH" default:"/login"`

	RedisAddr string `envconfig:"REDIS_ADDR"`
	RedisPass string `envconfig:"REDIS_PASSWORD"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`
	MySQLDSN  string `envconfig:"MYSQL_DSN"`

	CacheTTL       time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"5m"`
	SearchDebounce time.Duration `envconfig:"SEARCH_DEBOUNCE" default:"300ms"`

	WarmHotelIDs []string `envconfig:"WARM_HOTEL_IDS"`
	WarmWorkers  int      `envconfig:"WARM_WORKERS" default:"4"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE"`
}

// Load reads the environment, after merging an optional .env file.
// Variables already set in the process win over .env.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	c.PMSBase = strings.TrimRight(c.PMSBase, "/")
	if c.PMSUser == "" {
		log.Warn().Msg("PMS_USER is empty; the cache warmer cannot sign in")
	}
	if c.WarmWorkers <= 0 {
		c.WarmWorkers = 1
	}
	return c
}
