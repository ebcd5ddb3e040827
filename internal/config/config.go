package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup. Values come from the
// environment, optionally seeded from a .env file.
type Config struct {
	Address string `env:"ADDRESS" envDefault:":8080"`

	MongoURI      string `env:"MONGODB_URI,required"`
	MongoDatabase string `env:"MONGODB_DB" envDefault:"cinematch"`

	JwtSecret string `env:"JWT_SECRET,required"`

	TmdbBaseURL     string        `env:"TMDB_BASE_URL" envDefault:"https://api.themoviedb.org/3"`
	TmdbApiToken    string        `env:"TMDB_API_TOKEN"`
	TmdbTimeout     time.Duration `env:"TMDB_TIMEOUT" envDefault:"10s"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"30m"`

	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"`

	AwardsTimezone string `env:"AWARDS_TIMEZONE" envDefault:"America/Los_Angeles"`
	AwardsLockHour int    `env:"AWARDS_LOCK_HOUR" envDefault:"18"`

	// Votes after a connection deadline are accepted unless this is set.
	EnforceVoteDeadline bool `env:"ENFORCE_VOTE_DEADLINE" envDefault:"false"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"LOG_FILE"`
}

// Load reads the given env files (".env" when none are passed) and parses the
// environment into a Config. Missing env files are not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.AwardsLockHour < 0 || cfg.AwardsLockHour > 23 {
		return Config{}, fmt.Errorf("AWARDS_LOCK_HOUR must be between 0 and 23, got %d", cfg.AwardsLockHour)
	}
	if _, err := time.LoadLocation(cfg.AwardsTimezone); err != nil {
		return Config{}, fmt.Errorf("invalid AWARDS_TIMEZONE %q: %w", cfg.AwardsTimezone, err)
	}

	return cfg, nil
}
