package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
)

type Config struct {
	Port             int
	StoreType        string
	DatabaseURL      string
	MongoDatabase    string
	SessionTokenSalt string
	AMQPURL          string
	NotifyExchange   string
}

// Store type constants
const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("class-reps", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.StoreType, "s", "", "Store type (memory, mongo, postgres or sqlite)")
	fs.StringVar(&cfg.MongoDatabase, "mongo-db", "", "Mongo database name")

	// Secrets and broker (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionTokenSalt, "session-salt", "", "Session token salt (prefer env)")
	fs.StringVar(&cfg.AMQPURL, "amqp-url", "", "AMQP broker URL for notifications (prefer env)")
	fs.StringVar(&cfg.NotifyExchange, "notify-exchange", "", "AMQP exchange for notifications")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 4316 // default
		}
	}

	if cfg.StoreType == "" {
		cfg.StoreType = os.Getenv("STORE_TYPE")
		if cfg.StoreType == "" {
			cfg.StoreType = StoreSQLite
		}
	}
	switch cfg.StoreType {
	case StoreMemory, StoreMongo, StorePostgres, StoreSQLite:
	default:
		return Config{}, errors.New("store type must be one of: memory, mongo, postgres, sqlite")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" && cfg.StoreType != StoreMemory {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = os.Getenv("MONGO_DATABASE")
		if cfg.MongoDatabase == "" {
			cfg.MongoDatabase = "classreps"
		}
	}

	// Secrets - MUST be provided
	if cfg.SessionTokenSalt == "" {
		cfg.SessionTokenSalt = os.Getenv("SESSION_TOKEN_SALT")
	}
	if cfg.SessionTokenSalt == "" {
		return Config{}, errors.New("SESSION_TOKEN_SALT required")
	}

	// Notifications are optional; without a broker the server runs with a
	// no-op notifier.
	if cfg.AMQPURL == "" {
		cfg.AMQPURL = os.Getenv("AMQP_URL")
	}
	if cfg.NotifyExchange == "" {
		cfg.NotifyExchange = os.Getenv("NOTIFY_EXCHANGE")
		if cfg.NotifyExchange == "" {
			cfg.NotifyExchange = "notifications"
		}
	}

	return cfg, nil
}
