// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every flag name to form its environment variable.
const EnvPrefix = "YANIV"

// Config is the full server configuration.
type Config struct {
	Bind           string
	Port           int
	LogLevel       string
	LogJSON        bool
	AllowedOrigins []string
	StrictPhases   bool

	RedisAddr    string
	RedisDB      int
	JournalQueue string

	DatabaseURL string

	WriteTimeout time.Duration
	SendBuffer   int

	HistorianBatch int
	HistorianFlush time.Duration
}

// RegisterFlags declares every option on fs with its default.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&c.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: YANIV_BIND)")
	fs.IntVarP(&c.Port, "port", "p", 8080, "port to listen on (env: YANIV_PORT)")
	fs.StringVar(&c.LogLevel, "log-level", "info", "log level: debug, info, warn, error (env: YANIV_LOG_LEVEL)")
	fs.BoolVar(&c.LogJSON, "log-json", false, "emit logs as JSON (env: YANIV_LOG_JSON)")
	fs.StringSliceVar(&c.AllowedOrigins, "allowed-origins", nil, "extra websocket origin patterns to accept (env: YANIV_ALLOWED_ORIGINS)")
	fs.BoolVar(&c.StrictPhases, "strict-phases", true, "require discard before draw and declare only at turn start (env: YANIV_STRICT_PHASES)")
	fs.StringVar(&c.RedisAddr, "redis-addr", "", "Redis address for the action journal; empty disables it (env: YANIV_REDIS_ADDR)")
	fs.IntVar(&c.RedisDB, "redis-db", 0, "Redis database index (env: YANIV_REDIS_DB)")
	fs.StringVar(&c.JournalQueue, "journal-queue", "yaniv_actions", "Redis list that action records are pushed to (env: YANIV_JOURNAL_QUEUE)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL URL for round history; empty disables it (env: YANIV_DATABASE_URL)")
	fs.DurationVar(&c.WriteTimeout, "write-timeout", 5*time.Second, "timeout for a single websocket write (env: YANIV_WRITE_TIMEOUT)")
	fs.IntVar(&c.SendBuffer, "send-buffer", 32, "outbound messages queued per connection (env: YANIV_SEND_BUFFER)")
}

// RegisterHistorianFlags declares the options only the historian worker reads.
func (c *Config) RegisterHistorianFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.HistorianBatch, "batch-size", 20, "records written per database transaction (env: YANIV_BATCH_SIZE)")
	fs.DurationVar(&c.HistorianFlush, "flush-interval", 500*time.Millisecond, "longest a partial batch waits before it is written (env: YANIV_FLUSH_INTERVAL)")
}

// BindEnv lets YANIV_* environment variables fill any flag not set on the
// command line.
func BindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.SendBuffer < 1 {
		return fmt.Errorf("send-buffer must be positive: %d", c.SendBuffer)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write-timeout must be positive: %s", c.WriteTimeout)
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("redis-db must not be negative: %d", c.RedisDB)
	}
	if c.RedisAddr != "" && c.JournalQueue == "" {
		return errors.New("journal-queue is required when redis-addr is set")
	}
	return nil
}

// ValidateHistorian checks the options the historian worker needs.
func (c *Config) ValidateHistorian() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.RedisAddr == "" {
		return errors.New("historian requires redis-addr")
	}
	if c.DatabaseURL == "" {
		return errors.New("historian requires database-url")
	}
	if c.HistorianBatch < 1 {
		return fmt.Errorf("batch-size must be positive: %d", c.HistorianBatch)
	}
	if c.HistorianFlush <= 0 {
		return fmt.Errorf("flush-interval must be positive: %s", c.HistorianFlush)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// NewLogger builds the process logger from the configured level and format.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	if c.LogJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
