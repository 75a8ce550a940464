package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Ledger storage backends.
const (
	BackendFile  = "file"
	BackendMinio = "minio"
	BackendRedis = "redis"
)

// Roster sources.
const (
	RosterSourceFile    = "file"
	RosterSourceStorage = "storage"
)

// Config contains bot configuration parameters.
type Config struct {
	LogLevel  int     `env:"LOG_LEVEL" envDefault:"0"`
	LogFormat string  `env:"LOG_FORMAT" envDefault:"text"`
	Discord   Discord `envPrefix:"DISCORD_"`
	Roster    Roster  `envPrefix:"ROSTER_"`
	Ledger    Ledger  `envPrefix:"LEDGER_"`
	Session   Session `envPrefix:"SESSION_"`
	GRPC      GRPC    `envPrefix:"GRPC_"`
	HTTP      HTTP    `envPrefix:"HTTP_"`
	Storage   Storage `envPrefix:"MINIO_"`
	Redis     Redis   `envPrefix:"REDIS_"`
}

// Discord contains gateway credentials and the trigger surface.
type Discord struct {
	Token          string        `env:"TOKEN,required,notEmpty"`
	VerifyChannel  string        `env:"VERIFY_CHANNEL" envDefault:"verify"`
	StartKeywords  []string      `env:"START_KEYWORDS" envDefault:"verify,!verify" envSeparator:","`
	CancelKeyword  string        `env:"CANCEL_KEYWORD" envDefault:"cancel"`
	UnverifiedRole string        `env:"UNVERIFIED_ROLE" envDefault:"Unverified"`
	MemberRole     string        `env:"MEMBER_ROLE" envDefault:"Members"`
	ActionTimeout  time.Duration `env:"ACTION_TIMEOUT" envDefault:"10s"`
}

// Roster contains the roster source parameters.
type Roster struct {
	Source string `env:"SOURCE" envDefault:"file"`
	Path   string `env:"PATH" envDefault:"student.csv"`
	Key    string `env:"KEY" envDefault:"student.csv"`
}

// Ledger contains verified ledger persistence parameters.
type Ledger struct {
	Backend      string        `env:"BACKEND" envDefault:"file"`
	Dir          string        `env:"DIR" envDefault:"."`
	Key          string        `env:"KEY" envDefault:"verifiedUsers.json"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
}

// Session contains verification session timing.
type Session struct {
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"60s"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5s"`
}

// GRPC contains ops gRPC server parameters.
type GRPC struct {
	Port               string `env:"PORT" envDefault:"50051"`
	EnableHTTPS        bool   `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
}

// HTTP contains ops HTTP server parameters.
type HTTP struct {
	Addr string `env:"ADDR" envDefault:":9090"`
}

// Storage contains object storage parameters.
type Storage struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"gatekeeper-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"gatekeeper-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"gatekeeper"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// Redis contains redis connection parameters.
type Redis struct {
	URL         string        `env:"URL" envDefault:"redis://localhost:6379/0"`
	DialTimeout time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Ledger.Backend {
	case BackendFile, BackendMinio, BackendRedis:
	default:
		return fmt.Errorf("unknown ledger backend %q", c.Ledger.Backend)
	}

	switch c.Roster.Source {
	case RosterSourceFile, RosterSourceStorage:
	default:
		return fmt.Errorf("unknown roster source %q", c.Roster.Source)
	}

	if c.Session.Timeout <= 0 {
		return fmt.Errorf("session timeout must be positive")
	}
	if c.Ledger.WriteTimeout <= 0 {
		return fmt.Errorf("ledger write timeout must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session sweep interval must be positive")
	}
	if len(c.Discord.StartKeywords) == 0 {
		return fmt.Errorf("at least one start keyword is required")
	}

	return nil
}
