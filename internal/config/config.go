package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Approval ApprovalConfig `mapstructure:"approval"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// ApprovalConfig holds workflow engine configuration. Routing is the fixed
// role sequence per request type, kept as plain data so the rules stay
// inspectable and testable away from persistence.
type ApprovalConfig struct {
	TokenTTL    time.Duration       `mapstructure:"token_ttl"`
	LinkBaseURL string              `mapstructure:"link_base_url"`
	Routing     map[string][]string `mapstructure:"routing"`
}

// RoleSequence returns the configured approver role chain for a request type
func (c ApprovalConfig) RoleSequence(t entity.RequestType) []string {
	return c.Routing[string(t)]
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/hr.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("approval.token_ttl", 72*time.Hour)
	viper.SetDefault("approval.link_base_url", "http://localhost:8080")
	viper.SetDefault("approval.routing", map[string][]string{
		string(entity.RequestTypeTimeOff):      {entity.RoleManager, entity.RoleHR},
		string(entity.RequestTypeBusinessTrip): {entity.RoleManager, entity.RoleHR},
		string(entity.RequestTypeLoan):         {entity.RoleHR},
	})

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

func bindEnvVars() {
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("approval.link_base_url", "APPROVAL_LINK_BASE_URL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Approval.TokenTTL <= 0 {
		return fmt.Errorf("approval.token_ttl must be positive")
	}
	if c.Approval.LinkBaseURL == "" {
		return fmt.Errorf("approval.link_base_url is required")
	}
	if len(c.Approval.Routing) == 0 {
		return fmt.Errorf("approval.routing is required")
	}
	for typ, roles := range c.Approval.Routing {
		if !entity.RequestType(typ).IsValid() {
			return fmt.Errorf("approval.routing: unknown request type %q", typ)
		}
		if len(roles) == 0 {
			return fmt.Errorf("approval.routing: empty role sequence for %q", typ)
		}
		for _, role := range roles {
			if role != entity.RoleManager && role != entity.RoleHR {
				return fmt.Errorf("approval.routing: unknown role %q for %q", role, typ)
			}
		}
	}
	return nil
}
