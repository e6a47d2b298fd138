package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Mail    MailConfig    `mapstructure:"mail"`
	Orders  OrdersConfig  `mapstructure:"orders"`
	Uploads UploadsConfig `mapstructure:"uploads"`
	Store   StoreConfig   `mapstructure:"store"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	PublicURL       string        `mapstructure:"public_url"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	Retries      int    `mapstructure:"retries"`
}

// RedisConfig leaves Redis out entirely when Addr is empty.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers           []string `mapstructure:"brokers"`
	NotificationTopic string   `mapstructure:"notification_topic"`
	GroupID           string   `mapstructure:"group_id"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// MailConfig picks how notifications leave the process: "log", "smtp", or
// "kafka" (published for the notifier command to deliver over SMTP).
type MailConfig struct {
	Transport   string        `mapstructure:"transport"`
	AdminEmail  string        `mapstructure:"admin_email"`
	Workers     int           `mapstructure:"workers"`
	QueueSize   int           `mapstructure:"queue_size"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
	SMTP        SMTPConfig    `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type OrdersConfig struct {
	RestockOnCancel bool `mapstructure:"restock_on_cancel"`
}

type UploadsConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxWidth int    `mapstructure:"max_width"`
}

type StoreConfig struct {
	Name string `mapstructure:"name"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.rate_burst", 30)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:storefront.db")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.retries", 10)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.notification_topic", "storefront-notifications")
	v.SetDefault("kafka.group_id", "storefront-notifier")

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("mail.transport", "log")
	v.SetDefault("mail.admin_email", "")
	v.SetDefault("mail.workers", 2)
	v.SetDefault("mail.queue_size", 100)
	v.SetDefault("mail.send_timeout", 15*time.Second)
	v.SetDefault("mail.smtp.host", "")
	v.SetDefault("mail.smtp.port", 587)
	v.SetDefault("mail.smtp.username", "")
	v.SetDefault("mail.smtp.password", "")
	v.SetDefault("mail.smtp.from", "")

	v.SetDefault("orders.restock_on_cancel", false)

	v.SetDefault("uploads.dir", "./uploads")
	v.SetDefault("uploads.max_width", 1200)

	v.SetDefault("store.name", "Storefront")
}

// Load reads defaults, then the optional config file, then .env and
// STOREFRONT_* environment variables. An empty path searches ./config.yaml
// and /etc/storefront/config.yaml.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./")
		v.AddConfigPath("/etc/storefront/")
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("db.driver must be mysql or sqlite, got %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("db.dsn is required")
	}

	switch c.Mail.Transport {
	case "log":
	case "smtp":
		if c.Mail.SMTP.Host == "" || c.Mail.SMTP.From == "" {
			return errors.New("mail.smtp.host and mail.smtp.from are required for the smtp transport")
		}
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka.brokers is required for the kafka transport")
		}
	default:
		return fmt.Errorf("mail.transport must be log, smtp or kafka, got %q", c.Mail.Transport)
	}
	return nil
}
