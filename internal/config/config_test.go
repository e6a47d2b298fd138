package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "log", cfg.Mail.Transport)
	assert.Equal(t, 15*time.Second, cfg.Mail.SendTimeout)
	assert.False(t, cfg.Orders.RestockOnCancel)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "storefront-notifications", cfg.Kafka.NotificationTopic)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
db:
  driver: mysql
  dsn: "shop:secret@tcp(localhost:3306)/shop?parseTime=true"
mail:
  transport: smtp
  admin_email: owner@example.com
  smtp:
    host: smtp.example.com
    from: "Shop <shop@example.com>"
orders:
  restock_on_cancel: true
`), 0o644))

	t.Setenv("STOREFRONT_SERVER_ADDR", ":9100")
	t.Setenv("STOREFRONT_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("STOREFRONT_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, "smtp.example.com", cfg.Mail.SMTP.Host)
	assert.Equal(t, 587, cfg.Mail.SMTP.Port)
	assert.Equal(t, "owner@example.com", cfg.Mail.AdminEmail)
	assert.True(t, cfg.Orders.RestockOnCancel)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{DB: DBConfig{Driver: "sqlite", DSN: ":memory:"}, Mail: MailConfig{Transport: "log"}}
	require.NoError(t, valid.Validate())

	badDriver := valid
	badDriver.DB.Driver = "postgres"
	assert.Error(t, badDriver.Validate())

	smtpMissingHost := valid
	smtpMissingHost.Mail.Transport = "smtp"
	assert.Error(t, smtpMissingHost.Validate())

	kafkaNoBrokers := valid
	kafkaNoBrokers.Mail.Transport = "kafka"
	assert.Error(t, kafkaNoBrokers.Validate())

	unknown := valid
	unknown.Mail.Transport = "pigeon"
	assert.Error(t, unknown.Validate())
}
