package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront-service/internal/auth"
	"storefront-service/internal/config"
	"storefront-service/internal/database"
	"storefront-service/internal/entity"
	"storefront-service/internal/notify"
	"storefront-service/internal/repository"
)

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := repository.NewStore(db)

	n, err := seedCatalog(ctx, store, false)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = seedCatalog(ctx, store, false)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "second run must not duplicate the catalog")

	products, err := store.Products.GetProducts(ctx, entity.ProductFilter{Sort: entity.SortNewest})
	require.NoError(t, err)
	require.Len(t, products, 5)
	assert.Equal(t, "Art Print Set", products[0].Name)

	paintings, err := store.Products.GetProducts(ctx, entity.ProductFilter{Category: "Original Paintings"})
	require.NoError(t, err)
	assert.Len(t, paintings, 2)
}

func TestNewSender(t *testing.T) {
	cfg := &config.Config{Mail: config.MailConfig{Transport: "log"}}
	sender, closeFn, err := newSender(cfg)
	require.NoError(t, err)
	assert.IsType(t, notify.LogSender{}, sender)
	assert.NoError(t, closeFn())

	cfg.Mail.Transport = "smtp"
	cfg.Mail.SMTP = config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "shop@example.com"}
	sender, _, err = newSender(cfg)
	require.NoError(t, err)
	assert.IsType(t, &notify.SMTPSender{}, sender)

	cfg.Mail.Transport = "kafka"
	cfg.Kafka = config.KafkaConfig{Brokers: []string{"localhost:9092"}, NotificationTopic: "storefront-notifications"}
	sender, closeFn, err = newSender(cfg)
	require.NoError(t, err)
	assert.IsType(t, &notify.KafkaSender{}, sender)
	assert.NoError(t, closeFn())

	cfg.Mail.Transport = "fax"
	_, _, err = newSender(cfg)
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STOREFRONT_AUTH_JWT_SECRET", "cli-secret")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token", "--user", "user_42", "--role", "admin"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	raw := strings.TrimSpace(out.String())
	claims := &auth.JwtCustomClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("cli-secret"), nil
	})
	require.NoError(t, err)
	id := claims.Identity()
	assert.Equal(t, "user_42", id.UserID)
	assert.True(t, id.IsAdmin())
}
