package cmd

import (
	"context"
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"net/http"
	"os"
	"os/signal"
	"storefront-service/internal/api"
	"storefront-service/internal/blob"
	"storefront-service/internal/cache"
	"storefront-service/internal/cart"
	"storefront-service/internal/config"
	"storefront-service/internal/database"
	"storefront-service/internal/notify"
	"storefront-service/internal/repository"
	"storefront-service/internal/service"
	"strings"
	"syscall"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront HTTP server",
	Long: `Start the storefront HTTP server. Migrations are applied on start.

Carts, product reads and checkout idempotency keys use Redis when
redis.addr is set and process memory otherwise.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// newSender builds the mail transport. The returned close func releases it.
func newSender(cfg *config.Config) (notify.Sender, func() error, error) {
	switch cfg.Mail.Transport {
	case "smtp":
		return notify.NewSMTPSender(smtpConfig(cfg)), func() error { return nil }, nil
	case "kafka":
		w := config.NewKafkaWriter(cfg.Kafka)
		return notify.NewKafkaSender(w), w.Close, nil
	case "log":
		return notify.LogSender{}, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown mail transport %q", cfg.Mail.Transport)
	}
}

func smtpConfig(cfg *config.Config) notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:     cfg.Mail.SMTP.Host,
		Port:     cfg.Mail.SMTP.Port,
		Username: cfg.Mail.SMTP.Username,
		Password: cfg.Mail.SMTP.Password,
		From:     cfg.Mail.SMTP.From,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required to serve the admin API")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.OpenAndMigrate(ctx, dbOptions(cfg))
	if err != nil {
		return err
	}
	defer db.Close()
	store := repository.NewStore(db)

	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	var (
		cartStore    cart.Store = cart.NewMemoryStore()
		productCache service.ProductCache
		orderOpts    = []service.OrderOption{service.WithRestockOnCancel(cfg.Orders.RestockOnCancel)}
	)
	if rdb != nil {
		defer rdb.Close()
		pc := cache.NewProductCache(rdb)
		cartStore = cache.NewRedisCartStore(rdb)
		productCache = pc
		orderOpts = append(orderOpts,
			service.WithProductCache(pc),
			service.WithIdempotencyGuard(cache.NewIdempotencyGuard(rdb)),
		)
		logger.Info().Msgf("Using redis at %s", cfg.Redis.Addr)
	} else {
		logger.Warn().Msg("Redis not configured, carts are kept in memory")
	}

	sender, closeSender, err := newSender(cfg)
	if err != nil {
		return err
	}
	publicURL := strings.TrimRight(cfg.Server.PublicURL, "/")
	orderURL := publicURL + "/orders/%s"
	dispatcher := notify.NewDispatcher(sender, notify.Config{
		Workers:     cfg.Mail.Workers,
		QueueSize:   cfg.Mail.QueueSize,
		SendTimeout: cfg.Mail.SendTimeout,
		AdminEmail:  cfg.Mail.AdminEmail,
		StoreName:   cfg.Store.Name,
		OrderURL:    orderURL,
	})
	dispatcher.Start()
	orderOpts = append(orderOpts, service.WithNotifier(dispatcher))

	blobs, err := blob.NewLocalStore(cfg.Uploads.Dir, publicURL+"/uploads", cfg.Uploads.MaxWidth)
	if err != nil {
		return err
	}

	carts := cart.NewManager(cartStore)
	productService := service.NewProductService(store, productCache)
	orderService := service.NewOrderService(store, orderOpts...)
	analyticsService := service.NewAnalyticsService(store)

	e := api.NewRouter(
		api.RouterConfig{
			JWTSecret: []byte(cfg.Auth.JWTSecret),
			RateLimit: cfg.Server.RateLimit,
			RateBurst: cfg.Server.RateBurst,
			UploadDir: cfg.Uploads.Dir,
		},
		api.NewOrderHandler(orderService, carts, cfg.Store.Name, orderURL),
		api.NewProductHandler(productService),
		api.NewCartHandler(carts, productService),
		api.NewAdminHandler(analyticsService, blobs),
		store,
	)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Starting server on %s", cfg.Server.Addr)
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error shutting down HTTP server")
	}
	// Orders placed before shutdown still get their emails.
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Notification queue not drained before timeout")
	}
	if err := closeSender(); err != nil {
		logger.Error().Err(err).Msg("Error closing mail transport")
	}
	return nil
}
