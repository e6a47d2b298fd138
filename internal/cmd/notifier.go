package cmd

import (
	"errors"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"storefront-service/internal/config"
	"storefront-service/internal/notify"
	"syscall"
)

var notifierCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Deliver notifications published by the server over SMTP",
	Long: `Consume the notification topic and deliver each message over SMTP.
Used with mail.transport=kafka so checkout never waits on the mail relay.
Without mail.smtp.host the messages are only logged.`,
	RunE: runNotifier,
}

func init() {
	rootCmd.AddCommand(notifierCmd)
}

func runNotifier(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is required for the notifier")
	}

	var sender notify.Sender = notify.LogSender{}
	if cfg.Mail.SMTP.Host != "" {
		sender = notify.NewSMTPSender(smtpConfig(cfg))
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := config.NewKafkaReader(cfg.Kafka)
	defer reader.Close()

	logger.Info().Msgf("Consuming notifications from %s", cfg.Kafka.NotificationTopic)
	return notify.NewRelay(reader, sender).Run(ctx)
}
