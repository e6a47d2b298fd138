package config

import (
	"github.com/segmentio/kafka-go"
)

func NewKafkaWriter(cfg KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.NotificationTopic,
		Balancer:               &kafka.Hash{}, // same order id, same partition
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaReader(cfg KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.NotificationTopic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,    // notifications are small and latency matters
		MaxBytes: 10e6, // 10MB
	})
}
