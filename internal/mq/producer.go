package mq

import (
	"context"
	"fmt"
	"os"
	"time"

	"auction-factory-sol/internal/config"
	"auction-factory-sol/pkg/logger"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const (
	defaultBatchSize = 32 * 1024
	defaultLingerMs  = 5
)

// NewKafkaProducer 创建生命周期事件生产者，topic 不存在时按配置的分区数创建
func NewKafkaProducer(cfg config.KafkaProducerConfig) (*kafka.Producer, error) {
	// 1. 确认 topic
	if err := ensureTopic(cfg); err != nil {
		return nil, err
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	lingerMs := cfg.LingerMs
	if lingerMs < 0 {
		lingerMs = defaultLingerMs
	}

	// 2. 创建生产者
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"client.id":         clientID(),

		// 可靠性保障
		"acks":                                  "all",
		"enable.idempotence":                    true,
		"max.in.flight.requests.per.connection": 5, // 幂等场景下最大值为 5

		// 超时与重试
		"delivery.timeout.ms": 30000,
		"request.timeout.ms":  30000,
		"retries":             5,
		"retry.backoff.ms":    100,

		// 事件量小，批量参数仅作上限
		"batch.size":       batchSize,
		"linger.ms":        lingerMs,
		"compression.type": "none",

		"message.max.bytes": 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	logger.Infof("[Kafka] 生产者就绪, brokers=%s topic=%s partitions=%d", cfg.Brokers, cfg.Topic, cfg.Partitions)
	return producer, nil
}

func ensureTopic(cfg config.KafkaProducerConfig) error {
	adminClient, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	meta, err := adminClient.GetMetadata(&cfg.Topic, false, 10000)
	if err != nil {
		return fmt.Errorf("failed to get metadata: %w", err)
	}
	if t, ok := meta.Topics[cfg.Topic]; ok && t.Error.Code() == kafka.ErrNoError && len(t.Partitions) > 0 {
		if len(t.Partitions) != cfg.Partitions {
			logger.Warnf("[Kafka] topic %s 实际分区数 %d 与配置 %d 不一致", cfg.Topic, len(t.Partitions), cfg.Partitions)
		}
		return nil
	}

	replicationFactor := 1
	if len(meta.Brokers) > 1 {
		replicationFactor = 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	results, err := adminClient.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             cfg.Topic,
		NumPartitions:     cfg.Partitions,
		ReplicationFactor: replicationFactor,
	}})
	if err != nil {
		return fmt.Errorf("failed to create topic %s: %w", cfg.Topic, err)
	}
	for _, result := range results {
		code := result.Error.Code()
		if code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %w", result.Topic, result.Error)
		}
	}
	logger.Infof("[Kafka] 已创建 topic %s, replication=%d", cfg.Topic, replicationFactor)
	return nil
}

func clientID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return "auction-watch-" + host
}
