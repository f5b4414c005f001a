package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// KafkaJob 一条待发送的生命周期事件
type KafkaJob struct {
	Topic     string
	Partition int32
	Key       []byte // 拍卖地址，便于消费方按拍卖聚合
	Value     []byte
}

// Producer *kafka.Producer 中 Publisher 用到的部分
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

// Publisher 逐条投递并等待回执，同一批内的事件按顺序落盘
type Publisher struct {
	producer Producer
	timeout  time.Duration
}

func NewPublisher(producer Producer, perMessageTimeout time.Duration) *Publisher {
	if perMessageTimeout <= 0 {
		perMessageTimeout = 5 * time.Second
	}
	return &Publisher{producer: producer, timeout: perMessageTimeout}
}

// Publish 遇到第一条失败即停止，后续事件不再发送，避免消费方看到乱序的状态。
// 已成功的消息不会撤回。
func (p *Publisher) Publish(ctx context.Context, jobs []*KafkaJob) error {
	for i, job := range jobs {
		if err := p.deliver(ctx, job); err != nil {
			return fmt.Errorf("publish event %d/%d (partition %d): %w", i+1, len(jobs), job.Partition, err)
		}
	}
	return nil
}

// deliver 发送单条消息，回执、ctx、超时三者先到者决定结果
func (p *Publisher) deliver(ctx context.Context, job *KafkaJob) error {
	// 1. 回执通道带 1 个缓冲，放弃等待后 librdkafka 回调写入也不会阻塞
	deliveryChan := make(chan kafka.Event, 1)
	err := p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &job.Topic,
			Partition: job.Partition,
		},
		Key:   job.Key,
		Value: job.Value,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("produce error: %w", err)
	}

	// 2. 等待回执
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case e, ok := <-deliveryChan:
		if !ok {
			return fmt.Errorf("delivery channel closed unexpectedly")
		}
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("invalid delivery event: %T", e)
		}
		return msg.TopicPartition.Error
	case <-timer.C:
		return fmt.Errorf("delivery timeout (>%v)", p.timeout)
	case <-ctx.Done():
		return fmt.Errorf("ctx cancelled: %w", ctx.Err())
	}
}

func (p *Publisher) Close() {
	p.producer.Flush(3000)
	p.producer.Close()
}
