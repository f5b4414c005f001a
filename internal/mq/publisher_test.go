package mq

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"auction-factory-sol/internal/config"
	"auction-factory-sol/internal/utils"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// fakeProducer 按 deliver 回调决定每条消息的回执，nil 表示永不回执
type fakeProducer struct {
	mu         sync.Mutex
	produced   []*kafka.Message
	produceErr error
	deliver    func(msg *kafka.Message) kafka.Event
	flushed    bool
	closed     bool
}

func (f *fakeProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.produceErr != nil {
		return f.produceErr
	}
	f.produced = append(f.produced, msg)
	if f.deliver != nil {
		if e := f.deliver(msg); e != nil {
			deliveryChan <- e
		}
	}
	return nil
}

func (f *fakeProducer) Flush(int) int {
	f.flushed = true
	return 0
}

func (f *fakeProducer) Close() {
	f.closed = true
}

func delivered(msg *kafka.Message) kafka.Event {
	return msg
}

func jobsFor(keys ...string) []*KafkaJob {
	jobs := make([]*KafkaJob, 0, len(keys))
	for i, k := range keys {
		jobs = append(jobs, &KafkaJob{Topic: "auction-lifecycle", Partition: int32(i % 2), Key: []byte(k), Value: []byte(k)})
	}
	return jobs
}

func TestPublisher_EmptyIsNoop(t *testing.T) {
	p := NewPublisher(nil, 0)
	assert.Equal(t, 5*time.Second, p.timeout)
	assert.NoError(t, p.Publish(context.Background(), nil))
}

func TestPublisher_DeliversInOrder(t *testing.T) {
	fp := &fakeProducer{deliver: delivered}
	p := NewPublisher(fp, time.Second)

	require.NoError(t, p.Publish(context.Background(), jobsFor("a", "b", "c")))
	require.Len(t, fp.produced, 3)
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, string(fp.produced[i].Key))
		assert.Equal(t, "auction-lifecycle", *fp.produced[i].TopicPartition.Topic)
	}
}

func TestPublisher_StopsAtFirstFailure(t *testing.T) {
	fp := &fakeProducer{deliver: func(msg *kafka.Message) kafka.Event {
		if string(msg.Key) == "b" {
			msg.TopicPartition.Error = kafka.NewError(kafka.ErrMsgTimedOut, "message timed out", false)
		}
		return msg
	}}
	p := NewPublisher(fp, time.Second)

	err := p.Publish(context.Background(), jobsFor("a", "b", "c"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish event 2/3")
	assert.Len(t, fp.produced, 2, "失败之后的事件不再发送")
}

func TestPublisher_ProduceError(t *testing.T) {
	queueFull := errors.New("queue full")
	p := NewPublisher(&fakeProducer{produceErr: queueFull}, time.Second)

	err := p.Publish(context.Background(), jobsFor("a"))
	assert.ErrorIs(t, err, queueFull)
}

func TestPublisher_DeliveryTimeout(t *testing.T) {
	p := NewPublisher(&fakeProducer{}, 50*time.Millisecond)

	start := time.Now()
	err := p.Publish(context.Background(), jobsFor("a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delivery timeout")
	assert.Less(t, time.Since(start), time.Second)
}

func TestPublisher_ContextCancelled(t *testing.T) {
	p := NewPublisher(&fakeProducer{}, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, jobsFor("a", "b"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublisher_UnexpectedEvent(t *testing.T) {
	fp := &fakeProducer{deliver: func(*kafka.Message) kafka.Event {
		return kafka.NewError(kafka.ErrAllBrokersDown, "all brokers down", false)
	}}
	p := NewPublisher(fp, time.Second)

	err := p.Publish(context.Background(), jobsFor("a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid delivery event")
}

func TestPublisher_Close(t *testing.T) {
	fp := &fakeProducer{}
	NewPublisher(fp, 0).Close()
	assert.True(t, fp.flushed)
	assert.True(t, fp.closed)
}

func TestClientID(t *testing.T) {
	assert.True(t, strings.HasPrefix(clientID(), "auction-watch-"))
}

// 需要真实 Kafka：KAFKA_BROKERS=127.0.0.1:9092 go test ./internal/mq/...
func testBrokers(t *testing.T) string {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_BROKERS 未设置，跳过 Kafka 测试")
	}
	return brokers
}

func testTopic() string {
	return "auction-lifecycle-test-" + time.Now().Format("20060102150405")
}

func newTestProducer(t *testing.T, topic string) *kafka.Producer {
	producer, err := NewKafkaProducer(config.KafkaProducerConfig{
		Brokers:    testBrokers(t),
		Topic:      topic,
		Partitions: 2,
		LingerMs:   5,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		producer.Flush(1000)
		producer.Close()
	})
	return producer
}

func phaseEvent(t *testing.T, sequence int) []byte {
	data, err := utils.EncodeFields(utils.EventTypeAuctionPhase, map[string]any{
		"type":     "auction_phase",
		"sequence": sequence,
		"phase":    "bid",
	})
	require.NoError(t, err)
	return data
}

func TestPublisher_RealKafka(t *testing.T) {
	topic := testTopic()
	producer := newTestProducer(t, topic)

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": testBrokers(t),
		"group.id":          "auction-test-" + time.Now().Format("20060102150405"),
		"auto.offset.reset": "earliest",
	})
	require.NoError(t, err)
	defer consumer.Close()
	require.NoError(t, consumer.Subscribe(topic, nil))

	jobs := []*KafkaJob{
		{Topic: topic, Partition: 0, Key: []byte("a"), Value: phaseEvent(t, 1)},
		{Topic: topic, Partition: 0, Key: []byte("a"), Value: phaseEvent(t, 2)},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, NewPublisher(producer, 5*time.Second).Publish(ctx, jobs))

	// 同一分区内按发送顺序消费
	for want := 1; want <= 2; want++ {
		msg, err := consumer.ReadMessage(10 * time.Second)
		require.NoError(t, err)
		assert.Equal(t, utils.EventTypeAuctionPhase, binary.LittleEndian.Uint32(msg.Value[:4]))
		var s structpb.Struct
		require.NoError(t, proto.Unmarshal(msg.Value[4:], &s))
		assert.Equal(t, float64(want), s.AsMap()["sequence"])
	}
}

func TestPublisher_RealKafka_Timeout(t *testing.T) {
	topic := testTopic()
	producer := newTestProducer(t, topic)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	err := NewPublisher(producer, time.Millisecond).Publish(ctx, []*KafkaJob{{Topic: topic, Value: phaseEvent(t, 1)}})
	assert.Error(t, err)
}
