package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auction.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
program:
  factory_seed: "1700000000"
  config_seed: "1700000001"
redis:
  addr: 127.0.0.1:6379
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "1700000000", c.Program.FactorySeed)
	assert.Equal(t, "127.0.0.1:6379", c.Redis.Addr)
	assert.Equal(t, "auction", c.Redis.KeyPrefix)
	assert.Equal(t, 10_000, c.Rpc.TimeoutMs)
	assert.Equal(t, "auction-lifecycle", c.KafkaProducerConf.Topic)
	assert.Equal(t, 4, c.KafkaProducerConf.Partitions)
	assert.Empty(t, c.KafkaProducerConf.Brokers, "未配置 brokers 时不发布")
	assert.Empty(t, c.Geyser.Endpoint)
	assert.Equal(t, 5, c.Watch.IntervalSec)
}

func TestLoad_ExplicitValues(t *testing.T) {
	path := writeConfig(t, `
logger:
  format: json
  level: debug
rpc:
  endpoint: http://127.0.0.1:8899
  timeout_ms: 500
program:
  factory_seed: a
  config_seed: b
kafka_producer:
  brokers: 127.0.0.1:9092
  topic: t
  partitions: 8
geyser:
  endpoint: 127.0.0.1:10000
  ping_interval_sec: 30
watch:
  interval_sec: 2
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "json", c.LogConf.ToLogOption().Format)
	assert.Equal(t, "http://127.0.0.1:8899", c.Rpc.Endpoint)
	assert.Equal(t, 500, c.Rpc.TimeoutMs)
	assert.Equal(t, 8, c.KafkaProducerConf.Partitions)
	assert.Equal(t, 30, c.Geyser.PingIntervalSec)
	assert.Equal(t, 3, c.Geyser.ReconnectIntervalSec)
	assert.Equal(t, 2, c.Watch.IntervalSec)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "program: [\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "program:\n  factory_seed: a\n"))
	assert.ErrorContains(t, err, "config_seed")
}

func TestLoad_SampleConfig(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "etc", "auction.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "1665530573", c.Program.FactorySeed)
	assert.Equal(t, "~/.config/solana/id.json", c.Program.Keypair)
	assert.Equal(t, 10_000, c.Rpc.TimeoutMs)
	assert.Equal(t, 32768, c.KafkaProducerConf.BatchSize)
	assert.Empty(t, c.Redis.Addr)
}
