package config

import (
	"fmt"

	"auction-factory-sol/pkg/logger"

	"github.com/zeromicro/go-zero/core/conf"
)

type LogConfig struct {
	Format   string `json:"format,optional"`   // 日志格式，支持 "console" 或 "json"
	LogDir   string `json:"log_dir,optional"`  // 日志目录，为空时只输出到 stderr
	Level    string `json:"level,optional"`    // 日志级别：debug / info / warn / error
	Compress bool   `json:"compress,optional"` // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// RpcConfig Solana JSON-RPC 节点
type RpcConfig struct {
	Endpoint  string `json:"endpoint,optional"`   // 例如 https://api.devnet.solana.com
	TimeoutMs int    `json:"timeout_ms,optional"` // 单次调用超时（毫秒）
}

// ProgramConfig 拍卖合约及其工厂/配置账户的种子
type ProgramConfig struct {
	ProgramID   string `json:"program_id,optional"`   // 为空时使用内置地址
	FactorySeed string `json:"factory_seed,optional"` // 工厂 PDA 种子
	ConfigSeed  string `json:"config_seed,optional"`  // 配置 PDA 种子
	Keypair     string `json:"keypair,optional"`      // 签名钱包文件（solana-keygen 格式）
}

// RedisConfig 地址为空时使用内存存储
type RedisConfig struct {
	Addr      string `json:"addr,optional"`
	Password  string `json:"password,optional"`
	DB        int    `json:"db,optional"`
	KeyPrefix string `json:"key_prefix,optional"`
}

// KafkaProducerConfig 表示 Kafka 生产者相关配置，brokers 为空时不发布事件
type KafkaProducerConfig struct {
	Brokers    string `json:"brokers,optional"`    // Kafka broker 地址，多个用英文逗号分隔
	BatchSize  int    `json:"batch_size,optional"` // 批处理大小（单位字节）
	LingerMs   int    `json:"linger_ms,optional"`  // 批处理最大延迟（毫秒）
	Topic      string `json:"topic,optional"`      // 拍卖生命周期事件 topic
	Partitions int    `json:"partitions,optional"` // topic 分区数
}

// GeyserConfig Yellowstone gRPC 账户订阅，endpoint 为空时不订阅
type GeyserConfig struct {
	Endpoint             string `json:"endpoint,optional"`               // gRPC 服务端地址
	XToken               string `json:"x_token,optional"`                // x-token 认证
	ConnectTimeoutSec    int    `json:"connect_timeout_sec,optional"`    // 连接建立超时（秒）
	SendTimeoutSec       int    `json:"send_timeout_sec,optional"`       // 发送超时（秒）
	PingIntervalSec      int    `json:"ping_interval_sec,optional"`      // 应用层 ping 心跳间隔（秒）
	ReconnectIntervalSec int    `json:"reconnect_interval_sec,optional"` // 重连最小间隔（秒）
}

type WatchConfig struct {
	IntervalSec int `json:"interval_sec,optional"` // 轮询间隔（秒）
}

// Config 是主配置结构体
type Config struct {
	LogConf           LogConfig           `json:"logger,optional"`
	Rpc               RpcConfig           `json:"rpc,optional"`
	Program           ProgramConfig       `json:"program,optional"`
	Redis             RedisConfig         `json:"redis,optional"`
	KafkaProducerConf KafkaProducerConfig `json:"kafka_producer,optional"`
	Geyser            GeyserConfig        `json:"geyser,optional"`
	Watch             WatchConfig         `json:"watch,optional"`
}

// Load 读取 YAML 配置并补齐默认值。字段全部 optional，默认值统一在 applyDefaults 中给出
func Load(path string) (Config, error) {
	var c Config
	if err := conf.Load(path, &c); err != nil {
		return c, fmt.Errorf("load config %s: %w", path, err)
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func MustLoad(path string) Config {
	c, err := Load(path)
	if err != nil {
		panic(err)
	}
	return c
}

// validate 种子决定 PDA，必须与部署时一致，不提供默认值
func (c *Config) validate() error {
	if c.Program.FactorySeed == "" || c.Program.ConfigSeed == "" {
		return fmt.Errorf("program.factory_seed and program.config_seed are required")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Rpc.Endpoint == "" {
		c.Rpc.Endpoint = "https://api.devnet.solana.com"
	}
	if c.Rpc.TimeoutMs <= 0 {
		c.Rpc.TimeoutMs = 10_000
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "auction"
	}
	if c.KafkaProducerConf.Topic == "" {
		c.KafkaProducerConf.Topic = "auction-lifecycle"
	}
	if c.KafkaProducerConf.Partitions <= 0 {
		c.KafkaProducerConf.Partitions = 4
	}
	if c.Geyser.ConnectTimeoutSec <= 0 {
		c.Geyser.ConnectTimeoutSec = 10
	}
	if c.Geyser.SendTimeoutSec <= 0 {
		c.Geyser.SendTimeoutSec = 5
	}
	if c.Geyser.PingIntervalSec <= 0 {
		c.Geyser.PingIntervalSec = 10
	}
	if c.Geyser.ReconnectIntervalSec <= 0 {
		c.Geyser.ReconnectIntervalSec = 3
	}
	if c.Watch.IntervalSec <= 0 {
		c.Watch.IntervalSec = 5
	}
}
