// 文件: pkg/config/config.go
// 服务配置: 默认值 + .env 文件 + 环境变量覆盖
// 后端地址留空表示不启用该组件

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 环境变量名
const (
	EnvHTTPAddr     = "BSQ_HTTP_ADDR"
	EnvMySQLDSN     = "BSQ_MYSQL_DSN"
	EnvRedisAddr    = "BSQ_REDIS_ADDR"
	EnvNatsURL      = "BSQ_NATS_URL"
	EnvKafkaBrokers = "BSQ_KAFKA_BROKERS"
	EnvKafkaTopic   = "BSQ_KAFKA_TOPIC"
	EnvKafkaGroup   = "BSQ_KAFKA_GROUP"
	EnvNodeID       = "BSQ_NODE_ID"
	EnvCacheTTL     = "BSQ_CACHE_TTL"
)

// Config 服务配置
type Config struct {
	HTTPAddr string // HTTP 监听地址

	MySQLDSN  string        // 报价落库，空则使用内存仓储
	RedisAddr string        // 报价缓存，空则不缓存
	CacheTTL  time.Duration // 缓存过期时间

	NatsURL string // NATS 请求/应答，空则不启用

	KafkaBrokers []string // 报价事件，空则不发送
	KafkaTopic   string
	KafkaGroup   string // 审计消费者组

	NodeID int64 // 雪花算法节点 (0-1023)
}

// Default 默认配置 (全部后端关闭，纯内存运行)
func Default() Config {
	return Config{
		HTTPAddr:   ":8080",
		CacheTTL:   10 * time.Minute,
		KafkaTopic: "option.quotes",
		KafkaGroup: "quote-audit",
	}
}

// Load 读取 .env (不存在则忽略) 后用环境变量覆盖默认值
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv 用给定的查找函数构建配置 (方便测试)
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str(EnvHTTPAddr, &cfg.HTTPAddr)
	str(EnvMySQLDSN, &cfg.MySQLDSN)
	str(EnvRedisAddr, &cfg.RedisAddr)
	str(EnvNatsURL, &cfg.NatsURL)
	str(EnvKafkaTopic, &cfg.KafkaTopic)
	str(EnvKafkaGroup, &cfg.KafkaGroup)

	if v, ok := lookup(EnvKafkaBrokers); ok {
		cfg.KafkaBrokers = splitList(v)
	}

	if v, ok := lookup(EnvNodeID); ok && v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvNodeID, err)
		}
		cfg.NodeID = id
	}

	if v, ok := lookup(EnvCacheTTL); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvCacheTTL, err)
		}
		cfg.CacheTTL = ttl
	}

	return cfg, cfg.Validate()
}

// Validate 检查配置合法性
func (c Config) Validate() error {
	if c.NodeID < 0 || c.NodeID > 1023 {
		return fmt.Errorf("node id %d out of range [0, 1023]", c.NodeID)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %v", c.CacheTTL)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("kafka topic is required when brokers are set")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
