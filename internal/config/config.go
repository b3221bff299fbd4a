package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MySQLConfig 定义了 MySQL 数据库的连接配置。
type MySQLConfig struct {
	Address         string `yaml:"address"`         // MySQL 服务器地址
	Username        string `yaml:"username"`        // 用户名
	Password        string `yaml:"password"`        // 密码
	Database        string `yaml:"database"`        // 数据库名称
	MaxOpenConns    int    `yaml:"maxOpenConns"`    // 最大打开连接数
	MaxIdleConns    int    `yaml:"maxIdleConns"`    // 最大空闲连接数
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // 连接最大生命周期 (秒)
}

// MongoConfig 定义了 MongoDB 数据库的连接配置。
type MongoConfig struct {
	Address    string `yaml:"address"`    // MongoDB 服务器地址
	Username   string `yaml:"username"`   // 用户名
	Password   string `yaml:"password"`   // 密码
	Database   string `yaml:"database"`   // 数据库名称
	Collection string `yaml:"collection"` // 会话集合名称
}

// RedisConfig 定义了 Redis 数据库的连接配置。
type RedisConfig struct {
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
}

// DatabaseConfigs 包含所有数据库的配置。
type DatabaseConfigs struct {
	MySQL   MySQLConfig `yaml:"mysql"`   // 文档记录存储
	MongoDB MongoConfig `yaml:"mongodb"` // 会话历史存储
	Redis   RedisConfig `yaml:"redis"`   // 限流计数器
}

// GeminiConfig 包含了 Gemini 模型的配置。
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"` // Gemini API 密钥
	Model  string `yaml:"model"`  // Gemini 模型名称
}

// LLMConfig 包含了不同对话能力提供商的配置。
type LLMConfig struct {
	Provider string       `yaml:"provider"` // 提供商 (例如: "gemini")
	Gemini   GeminiConfig `yaml:"gemini"`   // Gemini 模型配置
}

// ChatConfig 定义了聊天核心的行为参数。
type ChatConfig struct {
	// CapabilityTimeout 是调用外部对话能力的超时时间 (例如: "30s")。
	// 超时后返回降级回答，而不是把错误抛给调用方。
	CapabilityTimeout string `yaml:"capabilityTimeout"`
	// SessionRetention 是会话的保留窗口 (例如: "720h")。
	SessionRetention string `yaml:"sessionRetention"`
	// EntityCacheCapacity 是实体存储缓存的最大文档数。
	EntityCacheCapacity int `yaml:"entityCacheCapacity"`
	// EntityCacheTTL 是实体存储缓存条目的存活时间 (例如: "1h")。
	EntityCacheTTL string `yaml:"entityCacheTTL"`
}

// RateLimiterConfig 定义了限流器的配置。
type RateLimiterConfig struct {
	Enabled bool   `yaml:"enabled"`
	Limit   int    `yaml:"limit"`  // 窗口内允许的请求数
	Window  string `yaml:"window"` // 例如: "1m", "30s"
}

// ServerConfig 定义了 HTTP 服务的监听配置。
type ServerConfig struct {
	Address string `yaml:"address"` // 监听地址 (例如: ":8080")
}

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App         AppInfo           `yaml:"app"`         // 应用程序信息
	Server      ServerConfig      `yaml:"server"`      // HTTP 服务配置
	Logger      LoggerConfig      `yaml:"logger"`      // 日志记录器配置
	LLM         LLMConfig         `yaml:"llm"`         // 对话能力配置
	Chat        ChatConfig        `yaml:"chat"`        // 聊天核心配置
	Databases   DatabaseConfigs   `yaml:"databases"`   // 数据库配置
	RateLimiter RateLimiterConfig `yaml:"rateLimiter"` // 限流配置
	UploadDir   string            `yaml:"uploadDir"`   // 上传文件的本地目录
}

// LoadConfig 函数从指定路径加载并解析 YAML 配置文件。
//
// 参数:
//
//	path: YAML 配置文件的路径。
//
// 返回值:
//
//	*AppConfig: 解析后的应用程序配置结构体。
//	error: 如果文件读取或解析失败，则返回错误。
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
	}
	return &cfg, nil
}
