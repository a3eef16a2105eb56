// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	AWS        AWSConfig        `mapstructure:"aws"`
	OpenSearch OpenSearchConfig `mapstructure:"opensearch"`
	Bedrock    BedrockConfig    `mapstructure:"bedrock"`
	Polly      PollyConfig      `mapstructure:"polly"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// AWSConfig 存储 AWS 区域等全局设置。
type AWSConfig struct {
	Region string `mapstructure:"region"`
}

// OpenSearchConfig 存储向量索引的位置与凭证 Secret 标识。
type OpenSearchConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	IndexName string `mapstructure:"index_name"`
	SecretID  string `mapstructure:"secret_id"`
}

// BedrockConfig 存储文本模型与 Embedding 模型的标识。
// TextModelFamily 可选，为空时根据模型 ID 推断请求协议。
type BedrockConfig struct {
	TextModelID      string `mapstructure:"text_model_id"`
	TextModelFamily  string `mapstructure:"text_model_family"`
	EmbeddingModelID string `mapstructure:"embedding_model_id"`
}

// PollyConfig 存储语音合成的默认音色与引擎。
type PollyConfig struct {
	VoiceID     string `mapstructure:"voice_id"`
	VoiceEngine string `mapstructure:"voice_engine"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
// 为了支持 Lambda 风格的纯环境变量部署，关键配置项均绑定了环境变量别名，
// 且允许配置文件缺失。
func Init(configPath string) {
	// Reset 保证重复初始化时不残留上一次读到的值
	viper.Reset()
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("polly.voice_id", "Ruth")
	viper.SetDefault("polly.voice_engine", "neural")

	_ = viper.BindEnv("aws.region", "AWS_REGION")
	_ = viper.BindEnv("opensearch.endpoint", "OPENSEARCH_ENDPOINT")
	_ = viper.BindEnv("opensearch.secret_id", "OPENSEARCH_SECRET")
	_ = viper.BindEnv("opensearch.index_name", "OPENSEARCH_INDEX")
	_ = viper.BindEnv("bedrock.text_model_id", "TEXT_MODEL_ID")
	_ = viper.BindEnv("bedrock.text_model_family", "TEXT_MODEL_FAMILY")
	_ = viper.BindEnv("bedrock.embedding_model_id", "EMBEDDING_MODEL_ID")

	if err := viper.ReadInConfig(); err != nil {
		// 配置文件缺失时仅依赖环境变量与默认值
		if !errors.Is(err, fs.ErrNotExist) {
			panic(fmt.Errorf("读取配置文件失败: %w", err))
		}
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}
}
