// =============================================================================
// 📦 SkillFlow 配置加载器
// =============================================================================
// 统一配置加载，支持 YAML 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("skillflow.yaml").
//	    WithEnvPrefix("SKILLFLOW").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
// =============================================================================
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是 SkillFlow 的完整配置结构
type Config struct {
	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// ArXiv 论文检索配置
	ArXiv ArXivConfig `yaml:"arxiv" env:"ARXIV"`

	// MiniMax 语音/音乐配置
	MiniMax MiniMaxConfig `yaml:"minimax" env:"MINIMAX"`

	// OpenAI Whisper 转写配置
	OpenAI OpenAIConfig `yaml:"openai" env:"OPENAI"`

	// Ark 豆包 Seedance 视频生成配置
	Ark ArkConfig `yaml:"ark" env:"ARK"`

	// News 资讯聚合配置
	News NewsConfig `yaml:"news" env:"NEWS"`

	// Journal 任务日志存储配置
	Journal JournalConfig `yaml:"journal" env:"JOURNAL"`

	// Output 输出目录配置
	Output OutputConfig `yaml:"output" env:"OUTPUT"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
}

// ArXivConfig arXiv 检索配置
type ArXivConfig struct {
	// API base URL
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// 单次查询最大结果数
	MaxResults int `yaml:"max_results" env:"MAX_RESULTS"`
	// 排序字段: relevance, lastUpdatedDate, submittedDate
	SortBy string `yaml:"sort_by" env:"SORT_BY"`
	// 分类过滤，如 cs.AI,cs.CL
	Categories []string `yaml:"categories" env:"CATEGORIES"`
	// 请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// MiniMaxConfig MiniMax 配置
type MiniMaxConfig struct {
	// API Key
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// Group ID（可选，写入 X-Minimax-Group-Id）
	GroupID string `yaml:"group_id" env:"GROUP_ID"`
	// 基础 URL
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// 默认语音模型
	SpeechModel string `yaml:"speech_model" env:"SPEECH_MODEL"`
	// 默认音乐模型
	MusicModel string `yaml:"music_model" env:"MUSIC_MODEL"`
	// 请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// OpenAIConfig OpenAI 配置
type OpenAIConfig struct {
	// API Key
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// 基础 URL
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// 转写模型
	Model string `yaml:"model" env:"MODEL"`
	// 请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// ArkConfig 豆包方舟配置
type ArkConfig struct {
	// API Key
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// 基础 URL
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// 默认模型
	Model string `yaml:"model" env:"MODEL"`
	// 轮询间隔
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
	// 轮询超时
	MaxPollTime time.Duration `yaml:"max_poll_time" env:"MAX_POLL_TIME"`
	// 请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// NewsConfig 资讯聚合配置
type NewsConfig struct {
	// 默认抓取条数
	Limit int `yaml:"limit" env:"LIMIT"`
	// 单源请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// 额外 RSS 源，格式 name=url
	ExtraSources []string `yaml:"extra_sources" env:"EXTRA_SOURCES"`
}

// JournalConfig 任务日志存储配置
type JournalConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// SQLite 文件路径
	Path string `yaml:"path" env:"PATH"`
}

// OutputConfig 输出目录配置
type OutputConfig struct {
	// 音频输出目录
	AudioDir string `yaml:"audio_dir" env:"AUDIO_DIR"`
	// 视频输出目录
	VideoDir string `yaml:"video_dir" env:"VIDEO_DIR"`
}

// Loader 配置加载器（Builder 模式）
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader 创建新的配置加载器
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "SKILLFLOW",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath 设置配置文件路径
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator 添加配置验证器
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load 加载配置
// 优先级: 默认值 → YAML 文件 → 环境变量
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// API Key 兜底：沿用各服务商约定俗成的环境变量名
	applyProviderKeyEnv(cfg)

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// applyProviderKeyEnv 在未显式配置时读取服务商标准环境变量
func applyProviderKeyEnv(cfg *Config) {
	if cfg.MiniMax.APIKey == "" {
		cfg.MiniMax.APIKey = os.Getenv("MINIMAX_API_KEY")
	}
	if cfg.MiniMax.GroupID == "" {
		cfg.MiniMax.GroupID = os.Getenv("MINIMAX_GROUP_ID")
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Ark.APIKey == "" {
		cfg.Ark.APIKey = os.Getenv("ARK_API_KEY")
	}
}

// loadFromFile 从 YAML 文件加载配置
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// loadFromEnv 从环境变量加载配置
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv 递归设置结构体字段
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// 特殊处理 time.Duration
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// 支持逗号分隔的字符串切片
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad 加载配置，失败时 panic
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	if c.ArXiv.MaxResults <= 0 {
		errs = append(errs, "arxiv max_results must be positive")
	}
	if c.News.Limit <= 0 {
		errs = append(errs, "news limit must be positive")
	}
	if c.Ark.PollInterval <= 0 {
		errs = append(errs, "ark poll_interval must be positive")
	}
	if c.Ark.MaxPollTime < c.Ark.PollInterval {
		errs = append(errs, "ark max_poll_time must be >= poll_interval")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level %q", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
