// =============================================================================
// 📦 SkillFlow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Log:     DefaultLogConfig(),
		ArXiv:   DefaultArXivConfig(),
		MiniMax: DefaultMiniMaxConfig(),
		OpenAI:  DefaultOpenAIConfig(),
		Ark:     DefaultArkConfig(),
		News:    DefaultNewsConfig(),
		Journal: DefaultJournalConfig(),
		Output:  DefaultOutputConfig(),
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "console",
	}
}

// DefaultArXivConfig 返回默认 arXiv 配置
func DefaultArXivConfig() ArXivConfig {
	return ArXivConfig{
		BaseURL:    "http://export.arxiv.org/api/query",
		MaxResults: 20,
		SortBy:     "relevance",
		Timeout:    30 * time.Second,
	}
}

// DefaultMiniMaxConfig 返回默认 MiniMax 配置
func DefaultMiniMaxConfig() MiniMaxConfig {
	return MiniMaxConfig{
		BaseURL:     "https://api.minimaxi.com",
		SpeechModel: "speech-2.8-hd",
		MusicModel:  "music-2.5",
		Timeout:     120 * time.Second,
	}
}

// DefaultOpenAIConfig 返回默认 OpenAI 配置
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		BaseURL: "https://api.openai.com",
		Model:   "whisper-1",
		Timeout: 120 * time.Second,
	}
}

// DefaultArkConfig 返回默认豆包方舟配置
func DefaultArkConfig() ArkConfig {
	return ArkConfig{
		BaseURL:      "https://ark.cn-beijing.volces.com/api/v3",
		Model:        "doubao-seedance-1-5-pro-251215",
		PollInterval: 10 * time.Second,
		MaxPollTime:  10 * time.Minute,
		Timeout:      60 * time.Second,
	}
}

// DefaultNewsConfig 返回默认资讯聚合配置
func DefaultNewsConfig() NewsConfig {
	return NewsConfig{
		Limit:   30,
		Timeout: 15 * time.Second,
	}
}

// DefaultJournalConfig 返回默认任务日志配置
func DefaultJournalConfig() JournalConfig {
	return JournalConfig{
		Enabled: true,
		Path:    "skillflow.db",
	}
}

// DefaultOutputConfig 返回默认输出目录配置
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		AudioDir: "assets/audios",
		VideoDir: "outputs",
	}
}
