package speech

import "time"

// MiniMaxConfig 配置 MiniMax 语音客户端.
type MiniMaxConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	GroupID string        `json:"group_id,omitempty" yaml:"group_id,omitempty"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultMiniMaxConfig 返回默认的 MiniMax 语音配置。
func DefaultMiniMaxConfig() MiniMaxConfig {
	return MiniMaxConfig{
		BaseURL: "https://api.minimaxi.com",
		Model:   "speech-2.8-hd",
		Timeout: 120 * time.Second,
	}
}

// WhisperConfig 配置 OpenAI Whisper STT 客户端.
type WhisperConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultWhisperConfig 返回默认的 Whisper 配置。
func DefaultWhisperConfig() WhisperConfig {
	return WhisperConfig{
		BaseURL: "https://api.openai.com",
		Model:   "whisper-1",
		Timeout: 120 * time.Second,
	}
}

// SpeechModels 列出 MiniMax 支持的语音模型.
var SpeechModels = []string{
	"speech-2.8-hd",
	"speech-2.8-turbo",
	"speech-2.6-hd",
	"speech-2.6-turbo",
	"speech-02-hd",
	"speech-02-turbo",
	"speech-01-hd",
	"speech-01-turbo",
}

// Emotions 列出 MiniMax 支持的情绪.
var Emotions = []string{
	"happy", "sad", "angry", "fearful",
	"disgusted", "surprised", "calm", "fluent", "whisper",
}

// AudioFormats 列出 MiniMax 支持的音频格式.
var AudioFormats = []string{"mp3", "pcm", "flac", "wav"}

// SampleRates 列出 MiniMax 支持的采样率.
var SampleRates = []int{8000, 16000, 22050, 24000, 32000, 44100}

// Bitrates 列出 MiniMax 支持的比特率.
var Bitrates = []int{32000, 64000, 128000, 256000}

func validSpeechModel(model string) bool {
	for _, m := range SpeechModels {
		if m == model {
			return true
		}
	}
	return false
}

func validEmotion(emotion string) bool {
	for _, e := range Emotions {
		if e == emotion {
			return true
		}
	}
	return false
}
