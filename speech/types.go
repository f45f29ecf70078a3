// 软件包 speech 提供统一的 TTS 和 STT 供应商接口.
package speech

import (
	"context"
	"io"
	"time"
)

// ============================================================
// 文字对语言( TTS)
// ============================================================

// TTSRequest 代表文本转语音请求.
type TTSRequest struct {
	Text              string            `json:"text"`
	Model             string            `json:"model,omitempty"`
	Voice             string            `json:"voice,omitempty"`
	Speed             float64           `json:"speed,omitempty"` // [0.5, 2]
	Volume            float64           `json:"volume,omitempty"`
	Pitch             int               `json:"pitch,omitempty"`   // [-12, 12]
	Emotion           string            `json:"emotion,omitempty"` // happy/sad/angry/...
	SampleRate        int               `json:"sample_rate,omitempty"`
	Bitrate           int               `json:"bitrate,omitempty"`
	Format            string            `json:"format,omitempty"` // mp3, pcm, flac, wav
	Channels          int               `json:"channels,omitempty"`
	LanguageBoost     string            `json:"language_boost,omitempty"`
	PronunciationDict map[string][]string `json:"pronunciation_dict,omitempty"`
	SubtitleEnable    bool              `json:"subtitle_enable,omitempty"`
	ContinuousSound   bool              `json:"continuous_sound,omitempty"`
	AIGCWatermark     bool              `json:"aigc_watermark,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// TTSResponse 代表文本转语音响应.
type TTSResponse struct {
	Provider   string        `json:"provider"`
	Model      string        `json:"model"`
	AudioData  []byte        `json:"audio_data,omitempty"` // 解码后的音频字节
	AudioURL   string        `json:"audio_url,omitempty"`  // output_format=url 时的下载地址
	Format     string        `json:"format"`
	Duration   time.Duration `json:"duration,omitempty"`
	SampleRate int           `json:"sample_rate,omitempty"`
	Size       int64         `json:"size,omitempty"`
	CharCount  int           `json:"char_count,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// TTSProvider 定义 TTS 提供者接口.
type TTSProvider interface {
	// Synthesize 将文本转换为语音.
	Synthesize(ctx context.Context, req *TTSRequest) (*TTSResponse, error)

	// SynthesizeToFile 将文本转换为语音并保存为文件。
	SynthesizeToFile(ctx context.Context, req *TTSRequest, filepath string) error

	// Name 返回提供者名称。
	Name() string
}

// Voice 代表一个可用的音色。
type Voice struct {
	ID          string   `json:"voice_id"`
	Name        string   `json:"voice_name,omitempty"`
	Language    string   `json:"language,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	Description string   `json:"description,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// ============================================================
// 语音对文本( STT)
// ============================================================

// STTRequest 代表语音转文本请求.
type STTRequest struct {
	Audio                  io.Reader `json:"-"`
	Filename               string    `json:"filename,omitempty"`
	Model                  string    `json:"model,omitempty"`
	Language               string    `json:"language,omitempty"`        // ISO-639-1 code
	Prompt                 string    `json:"prompt,omitempty"`          // Context hint
	ResponseFormat         string    `json:"response_format,omitempty"` // json, text, srt, vtt, verbose_json
	Temperature            float64   `json:"temperature,omitempty"`
	TimestampGranularities []string  `json:"timestamp_granularities,omitempty"` // word, segment
}

// STTResponse 代表语音转文本响应.
type STTResponse struct {
	Provider  string        `json:"provider"`
	Model     string        `json:"model"`
	Text      string        `json:"text"`
	Raw       string        `json:"raw,omitempty"` // srt/vtt/text 格式的原始响应体
	Language  string        `json:"language,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Segments  []Segment     `json:"segments,omitempty"`
	Words     []Word        `json:"words,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Segment 代表一个转写片段.
type Segment struct {
	ID    int           `json:"id"`
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Text  string        `json:"text"`
}

// Word 代表带时间戳的转写词.
type Word struct {
	Word  string        `json:"word"`
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}

// STTProvider 定义 STT 提供者接口.
type STTProvider interface {
	// Transcribe 将语音转换为文本。
	Transcribe(ctx context.Context, req *STTRequest) (*STTResponse, error)

	// TranscribeFile 转写音频文件.
	TranscribeFile(ctx context.Context, filepath string, opts *STTRequest) (*STTResponse, error)

	// Name 返回提供者名称。
	Name() string

	// SupportedFormats 返回支持的音频格式。
	SupportedFormats() []string
}
