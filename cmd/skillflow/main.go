// =============================================================================
// SkillFlow 主入口
// =============================================================================
// 多能力命令行工具：论文检索、语音合成/转写、音乐与视频生成、
// 资讯聚合与数据可视化
//
// 使用方法:
//
//	skillflow arxiv --query "agent memory"     # 检索 arXiv 论文
//	skillflow tts --text "你好" --voice <id>    # 同步语音合成
//	skillflow tts-async --file story.txt ...   # 长文本异步合成
//	skillflow voice list                       # 音色管理
//	skillflow transcribe --audio talk.mp3      # Whisper 转写
//	skillflow music --lyrics lyrics.txt        # 音乐生成
//	skillflow video --prompt "..."             # 视频生成
//	skillflow news / skillflow hn              # 资讯聚合
//	skillflow chart --csv data.csv             # 动态条形图
//	skillflow tasks                            # 异步任务日志
// =============================================================================
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/skillflow/config"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "arxiv":
		runArxiv(os.Args[2:])
	case "tts":
		runTTS(os.Args[2:])
	case "tts-async":
		runTTSAsync(os.Args[2:])
	case "voice":
		runVoice(os.Args[2:])
	case "transcribe":
		runTranscribe(os.Args[2:])
	case "music":
		runMusic(os.Args[2:])
	case "video":
		runVideo(os.Args[2:])
	case "video-chain":
		runVideoChain(os.Args[2:])
	case "news":
		runNews(os.Args[2:])
	case "hn":
		runHackerNews(os.Args[2:])
	case "chart":
		runChart(os.Args[2:])
	case "tasks":
		runTasks(os.Args[2:])
	case "skills":
		runSkills(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// 🔧 公共初始化
// =============================================================================

// setup 加载配置并初始化日志，所有子命令共用。
func setup(configPath string) (*config.Config, *zap.Logger) {
	loader := config.NewLoader()
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	return cfg, initLogger(cfg.Log)
}

func fatal(logger *zap.Logger, msg string, err error) {
	logger.Error(msg, zap.Error(err))
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" || cfg.Format == "" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      encoding == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))

	logger, err := zapConfig.Build(opts...)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("SkillFlow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`SkillFlow - API skill toolbox

Usage:
  skillflow <command> [options]

Commands:
  arxiv        Search arXiv papers
  tts          Synthesize speech from text (MiniMax, sync)
  tts-async    Long-text speech synthesis (MiniMax, async task)
  voice        Manage voices: list, clone, design
  transcribe   Transcribe audio via OpenAI Whisper
  music        Generate music from lyrics (MiniMax)
  video        Generate a video (Doubao Seedance)
  video-chain  Generate continuous multi-segment video
  news         Aggregate tech news from RSS feeds
  hn           Fetch newest Hacker News stories
  chart        Render CSV as an animated bar chart race
  tasks        Inspect the async task journal
  skills       List registered skills
  version      Show version information
  help         Show this help message

Common options:
  --config <path>   Path to configuration file (YAML)

Examples:
  skillflow arxiv --query "retrieval augmented generation" --max 10
  skillflow tts --text "hello world" --voice male-qn-qingse --out hello.mp3
  skillflow transcribe --audio talk.mp3 --format srt --out talk.srt
  skillflow video --prompt "a cat surfing at sunset" --duration 5
  skillflow chart --csv data.csv --out race.html --title "Top brands"`)
}
