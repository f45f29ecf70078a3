package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/skillflow/config"
	"github.com/BaSui01/skillflow/internal/fileutil"
	"github.com/BaSui01/skillflow/speech"
	"github.com/BaSui01/skillflow/store"
)

// =============================================================================
// 🗣️ tts 命令（同步合成）
// =============================================================================

func runTTS(args []string) {
	fs := flag.NewFlagSet("tts", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	text := fs.String("text", "", "Text to synthesize (required, <=10000 chars)")
	voice := fs.String("voice", "", "Voice ID (required)")
	model := fs.String("model", "", "Speech model")
	emotion := fs.String("emotion", "", "Emotion: happy, sad, angry, ...")
	speed := fs.Float64("speed", 0, "Speech speed [0.5, 2]")
	format := fs.String("format", "", "Audio format: mp3, pcm, flac, wav")
	out := fs.String("out", "", "Output file path")
	fs.Parse(args)

	if *text == "" || *voice == "" {
		fmt.Println("Usage: skillflow tts --text <text> --voice <id> [--out file.mp3]")
		return
	}

	cfg, logger := setup(*configPath)
	defer logger.Sync()

	tts, err := speech.NewMiniMaxTTS(minimaxSpeechConfig(cfg), logger)
	if err != nil {
		fatal(logger, "failed to create TTS client", err)
	}

	path := *out
	if path == "" {
		path, err = fileutil.OutputPath(*text, cfg.Output.AudioDir, "."+defaultStr(*format, "mp3"))
		if err != nil {
			fatal(logger, "failed to build output path", err)
		}
	}

	req := &speech.TTSRequest{
		Text:    *text,
		Voice:   *voice,
		Model:   *model,
		Emotion: *emotion,
		Speed:   *speed,
		Format:  *format,
	}
	if err := tts.SynthesizeToFile(context.Background(), req, path); err != nil {
		fatal(logger, "speech synthesis failed", err)
	}
	fmt.Printf("Audio saved to %s\n", path)
}

// =============================================================================
// ⏳ tts-async 命令（长文本异步合成）
// =============================================================================

func runTTSAsync(args []string) {
	fs := flag.NewFlagSet("tts-async", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	text := fs.String("text", "", "Text to synthesize (<=50000 chars)")
	file := fs.String("file", "", "Read text from file instead of --text")
	voice := fs.String("voice", "", "Voice ID (required)")
	model := fs.String("model", "", "Speech model")
	out := fs.String("out", "", "Output file path")
	poll := fs.Duration("poll", 5*time.Second, "Poll interval")
	timeout := fs.Duration("timeout", 10*time.Minute, "Maximum wait time")
	fs.Parse(args)

	input := *text
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read text file: %v\n", err)
			os.Exit(1)
		}
		input = string(data)
	}
	if input == "" || *voice == "" {
		fmt.Println("Usage: skillflow tts-async --text <text>|--file <path> --voice <id> [--out file.mp3]")
		return
	}

	cfg, logger := setup(*configPath)
	defer logger.Sync()

	tts, err := speech.NewAsyncTTS(minimaxSpeechConfig(cfg), logger)
	if err != nil {
		fatal(logger, "failed to create async TTS client", err)
	}

	ctx := context.Background()
	task, err := tts.CreateTask(ctx, &speech.TTSRequest{
		Text:  input,
		Voice: *voice,
		Model: *model,
	}, 0)
	if err != nil {
		fatal(logger, "failed to create async task", err)
	}
	fmt.Printf("Task created: %d (usage: %d characters)\n", task.TaskID, task.UsageCharacters)

	journal := openJournal(cfg, logger)
	var journalID string
	if journal != nil {
		defer journal.Close()
		journalID, _ = journal.Record(ctx, &store.TaskRecord{
			Provider: "minimax",
			RemoteID: fmt.Sprintf("%d", task.TaskID),
			Kind:     store.KindTTSAsync,
			Prompt:   truncate(input, 200),
			Status:   "processing",
		})
	}

	result, err := tts.WaitForCompletion(ctx, task.TaskID, *poll, *timeout)
	if err != nil {
		if journal != nil && journalID != "" {
			journal.UpdateStatus(ctx, journalID, "failed", nil)
		}
		fatal(logger, "async task failed", err)
	}

	path := *out
	if path == "" {
		path, err = fileutil.OutputPath(input, cfg.Output.AudioDir, ".mp3")
		if err != nil {
			fatal(logger, "failed to build output path", err)
		}
	}
	if err := tts.DownloadResult(ctx, result.FileID, "audio", path); err != nil {
		fatal(logger, "failed to download result", err)
	}
	if journal != nil && journalID != "" {
		journal.UpdateStatus(ctx, journalID, "success", map[string]any{"output_path": path})
	}
	fmt.Printf("Audio saved to %s\n", path)
}

// =============================================================================
// 🎭 voice 命令（音色管理）
// =============================================================================

func runVoice(args []string) {
	if len(args) < 1 {
		fmt.Println(`Usage: skillflow voice <subcommand> [options]

Subcommands:
  list     List available voices
  clone    Clone a voice from an audio sample
  design   Design a voice from a text description`)
		return
	}

	switch args[0] {
	case "list":
		runVoiceList(args[1:])
	case "clone":
		runVoiceClone(args[1:])
	case "design":
		runVoiceDesign(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown voice subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func runVoiceList(args []string) {
	fs := flag.NewFlagSet("voice list", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	voiceType := fs.String("type", "all", "Voice type: system, voice_cloning, voice_generation, all")
	fs.Parse(args)

	cfg, logger := setup(*configPath)
	defer logger.Sync()

	vm, err := speech.NewVoiceManager(minimaxSpeechConfig(cfg), logger)
	if err != nil {
		fatal(logger, "failed to create voice manager", err)
	}

	list, err := vm.ListVoices(context.Background(), speech.VoiceType(*voiceType))
	if err != nil {
		fatal(logger, "failed to list voices", err)
	}

	printVoiceGroup("System voices", list.System)
	printVoiceGroup("Cloned voices", list.Cloned)
	printVoiceGroup("Generated voices", list.Generation)
}

func printVoiceGroup(title string, voices []speech.Voice) {
	if len(voices) == 0 {
		return
	}
	fmt.Printf("%s (%d):\n", title, len(voices))
	for _, v := range voices {
		line := "  " + v.ID
		if v.Name != "" {
			line += "  " + v.Name
		}
		if v.Description != "" {
			line += "  (" + v.Description + ")"
		}
		fmt.Println(line)
	}
	fmt.Println()
}

func runVoiceClone(args []string) {
	fs := flag.NewFlagSet("voice clone", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	audio := fs.String("audio", "", "Source audio file (required)")
	voiceID := fs.String("id", "", "New voice ID (required, >=8 chars, starts with a letter)")
	preview := fs.String("preview", "", "Preview text spoken with the cloned voice")
	fs.Parse(args)

	if *audio == "" || *voiceID == "" {
		fmt.Println("Usage: skillflow voice clone --audio sample.mp3 --id myvoice01")
		return
	}

	cfg, logger := setup(*configPath)
	defer logger.Sync()

	vm, err := speech.NewVoiceManager(minimaxSpeechConfig(cfg), logger)
	if err != nil {
		fatal(logger, "failed to create voice manager", err)
	}

	ctx := context.Background()
	fileID, err := vm.UploadFile(ctx, *audio, "voice_clone")
	if err != nil {
		fatal(logger, "failed to upload audio", err)
	}

	demo, err := vm.CloneVoice(ctx, &speech.CloneRequest{
		FileID:  fileID,
		VoiceID: *voiceID,
		Text:    *preview,
	})
	if err != nil {
		fatal(logger, "voice cloning failed", err)
	}

	fmt.Printf("Voice cloned: %s\n", *voiceID)
	if demo != "" {
		fmt.Printf("Demo audio: %s\n", demo)
	}
}

func runVoiceDesign(args []string) {
	fs := flag.NewFlagSet("voice design", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	prompt := fs.String("prompt", "", "Voice description (required)")
	preview := fs.String("preview", "", "Preview text (required)")
	out := fs.String("out", "", "Save trial audio to this file")
	fs.Parse(args)

	if *prompt == "" || *preview == "" {
		fmt.Println("Usage: skillflow voice design --prompt <description> --preview <text>")
		return
	}

	cfg, logger := setup(*configPath)
	defer logger.Sync()

	vm, err := speech.NewVoiceManager(minimaxSpeechConfig(cfg), logger)
	if err != nil {
		fatal(logger, "failed to create voice manager", err)
	}

	result, err := vm.DesignVoice(context.Background(), &speech.DesignRequest{
		Prompt:      *prompt,
		PreviewText: *preview,
	})
	if err != nil {
		fatal(logger, "voice design failed", err)
	}

	fmt.Printf("Voice designed: %s\n", result.VoiceID)
	if *out != "" {
		if err := os.WriteFile(*out, result.TrialAudio, 0644); err != nil {
			fatal(logger, "failed to save trial audio", err)
		}
		fmt.Printf("Trial audio saved to %s\n", *out)
	}
}

// =============================================================================
// 📝 transcribe 命令
// =============================================================================

func runTranscribe(args []string) {
	fs := flag.NewFlagSet("transcribe", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	audio := fs.String("audio", "", "Audio file to transcribe (required)")
	language := fs.String("language", "", "ISO-639-1 language hint")
	format := fs.String("format", "", "Response format: json, text, srt, vtt, verbose_json")
	out := fs.String("out", "", "Output file (for srt/vtt/text formats)")
	fs.Parse(args)

	if *audio == "" {
		fmt.Println("Usage: skillflow transcribe --audio talk.mp3 [--format srt --out talk.srt]")
		return
	}

	cfg, logger := setup(*configPath)
	defer logger.Sync()

	whisperCfg := speech.DefaultWhisperConfig()
	whisperCfg.APIKey = cfg.OpenAI.APIKey
	if cfg.OpenAI.BaseURL != "" {
		whisperCfg.BaseURL = cfg.OpenAI.BaseURL
	}
	if cfg.OpenAI.Model != "" {
		whisperCfg.Model = cfg.OpenAI.Model
	}
	stt, err := speech.NewWhisperSTT(whisperCfg, logger)
	if err != nil {
		fatal(logger, "failed to create transcription client", err)
	}

	resp, err := stt.TranscribeFile(context.Background(), *audio, &speech.STTRequest{
		Language:       *language,
		ResponseFormat: *format,
	})
	if err != nil {
		fatal(logger, "transcription failed", err)
	}

	if *out != "" {
		content := resp.Raw
		if content == "" {
			content = resp.Text
		}
		if strings.HasSuffix(*out, ".srt") {
			err = speech.WriteSRT(resp, *out)
		} else {
			err = os.WriteFile(*out, []byte(content), 0644)
		}
		if err != nil {
			fatal(logger, "failed to save transcription", err)
		}
		fmt.Printf("Transcription saved to %s\n", *out)
		return
	}
	fmt.Println(resp.Text)
}

// =============================================================================
// 🔧 共享辅助
// =============================================================================

func minimaxSpeechConfig(cfg *config.Config) speech.MiniMaxConfig {
	out := speech.DefaultMiniMaxConfig()
	out.APIKey = cfg.MiniMax.APIKey
	out.GroupID = cfg.MiniMax.GroupID
	if cfg.MiniMax.BaseURL != "" {
		out.BaseURL = cfg.MiniMax.BaseURL
	}
	if cfg.MiniMax.SpeechModel != "" {
		out.Model = cfg.MiniMax.SpeechModel
	}
	if cfg.MiniMax.Timeout > 0 {
		out.Timeout = cfg.MiniMax.Timeout
	}
	return out
}

// openJournal 打开任务日志，禁用或失败时返回 nil 并降级运行。
func openJournal(cfg *config.Config, logger *zap.Logger) *store.Journal {
	if !cfg.Journal.Enabled {
		return nil
	}
	journal, err := store.Open(cfg.Journal.Path, logger)
	if err != nil {
		logger.Warn("task journal unavailable", zap.Error(err))
		return nil
	}
	return journal
}

func defaultStr(v, d string) string {
	if v == "" {
		return d
	}
	return v
}
