package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/BaSui01/skillflow/internal/fileutil"
	"github.com/BaSui01/skillflow/music"
)

// =============================================================================
// 🎵 music 命令
// =============================================================================

func runMusic(args []string) {
	fs := flag.NewFlagSet("music", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	lyrics := fs.String("lyrics", "", "Lyrics text (use [Verse]/[Chorus] tags)")
	lyricsFile := fs.String("lyrics-file", "", "Read lyrics from file instead of --lyrics")
	prompt := fs.String("prompt", "", "Style description (genre, mood, scene)")
	out := fs.String("out", "", "Output file path")
	fs.Parse(args)

	text := *lyrics
	if *lyricsFile != "" {
		data, err := os.ReadFile(*lyricsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read lyrics file: %v\n", err)
			os.Exit(1)
		}
		text = string(data)
	}
	if text == "" {
		fmt.Println("Usage: skillflow music --lyrics <text>|--lyrics-file <path> [--prompt <style>] [--out song.mp3]")
		return
	}

	cfg, logger := setup(*configPath)
	defer logger.Sync()

	musicCfg := music.DefaultConfig()
	musicCfg.APIKey = cfg.MiniMax.APIKey
	musicCfg.GroupID = cfg.MiniMax.GroupID
	if cfg.MiniMax.BaseURL != "" {
		musicCfg.BaseURL = cfg.MiniMax.BaseURL
	}
	if cfg.MiniMax.MusicModel != "" {
		musicCfg.Model = cfg.MiniMax.MusicModel
	}
	if cfg.MiniMax.Timeout > 0 {
		musicCfg.Timeout = cfg.MiniMax.Timeout
	}
	client, err := music.NewClient(musicCfg, logger)
	if err != nil {
		fatal(logger, "failed to create music client", err)
	}

	path := *out
	if path == "" {
		name := *prompt
		if name == "" {
			name = text
		}
		path, err = fileutil.OutputPath(name, cfg.Output.AudioDir, ".mp3")
		if err != nil {
			fatal(logger, "failed to build output path", err)
		}
	}

	req := &music.Request{Lyrics: text, Prompt: *prompt}
	if err := client.GenerateToFile(context.Background(), req, path); err != nil {
		fatal(logger, "music generation failed", err)
	}
	fmt.Printf("Music saved to %s\n", path)
}
