package music

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SectionTag 标注歌词段落类型.
type SectionTag string

const (
	TagIntro  SectionTag = "Intro"
	TagVerse  SectionTag = "Verse"
	TagChorus SectionTag = "Chorus"
	TagBridge SectionTag = "Bridge"
	TagOutro  SectionTag = "Outro"
)

// Section 是一段带标注的歌词.
type Section struct {
	Tag   SectionTag
	Lines []string
}

// ComposeLyrics 将结构化段落拼接为带标注的歌词文本.
// 输出形如:
//
//	[Verse]
//	line one
//	line two
//
//	[Chorus]
//	...
func ComposeLyrics(sections []Section) (string, error) {
	if len(sections) == 0 {
		return "", fmt.Errorf("at least one section is required")
	}

	var sb strings.Builder
	for i, sec := range sections {
		if len(sec.Lines) == 0 {
			return "", fmt.Errorf("section %d (%s) has no lines", i, sec.Tag)
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "[%s]\n", sec.Tag)
		for _, line := range sec.Lines {
			sb.WriteString(strings.TrimSpace(line))
			sb.WriteString("\n")
		}
	}

	lyrics := sb.String()
	if n := utf8.RuneCountInString(lyrics); n > maxLyricsLen {
		return "", fmt.Errorf("composed lyrics exceed %d characters (got %d)", maxLyricsLen, n)
	}
	return lyrics, nil
}
