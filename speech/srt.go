package speech

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// RenderSRT 将转写片段渲染为 SubRip 字幕文本.
func RenderSRT(segments []Segment) string {
	var sb strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n",
			i+1,
			srtTimestamp(seg.Start),
			srtTimestamp(seg.End),
			strings.TrimSpace(seg.Text))
	}
	return sb.String()
}

// WriteSRT 将字幕写入文件，优先使用服务端返回的原始 SRT。
func WriteSRT(resp *STTResponse, path string) error {
	content := resp.Raw
	if content == "" {
		if len(resp.Segments) == 0 {
			return fmt.Errorf("no segments available, request response_format=srt or verbose_json")
		}
		content = RenderSRT(resp.Segments)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write srt file: %w", err)
	}
	return nil
}

// srtTimestamp 格式化为 HH:MM:SS,mmm。
func srtTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	ms := (d - s*time.Second) / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
