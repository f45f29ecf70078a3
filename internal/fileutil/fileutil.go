// Package fileutil 提供输出文件命名与图片编码的通用工具。
package fileutil

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ValidImageExtensions 列出图生视频接受的图片扩展名。
var ValidImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// SanitizeFilename 将任意文本裁剪为可安全用于文件名的片段。
// 截断到 maxLength，空格转下划线，仅保留字母数字与 - _，
// 全部被过滤时回退到 fallback。
func SanitizeFilename(text string, maxLength int, fallback string) string {
	if maxLength > 0 && len(text) > maxLength {
		text = text[:maxLength]
	}
	text = strings.ReplaceAll(text, " ", "_")

	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}

// OutputPath 基于提示词与时间戳生成输出文件路径，并确保目录存在。
func OutputPath(prompt, dir, ext string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	stamp := time.Now().Format("20060102_150405")
	name := fmt.Sprintf("%s_%s%s", SanitizeFilename(prompt, 20, "output"), stamp, ext)
	return filepath.Join(dir, name), nil
}

// ImageToDataURI 读取图片文件并编码为 data URI。
func ImageToDataURI(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mime, ok := imageMIMETypes[ext]
	if !ok {
		return "", fmt.Errorf("unsupported image format %q (supported: %s)",
			ext, strings.Join(ValidImageExtensions, ", "))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}
