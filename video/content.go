package video

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/BaSui01/skillflow/internal/fileutil"
)

// buildContent 将请求装配为 API 的 content 数组.
// 文本部分只携带提示词，生成参数走请求体顶层字段；本地图片转为 data URI。
func buildContent(req *Request) ([]contentPart, error) {
	parts := make([]contentPart, 0, len(req.Images)+1)

	if text := strings.TrimSpace(req.Prompt); text != "" {
		parts = append(parts, contentPart{Type: "text", Text: text})
	}

	for i, img := range req.Images {
		uri, err := resolveImageURL(img)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		part := contentPart{Type: "image_url", Role: string(img.Role)}
		part.ImageURL = &struct {
			URL string `json:"url"`
		}{URL: uri}
		parts = append(parts, part)
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("empty content")
	}
	return parts, nil
}

// resolveImageURL 将参考图解析为可提交的地址.
// 远程 URL 原样透传，本地文件编码为 base64 data URI。
func resolveImageURL(img ImageInput) (string, error) {
	if img.URL != "" {
		u, err := url.Parse(img.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "data") {
			return "", fmt.Errorf("invalid image URL: %s", img.URL)
		}
		return img.URL, nil
	}
	if img.Path == "" {
		return "", fmt.Errorf("image has neither path nor URL")
	}
	return fileutil.ImageToDataURI(img.Path)
}
