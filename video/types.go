package video

import "time"

// 模型标识。多参考图输入仅 lite 模型支持，客户端会自动切换。
const (
	ModelSeedancePro  = "doubao-seedance-1-5-pro-251215"
	ModelSeedanceLite = "doubao-seedance-1-0-lite-i2v-250428"
)

// TaskStatus 是视频生成任务状态.
type TaskStatus string

const (
	StatusQueued    TaskStatus = "queued"
	StatusRunning   TaskStatus = "running"
	StatusSucceeded TaskStatus = "succeeded"
	StatusFailed    TaskStatus = "failed"
)

// Terminal 报告状态是否为终态。
func (s TaskStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// 画面比例与分辨率的合法取值。
var (
	Ratios      = []string{"16:9", "9:16", "1:1", "4:3", "3:4", "21:9", "adaptive"}
	Resolutions = []string{"480p", "720p", "1080p"}
)

// ImageRole 标注参考图在生成中的用途.
type ImageRole string

const (
	RoleFirstFrame     ImageRole = "first_frame"
	RoleLastFrame      ImageRole = "last_frame"
	RoleReferenceImage ImageRole = "reference_image"
)

// ImageInput 是一张参考图及其角色.
type ImageInput struct {
	// Path 为本地文件路径，URL 为远程地址，二选一。
	Path string
	URL  string
	Role ImageRole
}

// Request 代表一次视频生成请求.
type Request struct {
	Prompt          string       `json:"prompt"`
	Model           string       `json:"model,omitempty"`
	Images          []ImageInput `json:"-"`
	Duration        int          `json:"duration,omitempty"` // seconds, [4, 12]
	Ratio           string       `json:"ratio,omitempty"`
	Resolution      string       `json:"resolution,omitempty"`
	FPS             int          `json:"fps,omitempty"`
	Seed            int64        `json:"seed,omitempty"`
	CameraFixed     bool         `json:"camera_fixed,omitempty"`
	Watermark       bool         `json:"watermark,omitempty"`
	Audio           bool         `json:"audio,omitempty"`
	ReturnLastFrame bool         `json:"return_last_frame,omitempty"`
}

// Task 是已提交的生成任务.
type Task struct {
	ID        string     `json:"id"`
	Model     string     `json:"model"`
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// Result 是任务的最终结果.
// 结果 URL 约 24 小时后过期，需及时下载。
type Result struct {
	TaskID       string     `json:"task_id"`
	Status       TaskStatus `json:"status"`
	VideoURL     string     `json:"video_url,omitempty"`
	LastFrameURL string     `json:"last_frame_url,omitempty"`
	Error        string     `json:"error,omitempty"`
	ExpiresAt    time.Time  `json:"expires_at,omitempty"`
}
