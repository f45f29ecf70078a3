package store

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// TaskKind 标注任务所属的能力域.
type TaskKind string

const (
	KindTTSAsync TaskKind = "tts_async"
	KindVideo    TaskKind = "video"
	KindMusic    TaskKind = "music"
)

// TaskRecord 是一条持久化的异步任务记录.
// 生成类服务的结果 URL 会过期（约 24 小时），记录过期时间
// 便于提醒及时下载。
type TaskRecord struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Provider   string     `gorm:"size:64;index" json:"provider"`
	RemoteID   string     `gorm:"size:128;index" json:"remote_id"`
	Kind       TaskKind   `gorm:"size:32;index" json:"kind"`
	Prompt     string     `gorm:"type:text" json:"prompt,omitempty"`
	Status     string     `gorm:"size:32;index" json:"status"`
	ResultURL  string     `gorm:"type:text" json:"result_url,omitempty"`
	OutputPath string     `gorm:"type:text" json:"output_path,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName 指定表名。
func (TaskRecord) TableName() string { return "task_journal" }

// Journal 是基于 SQLite 的异步任务日志.
type Journal struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open 打开（或创建）任务日志数据库并迁移表结构.
func Open(path string, logger *zap.Logger) (*Journal, error) {
	if path == "" {
		path = "skillflow.db"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	if err := db.AutoMigrate(&TaskRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal schema: %w", err)
	}

	return &Journal{
		db:     db,
		logger: logger.With(zap.String("component", "journal")),
	}, nil
}

// Record 写入一条新任务记录并返回其 ID。
func (j *Journal) Record(ctx context.Context, rec *TaskRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = "queued"
	}
	if err := j.db.WithContext(ctx).Create(rec).Error; err != nil {
		return "", fmt.Errorf("failed to record task: %w", err)
	}
	j.logger.Debug("task recorded",
		zap.String("id", rec.ID),
		zap.String("provider", rec.Provider),
		zap.String("kind", string(rec.Kind)))
	return rec.ID, nil
}

// UpdateStatus 更新任务状态及可选的结果字段.
func (j *Journal) UpdateStatus(ctx context.Context, id, status string, updates map[string]any) error {
	values := map[string]any{"status": status}
	for k, v := range updates {
		values[k] = v
	}
	result := j.db.WithContext(ctx).Model(&TaskRecord{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task not found: %s", id)
	}
	return nil
}

// Get 按 ID 读取任务记录。
func (j *Journal) Get(ctx context.Context, id string) (*TaskRecord, error) {
	var rec TaskRecord
	err := j.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("task not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return &rec, nil
}

// ListPending 返回尚未到达终态的任务，按创建时间升序.
func (j *Journal) ListPending(ctx context.Context) ([]TaskRecord, error) {
	var recs []TaskRecord
	err := j.db.WithContext(ctx).
		Where("status NOT IN ?", []string{"succeeded", "success", "failed", "expired"}).
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}
	return recs, nil
}

// ListExpiring 返回结果 URL 将在 within 时间内过期且尚未下载的任务.
func (j *Journal) ListExpiring(ctx context.Context, within time.Duration) ([]TaskRecord, error) {
	cutoff := time.Now().Add(within)
	var recs []TaskRecord
	err := j.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ? AND expires_at > ? AND output_path = ''",
			cutoff, time.Now()).
		Order("expires_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring tasks: %w", err)
	}
	return recs, nil
}

// List 返回最近的任务记录，limit <= 0 时返回全部。
func (j *Journal) List(ctx context.Context, limit int) ([]TaskRecord, error) {
	var recs []TaskRecord
	q := j.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return recs, nil
}

// Close 关闭底层数据库连接。
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
