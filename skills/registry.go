package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/skillflow/internal/metrics"
)

// Category 定义技能类别.
type Category string

const (
	CategoryResearch Category = "research" // 文献检索、资讯聚合
	CategoryAudio    Category = "audio"    // 语音合成、转写、音乐
	CategoryVideo    Category = "video"    // 视频生成
	CategoryData     Category = "data"     // 数据可视化
)

// Definition 定义一种标准化的技能.
type Definition struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Category    Category        `json:"category"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Instance 是一个已注册的技能实例。
type Instance struct {
	Definition *Definition `json:"definition"`
	Handler    Handler     `json:"-"`
	Enabled    bool        `json:"enabled"`
	Stats      Stats       `json:"stats"`
}

// Stats 跟踪技能使用统计.
type Stats struct {
	Invocations int64         `json:"invocations"`
	Successes   int64         `json:"successes"`
	Failures    int64         `json:"failures"`
	AvgLatency  time.Duration `json:"avg_latency"`
	LastInvoked *time.Time    `json:"last_invoked,omitempty"`
}

// Handler 执行一种技能.
type Handler func(ctx context.Context, input json.RawMessage) (json.RawMessage, error)

// Registry 管理技能登记、发现与调用。
type Registry struct {
	skills     map[string]*Instance
	byCategory map[Category][]*Instance
	logger     *zap.Logger
	metrics    *metrics.Collector
	mu         sync.RWMutex
}

// NewRegistry 创建新的技能注册表.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		skills:     make(map[string]*Instance),
		byCategory: make(map[Category][]*Instance),
		logger:     logger.With(zap.String("component", "skill_registry")),
	}
}

// WithMetrics 挂载指标收集器，返回自身便于链式调用。
func (r *Registry) WithMetrics(c *metrics.Collector) *Registry {
	r.metrics = c
	return r
}

// Register 注册技能。ID 为空时使用 Name。
func (r *Registry) Register(def *Definition, handler Handler) error {
	if def.Name == "" {
		return fmt.Errorf("skill name is required")
	}
	if def.ID == "" {
		def.ID = def.Name
	}
	if def.CreatedAt.IsZero() {
		def.CreatedAt = time.Now()
	}
	def.UpdatedAt = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.skills[def.ID]; exists {
		return fmt.Errorf("skill already registered: %s", def.ID)
	}

	instance := &Instance{
		Definition: def,
		Handler:    handler,
		Enabled:    true,
	}
	r.skills[def.ID] = instance
	r.byCategory[def.Category] = append(r.byCategory[def.Category], instance)

	r.logger.Info("skill registered",
		zap.String("id", def.ID),
		zap.String("category", string(def.Category)),
	)
	return nil
}

// Unregister 删除一个技能。
func (r *Registry) Unregister(skillID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	instance, ok := r.skills[skillID]
	if !ok {
		return fmt.Errorf("skill not found: %s", skillID)
	}
	delete(r.skills, skillID)

	cat := instance.Definition.Category
	skills := r.byCategory[cat]
	for i, s := range skills {
		if s.Definition.ID == skillID {
			r.byCategory[cat] = append(skills[:i], skills[i+1:]...)
			break
		}
	}

	r.logger.Info("skill unregistered", zap.String("id", skillID))
	return nil
}

// Get 按 ID 获取技能。
func (r *Registry) Get(skillID string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	skill, ok := r.skills[skillID]
	return skill, ok
}

// GetByName 按名称检索技能。
func (r *Registry) GetByName(name string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, skill := range r.skills {
		if skill.Definition.Name == name {
			return skill, true
		}
	}
	return nil, false
}

// ListByCategory 返回一个类别中的技能.
func (r *Registry) ListByCategory(category Category) []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Instance{}, r.byCategory[category]...)
}

// ListAll 返回所有注册技能，按 ID 排序。
func (r *Registry) ListAll() []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	skills := make([]*Instance, 0, len(r.skills))
	for _, s := range r.skills {
		skills = append(skills, s)
	}
	sort.Slice(skills, func(i, j int) bool {
		return skills[i].Definition.ID < skills[j].Definition.ID
	})
	return skills
}

// Search 按关键词或标签搜索技能.
func (r *Registry) Search(query string, tags []string) []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query = strings.ToLower(query)
	var results []*Instance
	for _, skill := range r.skills {
		if query != "" {
			if strings.Contains(strings.ToLower(skill.Definition.Name), query) ||
				strings.Contains(strings.ToLower(skill.Definition.Description), query) {
				results = append(results, skill)
				continue
			}
		}
		for _, tag := range tags {
			if matched := containsTag(skill.Definition.Tags, tag); matched {
				results = append(results, skill)
				break
			}
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Definition.ID < results[j].Definition.ID
	})
	return results
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Invoke 调用一个技能并更新统计。
func (r *Registry) Invoke(ctx context.Context, skillID string, input json.RawMessage) (json.RawMessage, error) {
	r.mu.RLock()
	skill, ok := r.skills[skillID]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("skill not found: %s", skillID)
	}
	if !skill.Enabled {
		return nil, fmt.Errorf("skill disabled: %s", skillID)
	}
	if skill.Handler == nil {
		return nil, fmt.Errorf("skill has no handler: %s", skillID)
	}

	start := time.Now()
	result, err := skill.Handler(ctx, input)
	latency := time.Since(start)

	r.mu.Lock()
	skill.Stats.Invocations++
	if err != nil {
		skill.Stats.Failures++
	} else {
		skill.Stats.Successes++
	}
	now := time.Now()
	skill.Stats.LastInvoked = &now
	n := skill.Stats.Invocations
	skill.Stats.AvgLatency = time.Duration((int64(skill.Stats.AvgLatency)*(n-1) + int64(latency)) / n)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.RecordSkillInvocation(skillID, err, latency)
	}
	return result, err
}

// Enable 启用一个技能。
func (r *Registry) Enable(skillID string) error {
	return r.setEnabled(skillID, true)
}

// Disable 禁用一个技能。
func (r *Registry) Disable(skillID string) error {
	return r.setEnabled(skillID, false)
}

func (r *Registry) setEnabled(skillID string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	skill, ok := r.skills[skillID]
	if !ok {
		return fmt.Errorf("skill not found: %s", skillID)
	}
	skill.Enabled = enabled
	return nil
}

// Export 导出所有技能定义为 JSON。
func (r *Registry) Export() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*Definition, 0, len(r.skills))
	for _, s := range r.skills {
		defs = append(defs, s.Definition)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return json.MarshalIndent(defs, "", "  ")
}

// Import 导入技能定义（Handler 需另行注册，导入的技能默认禁用）.
func (r *Registry) Import(data []byte) error {
	var defs []*Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return fmt.Errorf("failed to parse skill definitions: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, def := range defs {
		if _, exists := r.skills[def.ID]; exists {
			continue
		}
		r.skills[def.ID] = &Instance{Definition: def, Enabled: false}
		r.byCategory[def.Category] = append(r.byCategory[def.Category], r.skills[def.ID])
	}

	r.logger.Info("skills imported", zap.Int("count", len(defs)))
	return nil
}
