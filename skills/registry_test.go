package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	return input, nil
}

func failHandler(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	return nil, fmt.Errorf("boom")
}

func TestRegisterAndInvoke(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	require.NoError(t, r.Register(&Definition{
		Name:     "echo",
		Category: CategoryData,
	}, echoHandler))

	out, err := r.Invoke(context.Background(), "echo", json.RawMessage(`{"x":1}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(out))

	inst, ok := r.Get("echo")
	require.True(t, ok)
	assert.Equal(t, int64(1), inst.Stats.Invocations)
	assert.Equal(t, int64(1), inst.Stats.Successes)
	assert.NotNil(t, inst.Stats.LastInvoked)
}

func TestGetByName(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	require.NoError(t, r.Register(&Definition{
		ID:   "speech.tts",
		Name: "Text to Speech",
	}, echoHandler))

	inst, ok := r.GetByName("Text to Speech")
	require.True(t, ok)
	assert.Equal(t, "speech.tts", inst.Definition.ID)

	_, ok = r.GetByName("nonexistent")
	assert.False(t, ok)
}

func TestRegisterDuplicate(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	require.NoError(t, r.Register(&Definition{Name: "dup"}, echoHandler))
	assert.Error(t, r.Register(&Definition{Name: "dup"}, echoHandler))
}

func TestRegisterRequiresName(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	assert.Error(t, r.Register(&Definition{}, echoHandler))
}

func TestInvokeFailureCountsStats(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	require.NoError(t, r.Register(&Definition{Name: "fail"}, failHandler))

	_, err := r.Invoke(context.Background(), "fail", nil)
	assert.Error(t, err)

	inst, _ := r.Get("fail")
	assert.Equal(t, int64(1), inst.Stats.Failures)
	assert.Equal(t, int64(0), inst.Stats.Successes)
}

func TestInvokeUnknownAndDisabled(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	_, err := r.Invoke(context.Background(), "ghost", nil)
	assert.ErrorContains(t, err, "not found")

	require.NoError(t, r.Register(&Definition{Name: "sleepy"}, echoHandler))
	require.NoError(t, r.Disable("sleepy"))
	_, err = r.Invoke(context.Background(), "sleepy", nil)
	assert.ErrorContains(t, err, "disabled")

	require.NoError(t, r.Enable("sleepy"))
	_, err = r.Invoke(context.Background(), "sleepy", nil)
	assert.NoError(t, err)
}

func TestUnregister(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	require.NoError(t, r.Register(&Definition{Name: "gone", Category: CategoryAudio}, echoHandler))
	require.NoError(t, r.Unregister("gone"))

	_, ok := r.Get("gone")
	assert.False(t, ok)
	assert.Empty(t, r.ListByCategory(CategoryAudio))
	assert.Error(t, r.Unregister("gone"))
}

func TestListAndSearch(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	require.NoError(t, r.Register(&Definition{
		Name: "b.skill", Category: CategoryAudio,
		Description: "synthesize speech", Tags: []string{"tts"},
	}, echoHandler))
	require.NoError(t, r.Register(&Definition{
		Name: "a.skill", Category: CategoryData,
		Description: "render charts", Tags: []string{"viz"},
	}, echoHandler))

	all := r.ListAll()
	require.Len(t, all, 2)
	assert.Equal(t, "a.skill", all[0].Definition.ID)

	byQuery := r.Search("speech", nil)
	require.Len(t, byQuery, 1)
	assert.Equal(t, "b.skill", byQuery[0].Definition.ID)

	byTag := r.Search("", []string{"viz"})
	require.Len(t, byTag, 1)
	assert.Equal(t, "a.skill", byTag[0].Definition.ID)
}

func TestExportImport(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	require.NoError(t, r.Register(&Definition{Name: "exported", Category: CategoryVideo}, echoHandler))

	data, err := r.Export()
	require.NoError(t, err)

	r2 := NewRegistry(nil)
	require.NoError(t, r2.Import(data))

	inst, ok := r2.Get("exported")
	require.True(t, ok)
	// 导入的技能没有 Handler，默认禁用
	assert.False(t, inst.Enabled)
	_, err = r2.Invoke(context.Background(), "exported", nil)
	assert.Error(t, err)
}
