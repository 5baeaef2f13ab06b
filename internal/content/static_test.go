package content

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/dice"
)

func newTestProvider(t *testing.T) *StaticProvider {
	t.Helper()
	return NewSampleProvider(dice.New(&dice.Config{Seed: 7}))
}

func TestListCategories(t *testing.T) {
	p := newTestProvider(t)
	cats := p.ListCategories()
	require.NotEmpty(t, cats)
	for _, c := range cats {
		assert.NotEmpty(t, c.ID)
		assert.Greater(t, c.QuestionCount, 0)
	}
}

func TestCategoryMeta(t *testing.T) {
	p := newTestProvider(t)

	meta, ok := p.CategoryMeta("science")
	require.True(t, ok)
	assert.Equal(t, "Science", meta.Name)

	_, ok = p.CategoryMeta("nope")
	assert.False(t, ok)
}

func TestDrawQuestionsAvoidsExcluded(t *testing.T) {
	p := newTestProvider(t)

	first, err := p.DrawQuestions("science", 3, nil)
	require.NoError(t, err)
	require.Len(t, first, 3)

	var used []string
	for _, q := range first {
		used = append(used, q.ID)
	}

	second, err := p.DrawQuestions("science", 2, used)
	require.NoError(t, err)
	require.Len(t, second, 2)
	for _, q := range second {
		assert.NotContains(t, used, q.ID)
	}
}

func TestDrawQuestionsResetsExhaustedPool(t *testing.T) {
	p := newTestProvider(t)

	all, err := p.DrawQuestions("science", 5, nil)
	require.NoError(t, err)
	require.Len(t, all, 5)

	var used []string
	for _, q := range all {
		used = append(used, q.ID)
	}

	// Every question is used up; the draw must fall back to the full pool
	// rather than fail.
	again, err := p.DrawQuestions("science", 3, used)
	require.NoError(t, err)
	assert.Len(t, again, 3)
}

func TestDrawQuestionsUnknownCategory(t *testing.T) {
	p := newTestProvider(t)
	_, err := p.DrawQuestions("nope", 3, nil)
	assert.Error(t, err)
}

func TestDrawCollectiveTopic(t *testing.T) {
	p := newTestProvider(t)

	first := p.DrawCollectiveTopic(nil)
	require.NotNil(t, first)

	second := p.DrawCollectiveTopic([]string{first.ID})
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)

	// Both topics used: the pool resets instead of returning nil.
	third := p.DrawCollectiveTopic([]string{first.ID, second.ID})
	assert.NotNil(t, third)
}

func TestDrawBuzzerQuestions(t *testing.T) {
	p := newTestProvider(t)

	qs := p.DrawBuzzerQuestions(nil, 3)
	require.Len(t, qs, 3)

	seen := make(map[string]bool)
	for _, q := range qs {
		assert.False(t, seen[q.ID])
		seen[q.ID] = true
	}
}

func TestEmptyPoolsReturnNil(t *testing.T) {
	p := NewStaticProvider(nil, nil, nil, nil, dice.New(&dice.Config{Seed: 1}))
	assert.Nil(t, p.DrawCollectiveTopic(nil))
	assert.Nil(t, p.DrawBuzzerQuestions(nil, 3))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "content.json")

	data, err := json.Marshal(SampleFile())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	p, err := LoadFile(path, dice.New(&dice.Config{Seed: 1}))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ListCategories())
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile("/does/not/exist.json", dice.New(nil))
	assert.Error(t, err)

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{}`), 0o644))
	_, err = LoadFile(empty, dice.New(nil))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte(`not json`), 0o644))
	_, err = LoadFile(garbage, dice.New(nil))
	assert.Error(t, err)
}
