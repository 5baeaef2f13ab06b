package content

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/dice"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/model"
)

// File is the on-disk JSON layout for a content file.
type File struct {
	Categories      []model.Category       `json:"categories"`
	Questions       []model.Question       `json:"questions"`
	Topics          []model.Topic          `json:"topics"`
	BuzzerQuestions []model.BuzzerQuestion `json:"buzzerQuestions"`
}

// StaticProvider serves content from an in-memory pool loaded at startup,
// either from a JSON file or from the built-in sample set.
type StaticProvider struct {
	categories []model.Category
	questions  map[string][]model.Question // categoryID -> questions
	topics     []model.Topic
	buzzer     []model.BuzzerQuestion
	roller     *dice.Roller
}

// NewStaticProvider builds a provider from explicit pools.
func NewStaticProvider(categories []model.Category, questions []model.Question, topics []model.Topic, buzzer []model.BuzzerQuestion, roller *dice.Roller) *StaticProvider {
	byCat := make(map[string][]model.Question)
	for _, q := range questions {
		byCat[q.CategoryID] = append(byCat[q.CategoryID], q)
	}
	cats := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		c.QuestionCount = len(byCat[c.ID])
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].ID < cats[j].ID })
	return &StaticProvider{
		categories: cats,
		questions:  byCat,
		topics:     topics,
		buzzer:     buzzer,
		roller:     roller,
	}
}

// LoadFile builds a provider from a JSON content file.
func LoadFile(path string, roller *dice.Roller) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse content file: %w", err)
	}
	if len(f.Categories) == 0 || len(f.Questions) == 0 {
		return nil, fmt.Errorf("content file has no playable categories")
	}
	return NewStaticProvider(f.Categories, f.Questions, f.Topics, f.BuzzerQuestions, roller), nil
}

// ListCategories returns all categories that have at least one question.
func (p *StaticProvider) ListCategories() []model.Category {
	out := make([]model.Category, 0, len(p.categories))
	for _, c := range p.categories {
		if c.QuestionCount > 0 {
			out = append(out, c)
		}
	}
	return out
}

// CategoryMeta looks up a category by id.
func (p *StaticProvider) CategoryMeta(categoryID string) (model.Category, bool) {
	for _, c := range p.categories {
		if c.ID == categoryID {
			return c, true
		}
	}
	return model.Category{}, false
}

// DrawQuestions picks count questions from a category, avoiding excluded ids
// where possible. When the unused pool is smaller than count, the exclusion
// is dropped and the full pool is drawn from again.
func (p *StaticProvider) DrawQuestions(categoryID string, count int, excludeIDs []string) ([]model.Question, error) {
	pool := p.questions[categoryID]
	if len(pool) == 0 {
		return nil, fmt.Errorf("category %s has no questions", categoryID)
	}

	fresh := filterQuestions(pool, toSet(excludeIDs))
	if len(fresh) < count {
		fresh = append([]model.Question(nil), pool...)
	}
	p.shuffleQuestions(fresh)
	if count > len(fresh) {
		count = len(fresh)
	}
	return fresh[:count], nil
}

// DrawCollectiveTopic picks an unused topic, or nil when no topics exist.
func (p *StaticProvider) DrawCollectiveTopic(excludeIDs []string) *model.Topic {
	if len(p.topics) == 0 {
		return nil
	}
	used := toSet(excludeIDs)
	fresh := make([]model.Topic, 0, len(p.topics))
	for _, t := range p.topics {
		if !used[t.ID] {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) == 0 {
		fresh = p.topics
	}
	t := fresh[p.roller.Intn(len(fresh))]
	return &t
}

// DrawBuzzerQuestions picks up to count unused buzzer questions, or nil when
// none exist.
func (p *StaticProvider) DrawBuzzerQuestions(excludeIDs []string, count int) []model.BuzzerQuestion {
	if len(p.buzzer) == 0 {
		return nil
	}
	used := toSet(excludeIDs)
	fresh := make([]model.BuzzerQuestion, 0, len(p.buzzer))
	for _, q := range p.buzzer {
		if !used[q.ID] {
			fresh = append(fresh, q)
		}
	}
	if len(fresh) < count {
		fresh = append([]model.BuzzerQuestion(nil), p.buzzer...)
	}
	for i := len(fresh) - 1; i > 0; i-- {
		j := p.roller.Intn(i + 1)
		fresh[i], fresh[j] = fresh[j], fresh[i]
	}
	if count > len(fresh) {
		count = len(fresh)
	}
	return fresh[:count]
}

func (p *StaticProvider) shuffleQuestions(qs []model.Question) {
	for i := len(qs) - 1; i > 0; i-- {
		j := p.roller.Intn(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}

func filterQuestions(pool []model.Question, used map[string]bool) []model.Question {
	out := make([]model.Question, 0, len(pool))
	for _, q := range pool {
		if !used[q.ID] {
			out = append(out, q)
		}
	}
	return out
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
