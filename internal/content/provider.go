package content

import "github.com/Fizzyy89/nerdquiz-next-sub000/internal/model"

// Provider supplies categories, questions and bonus-round material. The
// orchestrator only consumes this interface; where the content actually lives
// is not its concern.
//
// All draws avoid previously-used ids where possible and fall back to the
// full pool when it is exhausted.
type Provider interface {
	ListCategories() []model.Category
	CategoryMeta(categoryID string) (model.Category, bool)
	DrawQuestions(categoryID string, count int, excludeIDs []string) ([]model.Question, error)
	DrawCollectiveTopic(excludeIDs []string) *model.Topic
	DrawBuzzerQuestions(excludeIDs []string, count int) []model.BuzzerQuestion
}
