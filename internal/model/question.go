package model

// QuestionKind distinguishes multiple-choice from estimation questions.
type QuestionKind string

const (
	QuestionChoice     QuestionKind = "choice"
	QuestionEstimation QuestionKind = "estimation"
)

// Question is a runtime question instance. Immutable once drawn for a round;
// the correct answer is stripped from client views until reveal.
type Question struct {
	ID         string       `json:"id"`
	CategoryID string       `json:"categoryId"`
	Kind       QuestionKind `json:"kind"`
	Text       string       `json:"text"`

	// Choice questions
	Options    []string `json:"options,omitempty"`
	CorrectIdx int      `json:"correctIdx,omitempty"`

	// Estimation questions
	Target float64 `json:"target,omitempty"`
	Unit   string  `json:"unit,omitempty"`
}

// Category describes a playable question category.
type Category struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	QuestionCount int    `json:"questionCount"`
}

// TopicItem is one nameable entry of a collective bonus topic, with optional
// alias strings accepted by fuzzy matching.
type TopicItem struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
}

// Topic is the item list for a collective-elimination bonus round.
type Topic struct {
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Items []TopicItem `json:"items"`
}

// BuzzerQuestion is a free-text question revealed character by character in
// the buzzer bonus round.
type BuzzerQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Answer  string   `json:"answer"`
	Aliases []string `json:"aliases,omitempty"`
}
