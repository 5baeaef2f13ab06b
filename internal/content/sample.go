package content

import (
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/dice"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/model"
)

// NewSampleProvider returns a provider backed by a small built-in question
// set, used when no content file is configured. It is also what the tests and
// the bot simulation run against.
func NewSampleProvider(roller *dice.Roller) *StaticProvider {
	f := SampleFile()
	return NewStaticProvider(f.Categories, f.Questions, f.Topics, f.BuzzerQuestions, roller)
}

// SampleFile returns the built-in sample content in the content-file layout,
// so the seed tool can write it out as a starting point for custom packs.
func SampleFile() *File {
	categories := []model.Category{
		{ID: "science", Name: "Science", Icon: "🔬"},
		{ID: "history", Name: "History", Icon: "🏛️"},
		{ID: "geography", Name: "Geography", Icon: "🌍"},
		{ID: "movies", Name: "Movies", Icon: "🎬"},
	}

	questions := []model.Question{
		{ID: "sci-1", CategoryID: "science", Kind: model.QuestionChoice, Text: "What is the chemical symbol for gold?",
			Options: []string{"Au", "Ag", "Go", "Gd"}, CorrectIdx: 0},
		{ID: "sci-2", CategoryID: "science", Kind: model.QuestionChoice, Text: "Which planet has the most moons?",
			Options: []string{"Jupiter", "Saturn", "Uranus", "Neptune"}, CorrectIdx: 1},
		{ID: "sci-3", CategoryID: "science", Kind: model.QuestionEstimation, Text: "How many bones does an adult human skeleton have?",
			Target: 206, Unit: "bones"},
		{ID: "sci-4", CategoryID: "science", Kind: model.QuestionChoice, Text: "What particle carries a negative charge?",
			Options: []string{"Proton", "Neutron", "Electron", "Photon"}, CorrectIdx: 2},
		{ID: "sci-5", CategoryID: "science", Kind: model.QuestionEstimation, Text: "What is the speed of light in km/s?",
			Target: 299792, Unit: "km/s"},

		{ID: "his-1", CategoryID: "history", Kind: model.QuestionChoice, Text: "In which year did the Berlin Wall fall?",
			Options: []string{"1987", "1989", "1991", "1993"}, CorrectIdx: 1},
		{ID: "his-2", CategoryID: "history", Kind: model.QuestionChoice, Text: "Who was the first emperor of Rome?",
			Options: []string{"Julius Caesar", "Nero", "Augustus", "Caligula"}, CorrectIdx: 2},
		{ID: "his-3", CategoryID: "history", Kind: model.QuestionEstimation, Text: "In what year was the printing press invented?",
			Target: 1440, Unit: "year"},
		{ID: "his-4", CategoryID: "history", Kind: model.QuestionChoice, Text: "Which civilization built Machu Picchu?",
			Options: []string{"Aztec", "Maya", "Inca", "Olmec"}, CorrectIdx: 2},
		{ID: "his-5", CategoryID: "history", Kind: model.QuestionEstimation, Text: "How many years did the Hundred Years' War last?",
			Target: 116, Unit: "years"},

		{ID: "geo-1", CategoryID: "geography", Kind: model.QuestionChoice, Text: "What is the longest river in the world?",
			Options: []string{"Amazon", "Nile", "Yangtze", "Mississippi"}, CorrectIdx: 1},
		{ID: "geo-2", CategoryID: "geography", Kind: model.QuestionChoice, Text: "Which country has the most time zones?",
			Options: []string{"Russia", "USA", "France", "China"}, CorrectIdx: 2},
		{ID: "geo-3", CategoryID: "geography", Kind: model.QuestionEstimation, Text: "How tall is Mount Everest in meters?",
			Target: 8849, Unit: "m"},
		{ID: "geo-4", CategoryID: "geography", Kind: model.QuestionChoice, Text: "What is the capital of Australia?",
			Options: []string{"Sydney", "Melbourne", "Canberra", "Perth"}, CorrectIdx: 2},
		{ID: "geo-5", CategoryID: "geography", Kind: model.QuestionEstimation, Text: "How many countries are in Africa?",
			Target: 54, Unit: "countries"},

		{ID: "mov-1", CategoryID: "movies", Kind: model.QuestionChoice, Text: "Who directed Jurassic Park?",
			Options: []string{"James Cameron", "Steven Spielberg", "George Lucas", "Ridley Scott"}, CorrectIdx: 1},
		{ID: "mov-2", CategoryID: "movies", Kind: model.QuestionChoice, Text: "Which movie won Best Picture in 2020?",
			Options: []string{"1917", "Joker", "Parasite", "Once Upon a Time in Hollywood"}, CorrectIdx: 2},
		{ID: "mov-3", CategoryID: "movies", Kind: model.QuestionEstimation, Text: "What year was the first Star Wars film released?",
			Target: 1977, Unit: "year"},
		{ID: "mov-4", CategoryID: "movies", Kind: model.QuestionChoice, Text: "What is the highest-grossing film of all time?",
			Options: []string{"Titanic", "Avatar", "Avengers: Endgame", "Star Wars: The Force Awakens"}, CorrectIdx: 1},
		{ID: "mov-5", CategoryID: "movies", Kind: model.QuestionEstimation, Text: "How many Oscars did The Lord of the Rings: The Return of the King win?",
			Target: 11, Unit: "Oscars"},
	}

	topics := []model.Topic{
		{ID: "topic-planets", Title: "Planets of the solar system", Items: []model.TopicItem{
			{Name: "Mercury"}, {Name: "Venus"}, {Name: "Earth"}, {Name: "Mars"},
			{Name: "Jupiter"}, {Name: "Saturn"}, {Name: "Uranus"}, {Name: "Neptune"},
		}},
		{ID: "topic-bond", Title: "Actors who played James Bond", Items: []model.TopicItem{
			{Name: "Sean Connery", Aliases: []string{"Connery"}},
			{Name: "George Lazenby", Aliases: []string{"Lazenby"}},
			{Name: "Roger Moore", Aliases: []string{"Moore"}},
			{Name: "Timothy Dalton", Aliases: []string{"Dalton"}},
			{Name: "Pierce Brosnan", Aliases: []string{"Brosnan"}},
			{Name: "Daniel Craig", Aliases: []string{"Craig"}},
		}},
	}

	buzzer := []model.BuzzerQuestion{
		{ID: "buzz-1", Text: "This German physicist developed the theory of relativity and won the 1921 Nobel Prize.",
			Answer: "Albert Einstein", Aliases: []string{"Einstein"}},
		{ID: "buzz-2", Text: "This is the only continent that lies in all four hemispheres.",
			Answer: "Africa"},
		{ID: "buzz-3", Text: "This 1997 film about a sinking ship won eleven Academy Awards.",
			Answer: "Titanic"},
		{ID: "buzz-4", Text: "This wall, over 21,000 kilometers long, is the largest man-made structure on Earth.",
			Answer: "Great Wall of China", Aliases: []string{"The Great Wall", "Chinese Wall"}},
	}

	return &File{
		Categories:      categories,
		Questions:       questions,
		Topics:          topics,
		BuzzerQuestions: buzzer,
	}
}
