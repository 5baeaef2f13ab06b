package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all tunables for the orchestrator. Everything comes from the
// environment with defaults so a bare `go run ./cmd/server` works.
type Config struct {
	HTTPPort    string
	ContentFile string

	// Phase timing
	VoteWindow         time.Duration
	WheelSpinDuration  time.Duration
	LoserPickWindow    time.Duration
	DiceRollWindow     time.Duration
	RPSRoundWindow     time.Duration
	RevealDuration     time.Duration
	ScoreboardPause    time.Duration
	BonusTurnWindow    time.Duration
	BuzzerTickEvery    time.Duration
	BuzzerAnswerWindow time.Duration
	RematchWindow      time.Duration
	EmptyRoomGrace     time.Duration
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		HTTPPort:    getEnv("PORT", "8080"),
		ContentFile: getEnv("CONTENT_FILE", ""),

		VoteWindow:         getSeconds("VOTE_WINDOW_SEC", 20),
		WheelSpinDuration:  getSeconds("WHEEL_SPIN_SEC", 6),
		LoserPickWindow:    getSeconds("LOSER_PICK_SEC", 15),
		DiceRollWindow:     getSeconds("DICE_ROLL_SEC", 15),
		RPSRoundWindow:     getSeconds("RPS_ROUND_SEC", 10),
		RevealDuration:     getSeconds("REVEAL_SEC", 6),
		ScoreboardPause:    getSeconds("SCOREBOARD_SEC", 8),
		BonusTurnWindow:    getSeconds("BONUS_TURN_SEC", 20),
		BuzzerTickEvery:    getMillis("BUZZER_TICK_MS", 150),
		BuzzerAnswerWindow: getSeconds("BUZZER_ANSWER_SEC", 10),
		RematchWindow:      getSeconds("REMATCH_SEC", 30),
		EmptyRoomGrace:     getSeconds("EMPTY_ROOM_GRACE_SEC", 60),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getSeconds(key string, defaultSec int) time.Duration {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(defaultSec) * time.Second
}

func getMillis(key string, defaultMS int) time.Duration {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return time.Duration(defaultMS) * time.Millisecond
}
