package game

// GameError is a custom error type for action-surface errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrRoomNotFound     GameError = "room not found"
	ErrPlayerNotFound   GameError = "player not found"
	ErrNotHost          GameError = "only the host can do that"
	ErrNameRequired     GameError = "a name is required"
	ErrNotEnoughPlayers GameError = "not enough players"
	ErrInvalidSettings  GameError = "invalid settings"
	ErrGameInProgress   GameError = "game already started"
	ErrInvalidCategory  GameError = "unknown category"
	ErrInvalidAnswer    GameError = "invalid answer"
	ErrNilRegistry      GameError = "registry cannot be nil"
	ErrNilTimers        GameError = "timer scheduler cannot be nil"
	ErrNilProvider      GameError = "content provider cannot be nil"
	ErrNilRoller        GameError = "dice roller cannot be nil"
	ErrNilClock         GameError = "clock cannot be nil"
	ErrNilConfig        GameError = "config cannot be nil"
)
