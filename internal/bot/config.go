package bot

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Number of days summarised by /progress
	ProgressDays int
	// How far back /streak looks
	StreakLookbackDays int
	// Long polling timeout in seconds
	UpdateTimeout int
	// Default session length for /session_new without minutes
	DefaultSessionMinutes int
	// Default estimate for /task_new without minutes
	DefaultTaskMinutes int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		ProgressDays:          7,
		StreakLookbackDays:    366,
		UpdateTimeout:         60,
		DefaultSessionMinutes: 45,
		DefaultTaskMinutes:    30,
	}
}
