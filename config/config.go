package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultModel is the Anthropic model used when ANTHROPIC_MODEL is not set.
const DefaultModel = "claude-3-5-sonnet-20241022"

// BotConfig holds all configuration values for the planner bot.
// It is constructed once at startup and never mutated afterwards.
type BotConfig struct {
	Token           string // Telegram bot token
	APIID           int    // Telegram API ID
	APIHash         string // Telegram API Hash
	LogLevel        string // Logging level (DEBUG, INFO, WARN, ERROR, FATAL)
	DataDir         string // Directory for user records and the cost ledger
	UseFakeAI       bool   // Use the built-in fake AI backend
	AnthropicAPIKey string // Anthropic API key, required when UseFakeAI is false
	AnthropicModel  string // Anthropic model name
}

// LoadConfig loads and validates the bot configuration from environment variables.
// Returns a BotConfig struct or an error if validation fails.
func LoadConfig() (*BotConfig, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	validator := NewEnvValidator()

	if err := validator.ValidateRequired(); err != nil {
		return nil, fmt.Errorf("environment validation failed: %w", err)
	}

	apiID, apiHash, err := validator.GetAPICredentials()
	if err != nil {
		return nil, fmt.Errorf("failed to get API credentials: %w", err)
	}

	token := validator.GetBotToken()
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required but not set")
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	useFake := true
	if v := os.Getenv("USE_FAKE_AI"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("USE_FAKE_AI must be a boolean, got: %s", v)
		}
		useFake = parsed
	}

	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = DefaultModel
	}

	config := &BotConfig{
		Token:           token,
		APIID:           apiID,
		APIHash:         apiHash,
		LogLevel:        logLevel,
		DataDir:         dataDir,
		UseFakeAI:       useFake,
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  model,
	}

	return config, nil
}

// Validate performs additional validation on the loaded configuration
func (c *BotConfig) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("bot token cannot be empty")
	}

	if c.APIID <= 0 {
		return fmt.Errorf("API ID must be a positive integer, got: %d", c.APIID)
	}

	if c.APIHash == "" {
		return fmt.Errorf("API hash cannot be empty")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if !c.UseFakeAI && c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when USE_FAKE_AI is false")
	}

	validLogLevels := map[string]bool{
		"DEBUG": true,
		"INFO":  true,
		"WARN":  true,
		"ERROR": true,
		"FATAL": true,
	}

	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s. Valid levels are: DEBUG, INFO, WARN, ERROR, FATAL", c.LogLevel)
	}

	return nil
}
