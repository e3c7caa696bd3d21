package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	WordsFile      string

	DefaultRounds    int
	DefaultRoundTime int // seconds
	RevealDelay      int // seconds
	ChooseTimeout    int // seconds, 0 disables auto-pick
	MaxPlayers       int

	ChatRate  float64 // events per second
	ChatBurst int
	DrawRate  float64
	DrawBurst int

	ExportEnabled bool
	ExportFile    string
}

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.AllowedOrigins = splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000"))
	c.LogLevel = getenv("LOG_LEVEL", "info")
	c.WordsFile = os.Getenv("WORDS_FILE")
	c.DefaultRounds = getint("DEFAULT_ROUNDS", 4)
	c.DefaultRoundTime = getint("DEFAULT_ROUND_TIME", 60)
	c.RevealDelay = getint("REVEAL_DELAY", 5)
	c.ChooseTimeout = getint("CHOOSE_TIMEOUT", 15)
	c.MaxPlayers = getint("MAX_PLAYERS", 12)
	c.ChatRate = getfloat("CHAT_RATE", 2)
	c.ChatBurst = getint("CHAT_BURST", 5)
	c.DrawRate = getfloat("DRAW_RATE", 60)
	c.DrawBurst = getint("DRAW_BURST", 120)
	c.ExportEnabled = getenv("EXPORT_ENABLED", "false") == "true"
	c.ExportFile = getenv("EXPORT_FILE", "./results.txt")
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if raw := os.Getenv(k); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			return v
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if raw := os.Getenv(k); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
