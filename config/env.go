package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Env holds the raw environment settings read at startup
var Env = map[string]string{
	"TUNESMITH_MUSIC_DIR": os.Getenv("TUNESMITH_MUSIC_DIR"),
	"TUNESMITH_READ_TAGS": os.Getenv("TUNESMITH_READ_TAGS"),
	"GENAI_ENDPOINT":      os.Getenv("GENAI_ENDPOINT"),
	"GENAI_API_KEY":       os.Getenv("GENAI_API_KEY"),
	"GENAI_MODEL":         os.Getenv("GENAI_MODEL"),
	"GENAI_TIMEOUT":       os.Getenv("GENAI_TIMEOUT"),
	"CORS_ORIGINS":        os.Getenv("CORS_ORIGINS"),
	"SERVER_PORT":         os.Getenv("SERVER_PORT"),
}

func GetEndpoint() string {
	if endpoint := Env["GENAI_ENDPOINT"]; endpoint != "" {
		return endpoint
	}
	return "https://generativelanguage.googleapis.com"
}

func GetModel() string {
	if model := Env["GENAI_MODEL"]; model != "" {
		return model
	}
	return "gemini-2.0-flash"
}

func GetAPIKey() string {
	if key := Env["GENAI_API_KEY"]; key != "" {
		return key
	}
	// Same variable the Google SDKs read
	return os.Getenv("GEMINI_API_KEY")
}

// GetTimeout returns the suggestion request timeout. GENAI_TIMEOUT accepts a
// Go duration ("90s") or a number of seconds.
func GetTimeout() time.Duration {
	raw := strings.TrimSpace(Env["GENAI_TIMEOUT"])
	if raw == "" {
		return 60 * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 60 * time.Second
}

// GetCORSOrigins returns the allowed browser origins. CORS_ORIGINS is a comma
// separated list.
func GetCORSOrigins() []string {
	raw := Env["CORS_ORIGINS"]
	if raw == "" {
		raw = "http://localhost:3000,http://localhost:5173" // Default for React dev
	}

	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// GetServerPort returns SERVER_PORT when set, otherwise fallback
func GetServerPort(fallback int) int {
	if port, err := strconv.Atoi(Env["SERVER_PORT"]); err == nil && port > 0 {
		return port
	}
	return fallback
}

// ReadTagsAtScan reports whether tag hints are read for every file during a scan
func ReadTagsAtScan() bool {
	v, err := strconv.ParseBool(Env["TUNESMITH_READ_TAGS"])
	return err == nil && v
}

func GetMusicDirectory() string {
	// User settings win over the environment
	if userDir := LoadSettings().MusicDirectory; userDir != "" {
		return userDir
	}
	if envDir := Env["TUNESMITH_MUSIC_DIR"]; envDir != "" {
		return envDir
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, "Music")
}

// UserSettings represents the user's personal settings
type UserSettings struct {
	MusicDirectory string `json:"musicDirectory" yaml:"music_directory"`
	StylePrompt    string `json:"stylePrompt" yaml:"style_prompt"`
}

// SettingsPath is the location of the settings file. A .yaml or .yml
// extension selects YAML, anything else JSON. Tests point it elsewhere.
var SettingsPath = defaultSettingsPath()

func defaultSettingsPath() string {
	if custom := os.Getenv("TUNESMITH_SETTINGS"); custom != "" {
		return custom
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".tunesmith-settings.json")
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadSettings reads the settings file. A missing or unreadable file yields
// empty settings.
func LoadSettings() UserSettings {
	var settings UserSettings

	data, err := os.ReadFile(SettingsPath)
	if err != nil {
		return settings
	}

	if isYAML(SettingsPath) {
		err = yaml.Unmarshal(data, &settings)
	} else {
		err = json.Unmarshal(data, &settings)
	}
	if err != nil {
		return UserSettings{}
	}
	return settings
}

// SaveSettings writes the settings file
func SaveSettings(settings UserSettings) error {
	var (
		data []byte
		err  error
	)
	if isYAML(SettingsPath) {
		data, err = yaml.Marshal(settings)
	} else {
		data, err = json.MarshalIndent(settings, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return os.WriteFile(SettingsPath, data, 0644)
}
