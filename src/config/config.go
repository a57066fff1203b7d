package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"instant-desktop/src/overlay"
)

const (
	AppDirName         = "Instant-Desktop"
	PreferencesFile    = "config.yaml"
	DerivedProfileFile = "custom.rdp"
	EnvPathEnvVar      = "INSTANT_DESKTOP_ENV"

	PrimaryWindowFirst = "first"
	PrimaryWindowLast  = "last"
)

// Preferences is the YAML preference file. Pointer fields distinguish
// "absent" from false.
type Preferences struct {
	BaseConfigPath string   `yaml:"base_config_path"`
	Fullscreen     *bool    `yaml:"fullscreen"`
	EditConnection *bool    `yaml:"edit_connection"`
	CommitKeys     []string `yaml:"commit_keys,omitempty"`
	CancelKeys     []string `yaml:"cancel_keys,omitempty"`
	PrimaryWindow  string   `yaml:"primary_window,omitempty"`
}

type LoadOptions struct {
	// ConfigDir replaces <UserConfigDir>/Instant-Desktop.
	ConfigDir string
	// EnvPath names a .env file to use instead of the default lookup.
	EnvPath string

	BaseConfigPathOverride string
	FullscreenOverride     *bool
	EditOverride           *bool
}

type Config struct {
	ConfigDir         string
	PreferencesPath   string
	BaseConfigPath    string
	DerivedConfigPath string
	Fullscreen        bool
	EditConnection    bool
	CommitKeys        []string
	CancelKeys        []string
	PrimaryWindow     string
	EnableFileLogging bool
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	dir := opts.ConfigDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config directory: %w", err)
		}
		dir = filepath.Join(base, AppDirName)
	}

	cfg := defaults(dir)

	// Sources in priority order, lowest first:
	// 1) built-in defaults
	// 2) the YAML preference file (written with defaults on first run)
	// 3) .env beside the executable, or at $INSTANT_DESKTOP_ENV
	// 4) process environment
	// 5) command line overrides
	prefs, err := readPreferences(cfg.PreferencesPath)
	if err != nil {
		return nil, err
	}
	cfg.applyPreferences(prefs)

	envPath := opts.EnvPath
	if envPath == "" {
		envPath = resolveEnvPath()
	}
	cfg.applyEnv(envSource{dotenv: readDotenvValues(envPath)})

	cfg.applyOverrides(opts)

	if cfg.PrimaryWindow != PrimaryWindowFirst && cfg.PrimaryWindow != PrimaryWindowLast {
		return nil, fmt.Errorf("invalid primary window %q (want %s or %s)", cfg.PrimaryWindow, PrimaryWindowFirst, PrimaryWindowLast)
	}
	return cfg, nil
}

func defaults(dir string) *Config {
	return &Config{
		ConfigDir:         dir,
		PreferencesPath:   filepath.Join(dir, PreferencesFile),
		BaseConfigPath:    defaultBaseConfigPath(),
		DerivedConfigPath: filepath.Join(dir, DerivedProfileFile),
		Fullscreen:        true,
		EditConnection:    true,
		CommitKeys:        append([]string(nil), overlay.DefaultCommitKeys...),
		CancelKeys:        append([]string(nil), overlay.DefaultCancelKeys...),
		PrimaryWindow:     PrimaryWindowFirst,
	}
}

func defaultBaseConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Default.rdp"
	}
	return filepath.Join(home, "Documents", "Default.rdp")
}

// DefaultPreferences is what a fresh preference file contains.
func DefaultPreferences() Preferences {
	fullscreen, edit := true, true
	return Preferences{
		BaseConfigPath: defaultBaseConfigPath(),
		Fullscreen:     &fullscreen,
		EditConnection: &edit,
	}
}

func readPreferences(path string) (Preferences, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		prefs := DefaultPreferences()
		if err := WritePreferences(path, prefs); err != nil {
			// A read-only profile directory must not stop the picker.
			log.Printf("CONFIG: could not create %s: %v", path, err)
		}
		return prefs, nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("read preferences: %w", err)
	}

	var prefs Preferences
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return Preferences{}, fmt.Errorf("parse preferences %s: %w", path, err)
	}
	return prefs, nil
}

// WritePreferences stores prefs as YAML, creating the directory if needed.
func WritePreferences(path string, prefs Preferences) error {
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyPreferences(p Preferences) {
	if v := strings.TrimSpace(p.BaseConfigPath); v != "" {
		c.BaseConfigPath = v
	}
	if p.Fullscreen != nil {
		c.Fullscreen = *p.Fullscreen
	}
	if p.EditConnection != nil {
		c.EditConnection = *p.EditConnection
	}
	if keys := overlay.ParseKeyList(strings.Join(p.CommitKeys, ",")); len(keys) > 0 {
		c.CommitKeys = keys
	}
	if keys := overlay.ParseKeyList(strings.Join(p.CancelKeys, ",")); len(keys) > 0 {
		c.CancelKeys = keys
	}
	if v := strings.TrimSpace(p.PrimaryWindow); v != "" {
		c.PrimaryWindow = strings.ToLower(v)
	}
}

// envSource looks a key up in the process environment first, then in the
// values read from the .env file. Empty values count as unset.
type envSource struct {
	dotenv map[string]string
}

func (s envSource) get(key string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return strings.TrimSpace(s.dotenv[key])
}

func (c *Config) applyEnv(env envSource) {
	if v := env.get("BASE_CONFIG_PATH"); v != "" {
		c.BaseConfigPath = v
	}
	if b, ok := parseBool(env.get("FULLSCREEN")); ok {
		c.Fullscreen = b
	}
	if b, ok := parseBool(env.get("EDIT_CONNECTION")); ok {
		c.EditConnection = b
	}
	if keys := overlay.ParseKeyList(env.get("COMMIT_KEYS")); len(keys) > 0 {
		c.CommitKeys = keys
	}
	if keys := overlay.ParseKeyList(env.get("CANCEL_KEYS")); len(keys) > 0 {
		c.CancelKeys = keys
	}
	if v := env.get("PRIMARY_WINDOW"); v != "" {
		c.PrimaryWindow = strings.ToLower(v)
	}
	c.EnableFileLogging = strings.ToLower(env.get("ENABLE_FILE_LOGGING")) == "true"
}

func (c *Config) applyOverrides(opts LoadOptions) {
	if v := strings.TrimSpace(opts.BaseConfigPathOverride); v != "" {
		c.BaseConfigPath = v
	}
	if opts.FullscreenOverride != nil {
		c.Fullscreen = *opts.FullscreenOverride
	}
	if opts.EditOverride != nil {
		c.EditConnection = *opts.EditOverride
	}
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		log.Printf("CONFIG: ignoring unreadable %s: %v", envPath, err)
		return map[string]string{}
	}

	return values
}

func parseBool(v string) (bool, bool) {
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
