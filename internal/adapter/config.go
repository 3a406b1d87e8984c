package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultServerURL is the production Jewgo API
const DefaultServerURL = "https://api.jewgo.app"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Location LocationConfig `mapstructure:"location"`
	UI       UIConfig       `mapstructure:"ui"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Browser  BrowserConfig  `mapstructure:"browser"`
}

// ServerConfig holds the API endpoint and credentials
type ServerConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
	Email string `mapstructure:"email"` // display only
}

// CatalogConfig tunes listing paging and request bookkeeping
type CatalogConfig struct {
	PageSize       int           `mapstructure:"page_size"`
	ReaperInterval time.Duration `mapstructure:"reaper_interval"`
	StaleAfter     time.Duration `mapstructure:"stale_after"`
	PersistCache   bool          `mapstructure:"persist_cache"` // write pages through to bbolt
}

// LocationConfig describes where the position comes from on a desktop
type LocationConfig struct {
	Platform      string  `mapstructure:"platform"` // "ios" or "android" permission flow
	Latitude      float64 `mapstructure:"latitude"`
	Longitude     float64 `mapstructure:"longitude"`
	Accuracy      float64 `mapstructure:"accuracy"`
	GeocodeAPIKey string  `mapstructure:"geocode_api_key"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	StartCategory string `mapstructure:"start_category"`
	HideInspector bool   `mapstructure:"hide_inspector"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// MetricsConfig enables the prometheus listener when Listen is set
type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

// BrowserConfig selects the program web links open in. An empty command
// uses the system default handler.
type BrowserConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL: DefaultServerURL,
		},
		Catalog: CatalogConfig{
			PageSize:       20,
			ReaperInterval: 10 * time.Second,
			StaleAfter:     30 * time.Second,
		},
		Location: LocationConfig{
			Platform: "android",
		},
		UI: UIConfig{
			StartCategory: "eatery",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// HasLocation reports whether a fixed position is configured
func (l LocationConfig) HasLocation() bool {
	return l.Latitude != 0 || l.Longitude != 0
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	return filepath.Join(defaultDataPath(), "jewgo.log")
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "jewgo")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "jewgo")
	}
}

func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "jewgo")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "jewgo")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	return filepath.Join(defaultDataPath(), "cache")
}

// newViper builds a viper instance reading config.yaml from dir, with
// JEWGO_SECTION_KEY environment overrides.
func newViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("JEWGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only sees keys viper already knows about
	setDefaults(v, DefaultConfig())
	return v
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.url", cfg.Server.URL)
	v.SetDefault("server.token", cfg.Server.Token)
	v.SetDefault("server.email", cfg.Server.Email)
	v.SetDefault("catalog.page_size", cfg.Catalog.PageSize)
	v.SetDefault("catalog.reaper_interval", cfg.Catalog.ReaperInterval)
	v.SetDefault("catalog.stale_after", cfg.Catalog.StaleAfter)
	v.SetDefault("catalog.persist_cache", cfg.Catalog.PersistCache)
	v.SetDefault("location.platform", cfg.Location.Platform)
	v.SetDefault("location.latitude", cfg.Location.Latitude)
	v.SetDefault("location.longitude", cfg.Location.Longitude)
	v.SetDefault("location.accuracy", cfg.Location.Accuracy)
	v.SetDefault("location.geocode_api_key", cfg.Location.GeocodeAPIKey)
	v.SetDefault("ui.start_category", cfg.UI.StartCategory)
	v.SetDefault("ui.hide_inspector", cfg.UI.HideInspector)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("metrics.listen", cfg.Metrics.Listen)
	v.SetDefault("browser.command", cfg.Browser.Command)
	v.SetDefault("browser.args", cfg.Browser.Args)
}

// LoadConfig loads configuration from the default directory, a .env file
// in the working directory and the environment
func LoadConfig() (*Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()
	return LoadConfigFrom(defaultConfigPath())
}

// LoadConfigFrom loads config.yaml from dir, falling back to defaults
func LoadConfigFrom(dir string) (*Config, error) {
	v := newViper(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if cfg.Catalog.PageSize <= 0 {
		cfg.Catalog.PageSize = DefaultConfig().Catalog.PageSize
	}
	return cfg, nil
}

// SaveConfig saves the configuration to the default directory
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(defaultConfigPath(), cfg)
}

// SaveConfigTo writes cfg as dir/config.yaml
func SaveConfigTo(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	setDefaults(v, cfg)
	// Defaults are not written, so set every key explicitly
	for _, key := range v.AllKeys() {
		v.Set(key, v.Get(key))
	}
	v.Set("catalog.reaper_interval", cfg.Catalog.ReaperInterval.String())
	v.Set("catalog.stale_after", cfg.Catalog.StaleAfter.String())

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveToken updates just the credentials in the default configuration
func SaveToken(token, email string) error {
	return SaveTokenTo(defaultConfigPath(), token, email)
}

// SaveTokenTo updates the credentials in dir/config.yaml, keeping
// everything else as it was
func SaveTokenTo(dir, token, email string) error {
	cfg, err := LoadConfigFrom(dir)
	if err != nil {
		return err
	}
	cfg.Server.Token = token
	cfg.Server.Email = email
	return SaveConfigTo(dir, cfg)
}

// IsConfigured returns true if the server URL and token are set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != "" && c.Server.Token != ""
}

// ClearCache removes all cached data
func ClearCache() error {
	cachePath := defaultCachePath()
	if err := os.RemoveAll(cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// GetCachePath returns the cache directory path
func GetCachePath() string {
	return defaultCachePath()
}
