package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/shlex"
	"github.com/kelseyhightower/envconfig"
)

// Mixer backend names.
const (
	MixerNone  = "none"
	MixerALSA  = "alsa"
	MixerPulse = "pulse"
	MixerKodi  = "kodi"
)

// Config holds all application configuration.
type Config struct {
	Browser   BrowserConfig
	Lirc      LircConfig
	Mixer     MixerConfig
	Kodi      KodiConfig
	Linkcast  LinkcastConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// BrowserConfig holds browser launch and supervision settings.
type BrowserConfig struct {
	Path          string        `envconfig:"BROWSER_PATH" default:""`
	Args          string        `envconfig:"BROWSER_ARGS" default:""`
	XdotoolPath   string        `envconfig:"XDOTOOL_PATH" default:"xdotool"`
	GracePeriod   time.Duration `envconfig:"BROWSER_GRACE_PERIOD" default:"3s"`
	ReleaseDelay  time.Duration `envconfig:"MULTITAP_RELEASE_DELAY" default:"1s"`
	CloseKeys     string        `envconfig:"EXIT_CLOSE_KEYS" default:"Alt+F4"`
	InhibitDPMS   bool          `envconfig:"INHIBIT_DPMS" default:"false"`
	SuspendParent bool          `envconfig:"SUSPEND_PARENT" default:"false"`
	WatchStdin    bool          `envconfig:"WATCH_STDIN" default:"true"`
}

// LircConfig holds LIRC daemon settings.
type LircConfig struct {
	Enabled bool   `envconfig:"LIRC_ENABLED" default:"true"`
	Socket  string `envconfig:"LIRC_SOCKET" default:"/var/run/lirc/lircd"`
	Keymap  string `envconfig:"LIRC_CONFIG" default:""`
	Program string `envconfig:"LIRC_PROGRAM" default:"browser"`
}

// MixerConfig selects the volume backend.
type MixerConfig struct {
	Backend      string `envconfig:"MIXER" default:"none"`
	AlsaControl  string `envconfig:"ALSA_CONTROL" default:"Master"`
	PulseSink    string `envconfig:"PULSE_SINK" default:"@DEFAULT_SINK@"`
	Step         int    `envconfig:"VOLUME_STEP" default:"1"`
	KodiMirrorTo string `envconfig:"KODI_MIRROR_ALSA" default:""`
}

// KodiConfig holds the Kodi JSON-RPC endpoint used by the kodi mixer.
type KodiConfig struct {
	URL      string        `envconfig:"KODI_RPC_URL" default:"http://localhost:8080/jsonrpc"`
	User     string        `envconfig:"KODI_RPC_USER" default:""`
	Password string        `envconfig:"KODI_RPC_PASSWORD" default:""`
	Timeout  time.Duration `envconfig:"KODI_RPC_TIMEOUT" default:"2s"`
}

// LinkcastConfig holds the linkcast HTTP trigger settings.
type LinkcastConfig struct {
	Enabled bool   `envconfig:"LINKCAST_ENABLED" default:"true"`
	Host    string `envconfig:"LINKCAST_HOST" default:"0.0.0.0"`
	Port    string `envconfig:"LINKCAST_PORT" default:"8086"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration for the linkcast server.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"5"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"10"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Browser: BrowserConfig{
			XdotoolPath:  "xdotool",
			GracePeriod:  3 * time.Second,
			ReleaseDelay: time.Second,
			CloseKeys:    "Alt+F4",
			WatchStdin:   true,
		},
		Lirc: LircConfig{
			Enabled: true,
			Socket:  "/var/run/lirc/lircd",
			Program: "browser",
		},
		Mixer: MixerConfig{
			Backend:     MixerNone,
			AlsaControl: "Master",
			PulseSink:   "@DEFAULT_SINK@",
			Step:        1,
		},
		Kodi: KodiConfig{
			URL:     "http://localhost:8080/jsonrpc",
			Timeout: 2 * time.Second,
		},
		Linkcast: LinkcastConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    "8086",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
			Enabled:           true,
		},
	}
}

// Validate checks settings that cannot be expressed with struct tags.
func (c *Config) Validate() error {
	var errs []error
	switch c.Mixer.Backend {
	case MixerNone, MixerALSA, MixerPulse, MixerKodi:
	default:
		errs = append(errs, fmt.Errorf("invalid MIXER %q (expected none, alsa, pulse or kodi)", c.Mixer.Backend))
	}
	if c.Mixer.Step <= 0 {
		errs = append(errs, fmt.Errorf("VOLUME_STEP must be positive, got %d", c.Mixer.Step))
	}
	if c.Browser.GracePeriod <= 0 {
		errs = append(errs, fmt.Errorf("BROWSER_GRACE_PERIOD must be positive, got %s", c.Browser.GracePeriod))
	}
	if c.Browser.ReleaseDelay <= 0 {
		errs = append(errs, fmt.Errorf("MULTITAP_RELEASE_DELAY must be positive, got %s", c.Browser.ReleaseDelay))
	}
	if _, err := shlex.Split(c.Browser.Args); err != nil {
		errs = append(errs, fmt.Errorf("invalid BROWSER_ARGS: %w", err))
	}
	return errors.Join(errs...)
}

// Argv builds the browser command line for the given URL. An empty URL is
// omitted.
func (b BrowserConfig) Argv(url string) ([]string, error) {
	if b.Path == "" {
		return nil, errors.New("browser path is not configured")
	}
	args, err := shlex.Split(b.Args)
	if err != nil {
		return nil, fmt.Errorf("invalid browser args: %w", err)
	}
	argv := append([]string{b.Path}, args...)
	if url != "" {
		argv = append(argv, url)
	}
	return argv, nil
}
