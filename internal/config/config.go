package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-chenillard/internal/display"
	"github.com/coreman2200/funtimes-chenillard/internal/led"
	"github.com/coreman2200/funtimes-chenillard/internal/sequence"
)

type Strip struct {
	Dev     string `yaml:"dev"`      // "" picks the first SPI port
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2500000
	Color   string `yaml:"color"`    // lit pixel colour, "#rrggbb"
}

type HTTP struct {
	Addr string `yaml:"addr"` // "" disables the API
}

type MQTT struct {
	URL      string `yaml:"url"` // "" disables publishing
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
}

type Config struct {
	Driver   string   `yaml:"driver"` // "gpio" | "strip" | "sim"
	Pins     []string `yaml:"pins"`
	LogLevel string   `yaml:"log_level"`
	PollMs   int      `yaml:"poll_ms"`

	// Playlist names a built-in playlist. It is ignored when Animations is set.
	Playlist   string               `yaml:"playlist"`
	Frames     []sequence.Frame     `yaml:"frames,omitempty"`
	Animations []sequence.Animation `yaml:"animations,omitempty"`

	Strip Strip `yaml:"strip"`
	HTTP  HTTP  `yaml:"http"`
	MQTT  MQTT  `yaml:"mqtt"`
}

// Default mirrors the reference board: 8 LEDs on GPIO 5..12.
func Default() *Config {
	return &Config{
		Driver:   "sim",
		Pins:     append([]string(nil), led.DefaultPins...),
		LogLevel: "info",
		PollMs:   1,
		Playlist: sequence.DefaultPlaylist,
		Strip: Strip{
			SpeedHz: led.DefaultStripSpeedHz,
			Color:   "#ff2000",
		},
		HTTP: HTTP{Addr: ":8080"},
		MQTT: MQTT{ClientID: "chenillard", Topic: "chenillard/frame"},
	}
}

// Load reads path over Default, so omitted keys keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault is Load, except that a missing file yields Default. The
// bool reports whether the defaults were used. A file that exists but
// does not decode or validate is an error.
func LoadOrDefault(path string) (*Config, bool, error) {
	c, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return c, false, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	switch c.Driver {
	case "gpio", "strip", "sim":
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if len(c.Pins) < 1 || len(c.Pins) > display.LineCount {
		return fmt.Errorf("need 1..%d pins, got %d", display.LineCount, len(c.Pins))
	}
	if c.PollMs < 0 {
		return errors.New("poll_ms must not be negative")
	}
	if len(c.Animations) == 0 && len(c.Frames) > 0 {
		return errors.New("frames given without animations")
	}
	return nil
}

// BuildPlaylist returns the custom table when one is configured, otherwise
// the named built-in playlist.
func (c *Config) BuildPlaylist() (*sequence.Playlist, error) {
	if len(c.Animations) > 0 {
		return sequence.NewPlaylist(c.Frames, c.Animations)
	}
	name := c.Playlist
	if name == "" {
		name = sequence.DefaultPlaylist
	}
	return sequence.Builtin(name)
}
