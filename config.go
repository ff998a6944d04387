package keyglow

import (
	"encoding"
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"libdb.so/keyglow/internal/led"
)

// Config is the configuration for the keyglow daemon.
type Config struct {
	// Device is the path to the serial device for the matrix controller.
	// This is usually /dev/ttyUSB0 or /dev/ttyACM0.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud"`
	// Rate is the tick rate for the effect loop, in ticks per second.
	Rate int `toml:"rate"`
	// Matrix describes the keyboard matrix dimensions.
	Matrix MatrixConfig `toml:"matrix"`
	// Heatmap configures the heatmap effect.
	Heatmap HeatmapConfig `toml:"heatmap"`
}

// MatrixConfig describes the keyboard matrix the controller drives.
type MatrixConfig struct {
	Rows int `toml:"rows"`
	Cols int `toml:"cols"`
}

// HeatmapConfig configures the heatmap effect.
type HeatmapConfig struct {
	// Palette is the heat gradient, coldest stop first. Colors are "#rrggbb"
	// strings. If empty, the built-in black-green-yellow-red gradient is used.
	Palette []led.RGBColor `toml:"palette"`
	// UpdateInterval is the delay between render passes. Defaults to 1s.
	UpdateInterval TOMLDuration `toml:"update_interval"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Device == "" {
		return errors.New("no serial device configured")
	}
	if c.Matrix.Rows < 1 || c.Matrix.Cols < 1 {
		return errors.Errorf("invalid matrix dimensions %dx%d", c.Matrix.Rows, c.Matrix.Cols)
	}
	if c.Matrix.Rows > 255 || c.Matrix.Cols > 255 {
		// The initialize packet carries dimensions as single bytes.
		return errors.Errorf("matrix dimensions %dx%d exceed the protocol limit of 255", c.Matrix.Rows, c.Matrix.Cols)
	}
	if d := time.Duration(c.Heatmap.UpdateInterval); d < 0 {
		return errors.New("update_interval must not be negative")
	}
	if c.Rate < 0 {
		return errors.New("rate must not be negative")
	}
	return nil
}

// TickRate returns the configured tick rate, or a default of 20 ticks per
// second.
func (c *Config) TickRate() int {
	if c.Rate > 0 {
		return c.Rate
	}
	return 20
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a configuration from a reader.
func ParseConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
