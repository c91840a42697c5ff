package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"evehal/internal/eve"
	"evehal/internal/log"
)

// SPIConfig selects the host SPI port and the GPIOs wired to the chip.
type SPIConfig struct {
	// Device is the periph.io spireg name; empty opens the first port.
	Device string `yaml:"device" json:"device"`
	// SpeedHz is used for the whole session. The chip accepts at most
	// 11MHz before REG_FREQUENCY is set.
	SpeedHz int64 `yaml:"speed_hz" json:"speed_hz"`
	// CSPin is a GPIO name; empty uses the port's own chip select, which
	// limits an unbuffered burst to one spidev transfer (4096 bytes).
	CSPin string `yaml:"cs_pin" json:"cs_pin"`
	PDPin string `yaml:"pd_pin" json:"pd_pin"`
}

// ChipConfig describes the EVE chip and how it is brought up.
type ChipConfig struct {
	// Generation is 2 (FT81x), 3 (BT815/6) or 4 (BT817/8).
	Generation    int    `yaml:"generation" json:"generation"`
	ExternalClock bool   `yaml:"external_clock" json:"external_clock"`
	SoftReset     bool   `yaml:"soft_reset" json:"soft_reset"`
	TouchGT911    bool   `yaml:"touch_gt911" json:"touch_gt911"`
	GT911Patch    string `yaml:"gt911_patch,omitempty" json:"gt911_patch,omitempty"`
	InitFlash     bool   `yaml:"init_flash" json:"init_flash"`
	BufferedBurst bool   `yaml:"buffered_burst" json:"buffered_burst"`
}

// DisplayConfig holds the panel timing written during init.
type DisplayConfig struct {
	HSize   uint16 `yaml:"hsize" json:"hsize"`
	VSize   uint16 `yaml:"vsize" json:"vsize"`
	HSync0  uint16 `yaml:"hsync0" json:"hsync0"`
	HSync1  uint16 `yaml:"hsync1" json:"hsync1"`
	HOffset uint16 `yaml:"hoffset" json:"hoffset"`
	HCycle  uint16 `yaml:"hcycle" json:"hcycle"`
	VSync0  uint16 `yaml:"vsync0" json:"vsync0"`
	VSync1  uint16 `yaml:"vsync1" json:"vsync1"`
	VOffset uint16 `yaml:"voffset" json:"voffset"`
	VCycle  uint16 `yaml:"vcycle" json:"vcycle"`
	PCLK    uint8  `yaml:"pclk" json:"pclk"`
	PCLKPol uint8  `yaml:"pclk_pol" json:"pclk_pol"`
	Swizzle uint8  `yaml:"swizzle" json:"swizzle"`
	CSpread uint8  `yaml:"cspread" json:"cspread"`

	// PCLKFreq is only used on BT817/8.
	PCLKFreq uint16 `yaml:"pclk_freq,omitempty" json:"pclk_freq,omitempty"`
	PCLK2X   bool   `yaml:"pclk_2x,omitempty" json:"pclk_2x,omitempty"`
	OutBits  uint16 `yaml:"outbits,omitempty" json:"outbits,omitempty"`

	Rotate        *uint8 `yaml:"rotate,omitempty" json:"rotate,omitempty"`
	TouchRZThresh uint16 `yaml:"touch_rzthresh" json:"touch_rzthresh"`
	Backlight     uint8  `yaml:"backlight" json:"backlight"`
	BacklightFreq uint16 `yaml:"backlight_freq,omitempty" json:"backlight_freq,omitempty"`
}

// TouchConfig stores the result of a touch calibration.
type TouchConfig struct {
	// Transform holds REG_TOUCH_TRANSFORM_A..F, empty when not calibrated.
	Transform []uint32 `yaml:"transform,omitempty" json:"transform,omitempty"`
}

// MirrorConfig drives the page mirroring loop.
type MirrorConfig struct {
	URL string `yaml:"url" json:"url"`
	// Schedule is a cron spec with a leading seconds field.
	Schedule string `yaml:"schedule" json:"schedule"`
	// Format is "jpeg", "rgb565" or "paletted8".
	Format  string `yaml:"format" json:"format"`
	Timeout string `yaml:"timeout" json:"timeout"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the status API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	SPI     SPIConfig     `yaml:"spi" json:"spi"`
	Chip    ChipConfig    `yaml:"chip" json:"chip"`
	Display DisplayConfig `yaml:"display" json:"display"`
	Touch   TouchConfig   `yaml:"touch" json:"touch"`
	Mirror  MirrorConfig  `yaml:"mirror" json:"mirror"`

	// Listen is the HTTP listen address of the status API.
	Listen   string `yaml:"listen" json:"listen"`
	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if non-nil, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultSpeedHz  = 8_000_000
	defaultPDPin    = "GPIO25"
	defaultSchedule = "*/30 * * * * *"
	defaultFormat   = "jpeg"
	defaultTimeout  = "20s"
	defaultListen   = "127.0.0.1:8080"
	defaultRZThresh = 1200
	defaultBacklit  = 0x20
)

// ScheduleParser accepts mirror schedules with or without a seconds field.
var ScheduleParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// defaultDisplay is a common 800x480 panel.
func defaultDisplay() DisplayConfig {
	return DisplayConfig{
		HSize:         800,
		VSize:         480,
		HSync0:        0,
		HSync1:        48,
		HOffset:       88,
		HCycle:        928,
		VSync0:        0,
		VSync1:        3,
		VOffset:       32,
		VCycle:        525,
		PCLK:          2,
		PCLKPol:       1,
		TouchRZThresh: defaultRZThresh,
		Backlight:     defaultBacklit,
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		SPI: SPIConfig{
			SpeedHz: defaultSpeedHz,
			PDPin:   defaultPDPin,
		},
		Chip:    ChipConfig{Generation: int(eve.Gen2)},
		Display: defaultDisplay(),
		Mirror: MirrorConfig{
			Schedule: defaultSchedule,
			Format:   defaultFormat,
			Timeout:  defaultTimeout,
		},
		Listen:   defaultListen,
		LogLevel: string(log.LevelInfo),
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.SPI.SpeedHz <= 0 {
		c.SPI.SpeedHz = defaultSpeedHz
	}
	if c.Chip.Generation == 0 {
		c.Chip.Generation = int(eve.Gen2)
	}

	// A display section without a size is treated as absent.
	if c.Display.HSize == 0 || c.Display.VSize == 0 {
		c.Display = defaultDisplay()
	}
	if c.Display.TouchRZThresh == 0 {
		c.Display.TouchRZThresh = defaultRZThresh
	}

	if c.Mirror.Schedule == "" {
		c.Mirror.Schedule = defaultSchedule
	}
	c.Mirror.Format = strings.ToLower(c.Mirror.Format)
	if c.Mirror.Format == "" {
		c.Mirror.Format = defaultFormat
	}
	if c.Mirror.Timeout == "" {
		c.Mirror.Timeout = defaultTimeout
	}
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.LogLevel == "" {
		c.LogLevel = string(log.LevelInfo)
	}
}

// Validate reports values Normalize cannot repair.
func (c *Config) Validate() error {
	switch eve.Generation(c.Chip.Generation) {
	case eve.Gen2, eve.Gen3, eve.Gen4:
	default:
		return fmt.Errorf("config: chip.generation %d is not 2, 3 or 4", c.Chip.Generation)
	}
	if c.Chip.InitFlash && eve.Generation(c.Chip.Generation) < eve.Gen3 {
		return errors.New("config: chip.init_flash needs a BT81x (generation 3 or 4)")
	}
	if c.Chip.TouchGT911 && eve.Generation(c.Chip.Generation) == eve.Gen2 && c.Chip.GT911Patch == "" {
		return errors.New("config: chip.touch_gt911 on FT81x needs chip.gt911_patch")
	}

	d := c.Display
	if d.HCycle <= d.HSize || d.VCycle <= d.VSize {
		return fmt.Errorf("config: display cycle %dx%d must exceed the visible size %dx%d", d.HCycle, d.VCycle, d.HSize, d.VSize)
	}
	if d.HSize > 2047 || d.VSize > 2047 {
		return fmt.Errorf("config: display size %dx%d out of range", d.HSize, d.VSize)
	}
	if d.Backlight > 128 {
		return fmt.Errorf("config: display.backlight %d above 128", d.Backlight)
	}
	if n := len(c.Touch.Transform); n != 0 && n != 6 {
		return fmt.Errorf("config: touch.transform needs 6 values, got %d", n)
	}

	switch c.Mirror.Format {
	case "jpeg", "rgb565", "paletted8":
	default:
		return fmt.Errorf("config: mirror.format %q unknown", c.Mirror.Format)
	}
	if _, err := ScheduleParser.Parse(c.Mirror.Schedule); err != nil {
		return fmt.Errorf("config: mirror.schedule: %w", err)
	}
	if _, err := time.ParseDuration(c.Mirror.Timeout); err != nil {
		return fmt.Errorf("config: mirror.timeout: %w", err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// MirrorTimeout returns the parsed capture timeout.
func (c *Config) MirrorTimeout() time.Duration {
	d, err := time.ParseDuration(c.Mirror.Timeout)
	if err != nil {
		d, _ = time.ParseDuration(defaultTimeout)
	}
	return d
}

// EVEOptions converts the chip and display sections. patch is the GT911
// blob read from Chip.GT911Patch, if any.
func (c *Config) EVEOptions(patch []byte) eve.Options {
	d := c.Display
	return eve.Options{
		Generation:    eve.Generation(c.Chip.Generation),
		ExternalClock: c.Chip.ExternalClock,
		SoftReset:     c.Chip.SoftReset,
		TouchGT911:    c.Chip.TouchGT911,
		GT911Patch:    patch,
		BufferedBurst: c.Chip.BufferedBurst,
		Display: eve.Timing{
			HSize:         d.HSize,
			VSize:         d.VSize,
			HCycle:        d.HCycle,
			VCycle:        d.VCycle,
			HOffset:       d.HOffset,
			VOffset:       d.VOffset,
			HSync0:        d.HSync0,
			HSync1:        d.HSync1,
			VSync0:        d.VSync0,
			VSync1:        d.VSync1,
			PCLK:          d.PCLK,
			PCLKPol:       d.PCLKPol,
			Swizzle:       d.Swizzle,
			CSpread:       d.CSpread,
			PCLKFreq:      d.PCLKFreq,
			PCLK2X:        d.PCLK2X,
			Rotate:        d.Rotate,
			OutBits:       d.OutBits,
			TouchRZThresh: d.TouchRZThresh,
			Backlight:     d.Backlight,
			BacklightFreq: d.BacklightFreq,
		},
	}
}

// TouchTransform returns the stored calibration, ok is false when none is
// stored.
func (c *Config) TouchTransform() (m [6]uint32, ok bool) {
	if len(c.Touch.Transform) != 6 {
		return m, false
	}
	copy(m[:], c.Touch.Transform)
	return m, true
}

// SetTouchTransform stores a calibration result.
func (c *Config) SetTouchTransform(m [6]uint32) {
	c.Touch.Transform = append(c.Touch.Transform[:0], m[:]...)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is read and defaults are filled in.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// caller decides whether an unsaved default is usable
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) when needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".evectl-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
