package app

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Config is everything the entry point fixes before startup. There are no
// command-line flags; a few environment variables override the defaults.
type Config struct {
	Title      string
	Width      int
	Height     int
	FrameRate  int
	TextureDir string
	// SystemFile replaces the embedded system definition when set.
	SystemFile string
	// MaxDraws bounds the per-frame uniform buffer.
	MaxDraws int
	Debug    bool
}

func DefaultConfig() Config {
	return Config{
		Title:      "Systeme Solaire",
		Width:      1000,
		Height:     1000,
		FrameRate:  60,
		TextureDir: "Textures",
		MaxDraws:   64,
	}
}

const (
	EnvDebug    = "ORRERY_DEBUG"
	EnvTextures = "ORRERY_TEXTURES"
	EnvSystem   = "ORRERY_SYSTEM"
)

// ApplyEnv overrides cfg from lookup, which is os.LookupEnv outside tests.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvDebug)
		}
		cfg.Debug = debug
	}
	if v, ok := lookup(EnvTextures); ok && v != "" {
		cfg.TextureDir = v
	}
	if v, ok := lookup(EnvSystem); ok && v != "" {
		cfg.SystemFile = v
	}
	return nil
}

func (cfg Config) Validate() error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.Errorf("invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FrameRate <= 0 {
		return errors.Errorf("invalid frame rate %d", cfg.FrameRate)
	}
	if cfg.MaxDraws <= 0 {
		return errors.Errorf("invalid draw capacity %d", cfg.MaxDraws)
	}
	if cfg.TextureDir == "" {
		return errors.New("texture directory not set")
	}
	return nil
}
