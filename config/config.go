package config

import (
	"errors"
	"os"

	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/slotengine/renderkey"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Log     LogConfig     `yaml:"log" config:"log"`
	Arena   ArenaConfig   `yaml:"arena" config:"arena"`
	Scene   SceneConfig   `yaml:"scene" config:"scene"`
	SortKey SortKeyConfig `yaml:"sortkey" config:"sortkey"`
	Window  WindowConfig  `yaml:"window" config:"window"`
	Demo    DemoConfig    `yaml:"demo" config:"demo"`
}

type LogConfig struct {
	Level  string `yaml:"level" config:"level"`
	Pretty bool   `yaml:"pretty" config:"pretty"`
}

// ArenaConfig sizes the handles of resource arenas.
type ArenaConfig struct {
	VersionBits uint `yaml:"version_bits" config:"version_bits"`
}

type SceneConfig struct {
	EntityVersionBits uint `yaml:"entity_version_bits" config:"entity_version_bits"`
	InitialCapacity   int  `yaml:"initial_capacity" config:"initial_capacity"`
}

// SortKeyConfig holds the five render key field widths, most significant
// first: order, material index, material version, mesh index, mesh version.
type SortKeyConfig struct {
	Widths []uint `yaml:"widths" config:"widths"`
}

type WindowConfig struct {
	Width  int    `yaml:"width" config:"width"`
	Height int    `yaml:"height" config:"height"`
	Title  string `yaml:"title" config:"title"`
}

type DemoConfig struct {
	Sprites int    `yaml:"sprites" config:"sprites"`
	Script  string `yaml:"script" config:"script"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log:     LogConfig{Level: "info", Pretty: true},
		Arena:   ArenaConfig{VersionBits: 8},
		Scene:   SceneConfig{EntityVersionBits: 32, InitialCapacity: 256},
		SortKey: SortKeyConfig{Widths: []uint{8, 20, 8, 20, 8}},
		Window:  WindowConfig{Width: 960, Height: 540, Title: "slotengine"},
		Demo:    DemoConfig{Sprites: 64},
	}
}

// Load reads a YAML file over the defaults, then applies environment
// overrides. Nested keys are joined with a double underscore, so
// ARENA__VERSION_BITS=12 overrides arena.version_bits. An empty filename
// skips the file.
func Load(filename string) (Config, error) {
	cfg := Default()
	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return Config{}, eris.Wrapf(err, "config: load %s", filename)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, eris.Wrapf(err, "config: unmarshal %s", filename)
		}
	}
	if err := jlconfig.FromEnv().To(&cfg); err != nil {
		return Config{}, eris.Wrap(err, "config: environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and that resource handles fit the render key.
func (c Config) Validate() error {
	if c.Arena.VersionBits < 2 || c.Arena.VersionBits > 32 {
		return eris.Wrapf(ErrInvalid, "arena.version_bits %d out of range 2..32", c.Arena.VersionBits)
	}
	if c.Scene.EntityVersionBits < 2 || c.Scene.EntityVersionBits > 32 {
		return eris.Wrapf(ErrInvalid, "scene.entity_version_bits %d out of range 2..32", c.Scene.EntityVersionBits)
	}
	if c.Scene.InitialCapacity < 0 {
		return eris.Wrapf(ErrInvalid, "scene.initial_capacity %d is negative", c.Scene.InitialCapacity)
	}
	l, err := c.Layout()
	if err != nil {
		return eris.Wrapf(ErrInvalid, "sortkey.widths: %v", err)
	}
	for _, f := range []int{renderkey.FieldMaterialVersion, renderkey.FieldMeshVersion} {
		if l.Width(f) < c.Arena.VersionBits {
			return eris.Wrapf(ErrInvalid, "sortkey version field of %d bits cannot hold %d-bit arena versions", l.Width(f), c.Arena.VersionBits)
		}
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return eris.Wrapf(ErrInvalid, "window size %dx%d", c.Window.Width, c.Window.Height)
	}
	return nil
}

// Layout builds the render key layout from SortKey.Widths.
func (c Config) Layout() (renderkey.Layout, error) {
	return renderkey.NewLayout(c.SortKey.Widths...)
}
