package config

import (
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/scene_editor/anm"
)

const DefaultPath = "~/.scene_editor.yaml"

type Config struct {
	Addr         string  `yaml:"addr" toml:"addr"`
	Project      string  `yaml:"project" toml:"project"`
	TickRate     int     `yaml:"tickRate" toml:"tickRate"`
	DefaultFPS   float64 `yaml:"defaultFps" toml:"defaultFps"`
	DefaultTween string  `yaml:"defaultTween" toml:"defaultTween"`
	Watch        bool    `yaml:"watch" toml:"watch"`
	GLTFCacheDir string  `yaml:"gltfCacheDir" toml:"gltfCacheDir"`
}

func Default() Config {
	return Config{
		Addr:         ":8000",
		Project:      ".",
		TickRate:     60,
		DefaultFPS:   24,
		DefaultTween: string(anm.TweenLinear),
	}
}

var (
	currentLock sync.RWMutex
	current     = Default()
)

func Get() Config {
	currentLock.RLock()
	defer currentLock.RUnlock()
	return current
}

func Set(c Config) {
	currentLock.Lock()
	defer currentLock.Unlock()
	current = c
}

func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return errors.Errorf("tickRate must be positive, got %d", c.TickRate)
	}
	if c.DefaultFPS <= 0 {
		return errors.Errorf("defaultFps must be positive, got %v", c.DefaultFPS)
	}
	if _, err := anm.ParseTween(c.DefaultTween); err != nil {
		return errors.Wrap(err, "defaultTween")
	}
	return nil
}

func (c Config) Tween() anm.Tween {
	t, _ := anm.ParseTween(c.DefaultTween)
	return t
}

// Load reads path over the defaults. The format follows the extension:
// .toml is TOML, anything else YAML. A missing file at DefaultPath is not
// an error.
func Load(path string) (Config, error) {
	c := Default()
	expanded, err := homedir.Expand(path)
	if err != nil {
		return c, errors.Wrapf(err, "expand %q", path)
	}
	data, err := ioutil.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath {
			return c, nil
		}
		return c, errors.Wrapf(err, "read config")
	}

	if strings.EqualFold(filepath.Ext(expanded), ".toml") {
		err = toml.Unmarshal(data, &c)
	} else {
		err = yaml.Unmarshal(data, &c)
	}
	if err != nil {
		return c, errors.Wrapf(err, "parse config %q", expanded)
	}
	if c.Project, err = homedir.Expand(c.Project); err != nil {
		return c, errors.Wrapf(err, "expand project %q", c.Project)
	}
	return c, nil
}

// Parse defines the command line flags on fs, loads the config file named
// by -config and overrides it with the flags given explicitly
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var path string
	var flags Config
	d := Default()
	fs.StringVar(&path, "config", DefaultPath, "Path to yaml or toml config")
	fs.StringVar(&flags.Addr, "i", d.Addr, "Address of server")
	fs.StringVar(&flags.Project, "project", d.Project, "Directory with scene documents and images")
	fs.IntVar(&flags.TickRate, "tickrate", d.TickRate, "Render ticks per second")
	fs.Float64Var(&flags.DefaultFPS, "fps", d.DefaultFPS, "Frames per second of new animations")
	fs.StringVar(&flags.DefaultTween, "tween", d.DefaultTween, "Tween of new animations")
	fs.BoolVar(&flags.Watch, "watch", d.Watch, "Reload the open scene when it changes on disk")
	fs.StringVar(&flags.GLTFCacheDir, "gltfcache", d.GLTFCacheDir, "Directory where glTF exports are also saved")
	if err := fs.Parse(args); err != nil {
		return d, err
	}

	c, err := Load(path)
	if err != nil {
		return c, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			c.Addr = flags.Addr
		case "project":
			c.Project = flags.Project
		case "tickrate":
			c.TickRate = flags.TickRate
		case "fps":
			c.DefaultFPS = flags.DefaultFPS
		case "tween":
			c.DefaultTween = flags.DefaultTween
		case "watch":
			c.Watch = flags.Watch
		case "gltfcache":
			c.GLTFCacheDir = flags.GLTFCacheDir
		}
	})
	return c, c.Validate()
}
