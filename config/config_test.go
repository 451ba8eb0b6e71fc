package config

import (
	"flag"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/scene_editor/anm"
)

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "editor.yaml")
	tomlPath := filepath.Join(dir, "editor.toml")
	require.NoError(t, ioutil.WriteFile(yamlPath, []byte("addr: \":9000\"\ntickRate: 30\ndefaultTween: sine\nwatch: true\n"), 0666))
	require.NoError(t, ioutil.WriteFile(tomlPath, []byte("project = \"/srv/scenes\"\ndefaultFps = 12.5\n"), 0666))

	c, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.Addr)
	assert.Equal(t, 30, c.TickRate)
	assert.Equal(t, anm.TweenSine, c.Tween())
	assert.True(t, c.Watch)
	assert.Equal(t, 24.0, c.DefaultFPS)

	c, err = Load(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, "/srv/scenes", c.Project)
	assert.Equal(t, 12.5, c.DefaultFPS)
	assert.Equal(t, ":8000", c.Addr)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseFlagsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("addr: \":9000\"\ntickRate: 30\n"), 0666))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c, err := Parse(fs, []string{"-config", path, "-tickrate", "120", "-tween", "bounce"})
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.Addr)
	assert.Equal(t, 120, c.TickRate)
	assert.Equal(t, anm.TweenBounce, c.Tween())

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	_, err = Parse(fs, []string{"-config", path, "-tween", "wobble"})
	assert.Error(t, err)

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	_, err = Parse(fs, []string{"-config", path, "-fps", "0"})
	assert.Error(t, err)
}

func TestGetSet(t *testing.T) {
	defer Set(Default())
	c := Default()
	c.Addr = ":1"
	Set(c)
	assert.Equal(t, ":1", Get().Addr)
}
