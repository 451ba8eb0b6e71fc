package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/scene_editor/r3d"
	"github.com/mogaika/scene_editor/scenefile"
)

func check(path, glbDir string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	loaded, err := scenefile.Load(f)
	if err != nil {
		return err
	}

	nodes := 0
	loaded.Scene.Walk(func(_ *r3d.Node) bool {
		nodes++
		return true
	})
	fmt.Printf("%s: ok, %d nodes, %d materials, %d animations\n",
		path, nodes, len(loaded.Scene.Materials), len(loaded.Runners))

	if glbDir == "" {
		return nil
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".glb"
	out, err := os.Create(filepath.Join(glbDir, name))
	if err != nil {
		return err
	}
	defer out.Close()
	return errors.Wrap(scenefile.ExportGLTF(out, loaded.Scene, ""), "export glb")
}

func main() {
	var glbDir string
	flag.StringVar(&glbDir, "glb", "", "Directory to write .glb conversions to")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: scenecheck [-glb dir] scene.json...\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	failed := 0
	for _, path := range flag.Args() {
		if err := check(path, glbDir); err != nil {
			log.Printf("%s: %v", path, err)
			failed++
		}
	}
	if failed != 0 {
		os.Exit(1)
	}
}
