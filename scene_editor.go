package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/mogaika/scene_editor/config"
	"github.com/mogaika/scene_editor/editor"
	"github.com/mogaika/scene_editor/status"
	"github.com/mogaika/scene_editor/vfs"
	"github.com/mogaika/scene_editor/web"
)

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	config.Set(cfg)

	if s, err := os.Stat(cfg.Project); err != nil || !s.IsDir() {
		log.Printf("Project directory %q is not available", cfg.Project)
		flag.PrintDefaults()
		return
	}

	ed := editor.New(editor.Options{
		Dir:           vfs.NewDirectoryDriver(cfg.Project),
		TickRate:      cfg.TickRate,
		DefaultFPS:    cfg.DefaultFPS,
		DefaultTween:  cfg.Tween(),
		Watch:         cfg.Watch,
		GLTFCacheDir:  cfg.GLTFCacheDir,
		OnFrameChange: status.Frame,
		OnReload: func(file string) {
			status.Info("Reloaded %s", file)
		},
		OnImageError: func(uri string, err error) {
			status.Error("Image %s: %v", uri, err)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		if err := ed.Run(ctx); err != nil && err != context.Canceled {
			log.Fatal(err)
		}
	}()

	if err := web.StartServer(cfg.Addr, ed, "web"); err != nil {
		log.Fatal(err)
	}
}
