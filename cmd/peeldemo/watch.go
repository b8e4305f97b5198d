package main

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchFile calls render every time path is written or replaced, until
// ctx is done. The parent directory is watched so that editors which
// save by rename are seen too.
func watchFile(ctx context.Context, path string, render func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	log.Printf("Watching %s", path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := render(); err != nil {
				log.Printf("Render failed: %v", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watch error: %v", err)
		}
	}
}
