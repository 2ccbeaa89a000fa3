package app

import (
	"context"
	"log/slog"
	"time"

	"ccat/internal/watcher"
)

// Watch re-runs the pipeline after every debounced batch of Python file
// changes below the root and passes each outcome to handle. Runs never
// overlap. Watch blocks until ctx is done.
func (a *App) Watch(ctx context.Context, debounce time.Duration, handle func(*Result, error)) error {
	w, err := watcher.NewWatcher(watcher.Options{
		Debounce:     debounce,
		ExcludeDirs:  a.opts.ExcludeDirs,
		ExcludeFiles: a.opts.ExcludeFiles,
		Extensions:   []string{".py"},
		Ignore:       a.opts.SkipPaths,
	}, func(paths []string) {
		if ctx.Err() != nil {
			return
		}
		slog.Info("changes detected", "files", len(paths))
		res, err := a.Run(ctx)
		handle(res, err)
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch([]string{a.opts.Root}); err != nil {
		return err
	}
	slog.Info("watching for changes", "root", a.opts.Root, "debounce", debounce)

	<-ctx.Done()
	return nil
}
