package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	"github.com/HugoDaniel/envonly/internal/plugin"
	"github.com/HugoDaniel/envonly/pkg/api"
)

// watch transforms a file again whenever it is written, until ctx ends.
// Directories are watched rather than files so editors that replace a
// file on save are still seen. Failures are logged and watching goes on.
func (r *transformRun) watch(ctx context.Context, files []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer w.Close()

	watched := make(map[string]string, len(files))
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return errors.Wrapf(err, "watching %s", file)
		}
		watched[abs] = file
	}
	dirs := lo.Uniq(lo.Map(lo.Keys(watched), func(abs string, _ int) string { return filepath.Dir(abs) }))
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return errors.Wrapf(err, "watching %s", dir)
		}
	}
	r.log.Info("watching for changes", "files", len(files))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			file, ok := watched[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			if err := r.file(ctx, file); err != nil {
				r.log.Error("transform failed", "file", file, "err", api.ErrorMessage(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Error("watch error", "err", err)
		}
	}
}

// file transforms a single input again.
func (r *transformRun) file(ctx context.Context, file string) error {
	source, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrap(err, "reading input")
	}
	m := plugin.Module{ID: file, Code: string(source), SSR: r.ssr()}
	result, err := r.plugin.Transform(ctx, m.Code, m.ID, m.SSR)
	if err != nil {
		return err
	}
	return r.emit(m, result, r.outputPath(file))
}
