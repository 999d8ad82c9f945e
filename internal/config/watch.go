package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"voxview/internal/logging"
)

// Watch reloads the settings file whenever it changes and invokes onChange
// with the freshly loaded settings. The watcher runs until stop is closed.
// Watching a file that does not exist yet is fine; the parent directory is
// watched so a later create still triggers.
func Watch(path string, stop <-chan struct{}, onChange func(Settings)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
					continue
				}
				evAbs, err := filepath.Abs(ev.Name)
				if err != nil || evAbs != abs {
					continue
				}
				if err := Load(path); err != nil {
					if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
						continue
					}
					logging.Warn("settings reload failed", "path", path, "err", err)
					continue
				}
				logging.Info("settings reloaded", "path", path)
				if onChange != nil {
					onChange(Get())
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logging.Warn("settings watcher error", "err", err)
			case <-stop:
				return
			}
		}
	}()
	return nil
}
