package main

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// sceneWatcher signals on Changed whenever the watched file is written or
// replaced. The parent directory is watched since editors often save by
// renaming a temporary file over the original.
type sceneWatcher struct {
	Changed chan struct{}

	watcher *fsnotify.Watcher
	done    chan struct{}
}

func watchScene(path string) (*sceneWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}
	sw := &sceneWatcher{
		Changed: make(chan struct{}, 1),
		watcher: w,
		done:    make(chan struct{}),
	}
	go sw.run(abs)
	return sw, nil
}

func (sw *sceneWatcher) run(path string) {
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case sw.Changed <- struct{}{}:
			default:
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("watch: %v", err)
		case <-sw.done:
			return
		}
	}
}

func (sw *sceneWatcher) Close() error {
	close(sw.done)
	return sw.watcher.Close()
}
