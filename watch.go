package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// fileEventSink receives normalized filesystem events: create and write
// become fileTouched, remove and rename become fileDeleted. A move surfaces
// as Rename on the old path and Create on the new one, so it arrives here as
// a delete followed by a touch.
type fileEventSink interface {
	fileTouched(path string)
	fileDeleted(path string)
}

// changeSource watches a directory tree recursively and forwards events for
// files whose base name matches the configured pattern. Directory events are
// suppressed, except that newly created directories are added to the watch.
type changeSource struct {
	watcher *fsnotify.Watcher
	pattern string
	sink    fileEventSink
	log     *logger
	done    chan struct{}
}

func newChangeSource(root, pattern string, sink fileEventSink, log *logger) (*changeSource, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting filesystem watcher: %w", err)
	}
	c := &changeSource{
		watcher: w,
		pattern: pattern,
		sink:    sink,
		log:     log,
		done:    make(chan struct{}),
	}
	if err := c.watchTree(root); err != nil {
		w.Close()
		return nil, fmt.Errorf("registering watches: %w", err)
	}
	go c.loop()
	return c, nil
}

func (c *changeSource) watchTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		c.log.debugf("watching directory %s", path)
		return c.watcher.Add(path)
	})
}

func (c *changeSource) loop() {
	defer close(c.done)
	for {
		select {
		case ev, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			c.handle(ev)
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.log.errorf("watch: %v", err)
		}
	}
}

func (c *changeSource) handle(ev fsnotify.Event) {
	if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
		// Directory events are suppressed whatever the kind; new
		// directories additionally join the watch.
		if ev.Op.Has(fsnotify.Create) {
			if err := c.watchTree(ev.Name); err != nil {
				c.log.errorf("watching new directory %s: %v", ev.Name, err)
			}
		}
		return
	}
	if !c.matches(ev.Name) {
		return
	}
	c.log.debugf("[%s] %s", ev.Op, ev.Name)
	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		c.sink.fileTouched(ev.Name)
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		// A removed path cannot be stat'ed, so a deleted directory whose
		// name matches the pattern falls through here. That is harmless:
		// its touch events were suppressed, so no task exists for it.
		c.sink.fileDeleted(ev.Name)
	}
}

func (c *changeSource) matches(path string) bool {
	ok, err := filepath.Match(c.pattern, filepath.Base(path))
	return err == nil && ok
}

// stop closes the underlying watcher and blocks until the event loop has
// drained, including any delivery already in flight. Once it returns, no
// further events reach the sink.
func (c *changeSource) stop() {
	c.watcher.Close()
	<-c.done
}

// wait blocks until the event loop has exited.
func (c *changeSource) wait() {
	<-c.done
}
