// Package watcher rebuilds templates when their source files change.
//
// An FSSource turns fsnotify notifications for the source tree into Events.
// Route maps an event path to the template that owns it, and Watcher runs
// the loop that ties the two to a build.Builder.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/nebulabroadcast/html-template-builder/internal/errors"
	"github.com/nebulabroadcast/html-template-builder/internal/logging"
)

// EventKind is the kind of change that triggered an event.
type EventKind int

const (
	// EventCreated covers new files and files moved into the tree.
	EventCreated EventKind = iota
	// EventModified covers writes to existing files.
	EventModified
)

// String returns the string representation of the EventKind
func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	default:
		return "unknown"
	}
}

// Event is a change to one path under the source directory.
type Event struct {
	Kind EventKind
	Path string
}

// Source delivers change events.
type Source interface {
	Events() <-chan Event
	Errors() <-chan error
}

// FileFilter reports whether a path should produce events.
type FileFilter func(path string) bool

// NoVCSFilter drops paths inside version control metadata directories.
func NoVCSFilter(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		switch part {
		case ".git", ".hg", ".svn":
			return false
		}
	}
	return true
}

// NoEditorTempFilter drops swap, backup and lock files written by editors.
func NoEditorTempFilter(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasSuffix(base, ".tmp"),
		strings.HasPrefix(base, ".#"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"),
		base == "4913":
		return false
	}
	return true
}

// DefaultFilters are applied by NewFSSource when no filters are given.
var DefaultFilters = []FileFilter{NoVCSFilter, NoEditorTempFilter}

// FSSource watches a directory tree with fsnotify. Directories created after
// the watch starts are added, together with anything already inside them.
type FSSource struct {
	watcher *fsnotify.Watcher
	filters []FileFilter
	logger  logging.Logger

	events chan Event
	errors chan error
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewFSSource starts watching root recursively.
func NewFSSource(root string, logger logging.Logger, filters ...FileFilter) (*FSSource, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if len(filters) == 0 {
		filters = DefaultFilters
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewFileSystemError("WATCH_INIT", "cannot create file watcher", err)
	}

	s := &FSSource{
		watcher: w,
		filters: filters,
		logger:  logger.WithComponent("watcher"),
		events:  make(chan Event, 64),
		errors:  make(chan error, 8),
		done:    make(chan struct{}),
	}

	if _, err := s.addRecursive(root); err != nil {
		w.Close()
		return nil, err
	}

	s.wg.Add(1)
	go s.loop()
	return s, nil
}

// Events implements Source.
func (s *FSSource) Events() <-chan Event {
	return s.events
}

// Errors implements Source.
func (s *FSSource) Errors() <-chan error {
	return s.errors
}

// Close stops watching and closes the event channels.
func (s *FSSource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.watcher.Close()
		s.wg.Wait()
		close(s.events)
		close(s.errors)
	})
	return err
}

// addRecursive watches root and every directory below it, returning the
// regular files found on the way.
func (s *FSSource) addRecursive(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !s.accept(path) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return s.watcher.Add(path)
		}
		if info.Mode().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return files, errors.NewFileSystemError("WATCH_ADD", "cannot watch directory", err).WithPath(root)
	}
	return files, nil
}

func (s *FSSource) accept(path string) bool {
	for _, filter := range s.filters {
		if !filter(path) {
			return false
		}
	}
	return true
}

func (s *FSSource) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handle(event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendError(err)
		}
	}
}

func (s *FSSource) handle(event fsnotify.Event) {
	if !s.accept(event.Name) {
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			// Gone again before we looked; editors do this with temp files.
			return
		}
		if info.IsDir() {
			files, err := s.addRecursive(event.Name)
			if err != nil {
				s.sendError(err)
			}
			for _, path := range files {
				s.send(Event{Kind: EventCreated, Path: path})
			}
		}
		s.send(Event{Kind: EventCreated, Path: event.Name})
	case event.Has(fsnotify.Write):
		s.send(Event{Kind: EventModified, Path: event.Name})
	}
}

func (s *FSSource) send(e Event) {
	select {
	case s.events <- e:
	case <-s.done:
	}
}

func (s *FSSource) sendError(err error) {
	select {
	case s.errors <- err:
	case <-s.done:
	default:
		s.logger.Warn(context.Background(), err, "Dropping watcher error")
	}
}

// Route returns the template that owns path. The first path segment below
// srcDir is the candidate and is accepted only if it is one of templates, so
// a template directory owns itself. Paths outside srcDir have no owner.
func Route(srcDir, path string, templates []string) (string, bool) {
	rel, err := filepath.Rel(srcDir, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}

	first, _, _ := strings.Cut(rel, "/")

	for _, name := range templates {
		if name == first {
			return name, true
		}
	}
	return "", false
}
