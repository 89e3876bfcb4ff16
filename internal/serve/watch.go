package serve

import (
	"context"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// startWatch watches the source tree and the theme. Directories created
// later are added as they appear.
func (s *Server) startWatch(ctx context.Context) error {
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		s.watcher = w

		for _, root := range []string{s.cfg.Build.SourceDir, s.cfg.ThemePath()} {
			if e := s.watchTree(root); e != nil {
				err = e
				return
			}
		}
		go s.watchLoop(ctx)
	})
	return err
}

func (s *Server) watchTree(root string) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return s.watcher.Add(path)
	})
}

func (s *Server) debounce() time.Duration {
	if d := s.cfg.Server.Debounce; d > 0 {
		return d
	}
	return 200 * time.Millisecond
}

func (s *Server) watchLoop(ctx context.Context) {
	s.log.Info("watching for file changes")
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	trigger := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(s.debounce())
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					if err := s.watchTree(ev.Name); err != nil {
						s.log.Warn("watch new directory", zap.String("path", ev.Name), zap.Error(err))
					}
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				s.log.Debug("file changed", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
				trigger()
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			rctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := s.Rebuild(rctx); err != nil {
				s.log.Error("rebuild failed", zap.Error(err))
			}
			cancel()
		}
	}
}
