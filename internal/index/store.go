package index

import (
	"fmt"
	bolt "go.etcd.io/bbolt"
	"os"
	"path/filepath"
	"time"
)

// Store is the bbolt backed article index. One file holds every locale.
type Store struct {
	db   *bolt.DB
	path string
}

type OpenOptions struct {
	Path string // e.g. ".inkpress/index.db"
	// 等待文件锁的时间，另一个进程（比如 serve）占着的时候会超时
	Timeout time.Duration
}

func Open(opt OpenOptions) (*Store, error) {
	if opt.Path == "" {
		return nil, fmt.Errorf("index: missing path")
	}
	if err := os.MkdirAll(filepath.Dir(opt.Path), 0o755); err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	db, err := bolt.Open(opt.Path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", opt.Path, err)
	}

	// 持久 bucket 先建好，首次构建时读不到也不报错
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bFingerprint, bBuild} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("index: init %s: %w", opt.Path, err)
	}
	return &Store{db: db, path: opt.Path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
