package index

import (
	"encoding/json"
	bolt "go.etcd.io/bbolt"
	"inkpress/internal/domain/build"
	domainerr "inkpress/internal/domain/errors"
)

var lastBuildKey = []byte("last")

// Fingerprint returns the render hash stored for an output path, or "".
func (s *Store) Fingerprint(outPath string) (string, error) {
	var fp string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bFingerprint)
		if b == nil {
			return nil
		}
		fp = string(b.Get([]byte(outPath)))
		return nil
	})
	return fp, err
}

// PutFingerprints stores render hashes for a batch of output paths in one
// transaction.
func (s *Store) PutFingerprints(fps map[string]string) error {
	if len(fps) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bFingerprint)
		if err != nil {
			return err
		}
		for path, hash := range fps {
			if err := b.Put([]byte(path), []byte(hash)); err != nil {
				return err
			}
		}
		return nil
	})
}

// PruneFingerprints drops fingerprints of paths missing from keep.
func (s *Store) PruneFingerprints(keep map[string]struct{}) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bFingerprint)
		if b == nil {
			return nil
		}
		var stale [][]byte
		if err := b.ForEach(func(k, _ []byte) error {
			if _, ok := keep[string(k)]; !ok {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) PutBuildRecord(rec build.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bBuild)
		if err != nil {
			return err
		}
		return b.Put(lastBuildKey, data)
	})
}

func (s *Store) LastBuildRecord() (build.Record, error) {
	var rec build.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bBuild)
		if b == nil {
			return domainerr.ErrNotFound
		}
		v := b.Get(lastBuildKey)
		if v == nil {
			return domainerr.ErrNotFound
		}
		return json.Unmarshal(v, &rec)
	})
	return rec, err
}
