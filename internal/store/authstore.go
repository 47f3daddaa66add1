package store

import (
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/openpetcare/catbridge/internal/catlink"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var authBucket = []byte("auth")

// AuthStore persists session records in a bbolt file under the
// application workdir, one record per account uid.
type AuthStore struct {
	db *bolt.DB
}

func Open(workdir string) (*AuthStore, error) {
	path := filepath.Join(workdir, "catbridge.db")
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open auth store")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(authBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init auth bucket")
	}
	return &AuthStore{db: db}, nil
}

func (s *AuthStore) Close() error {
	return s.db.Close()
}

func (s *AuthStore) Load(uid string) (*catlink.AuthRecord, error) {
	var rec *catlink.AuthRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(authBucket).Get([]byte(uid))
		if raw == nil {
			return nil
		}
		var r catlink.AuthRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return errors.Wrap(err, "decode auth record")
		}
		rec = &r
		return nil
	})
	return rec, err
}

func (s *AuthStore) Save(uid string, rec *catlink.AuthRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encode auth record")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(authBucket).Put([]byte(uid), raw)
	})
}
