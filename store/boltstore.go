/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package store

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"go.etcd.io/bbolt"

	"github.com/kvbus/kvbus/cmn"
)

// BoltStore is the embedded on-disk backend: an ordered key-value engine
// with prefix-separated tables. bbolt already provides namespaced,
// independently-ordered buckets, a more idiomatic realization of
// "prefix-separated tables" than literal "{table}:{key}" string
// concatenation (see DESIGN.md). One bucket per table, unprefixed keys
// inside it; ordered prefix iteration becomes a Cursor scan over that
// bucket.
//
// Values are persisted as CBOR (github.com/fxamacker/cbor/v2): a
// deliberately different encoding from the wire protocol's JSON, kept
// independent so the on-disk format doesn't shift whenever the wire
// schema does.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore opens (creating if absent) an embedded database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, &cmn.StorageError{Backend: "bolt", Err: err}
	}
	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Close() error {
	if err := b.db.Close(); err != nil {
		return &cmn.StorageError{Backend: "bolt", Err: err}
	}
	return nil
}

func (b *BoltStore) Get(table, key string) (cmn.Value, error) {
	var out cmn.Value
	found := false
	err := b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(table))
		if bkt == nil {
			return nil
		}
		raw := bkt.Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return cbor.Unmarshal(raw, &out)
	})
	if err != nil {
		return cmn.Absent, &cmn.StorageError{Backend: "bolt", Err: err}
	}
	if !found {
		return cmn.Absent, nil
	}
	return out, nil
}

func (b *BoltStore) Set(table, key string, value cmn.Value) (cmn.Value, error) {
	prev := cmn.Absent
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists([]byte(table))
		if err != nil {
			return err
		}
		if raw := bkt.Get([]byte(key)); raw != nil {
			if err := cbor.Unmarshal(raw, &prev); err != nil {
				return err
			}
		}
		encoded, err := cbor.Marshal(value)
		if err != nil {
			return err
		}
		return bkt.Put([]byte(key), encoded)
	})
	if err != nil {
		return cmn.Absent, &cmn.StorageError{Backend: "bolt", Err: err}
	}
	return prev, nil
}

func (b *BoltStore) Contains(table, key string) (bool, error) {
	found := false
	err := b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(table))
		if bkt == nil {
			return nil
		}
		found = bkt.Get([]byte(key)) != nil
		return nil
	})
	if err != nil {
		return false, &cmn.StorageError{Backend: "bolt", Err: err}
	}
	return found, nil
}

func (b *BoltStore) Del(table, key string) (cmn.Value, error) {
	prev := cmn.Absent
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(table))
		if bkt == nil {
			return nil
		}
		raw := bkt.Get([]byte(key))
		if raw == nil {
			return nil
		}
		if err := cbor.Unmarshal(raw, &prev); err != nil {
			return err
		}
		return bkt.Delete([]byte(key))
	})
	if err != nil {
		return cmn.Absent, &cmn.StorageError{Backend: "bolt", Err: err}
	}
	return prev, nil
}

func (b *BoltStore) GetAll(table string) ([]cmn.KeyValue, error) {
	var out []cmn.KeyValue
	err := b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(table))
		if bkt == nil {
			return nil
		}
		return bkt.ForEach(func(k, raw []byte) error {
			var v cmn.Value
			if err := cbor.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("decode %s/%s: %w", table, k, err)
			}
			out = append(out, cmn.KeyValue{Key: string(k), Value: v})
			return nil
		})
	})
	if err != nil {
		return nil, &cmn.StorageError{Backend: "bolt", Err: err}
	}
	return out, nil
}

// GetIter returns a cursor-backed iterator over table, ordered by key.
// The cursor runs inside its own read transaction, closed by Close.
func (b *BoltStore) GetIter(table string) (Iterator, error) {
	tx, err := b.db.Begin(false)
	if err != nil {
		return nil, &cmn.StorageError{Backend: "bolt", Err: err}
	}
	bkt := tx.Bucket([]byte(table))
	if bkt == nil {
		_ = tx.Rollback()
		return &sliceIterator{}, nil
	}
	return &boltCursorIterator{tx: tx, cursor: bkt.Cursor(), started: false}, nil
}

type boltCursorIterator struct {
	tx      *bbolt.Tx
	cursor  *bbolt.Cursor
	started bool
	err     error
}

func (it *boltCursorIterator) Next() (cmn.KeyValue, bool) {
	var k, raw []byte
	if !it.started {
		k, raw = it.cursor.First()
		it.started = true
	} else {
		k, raw = it.cursor.Next()
	}
	if k == nil {
		return cmn.KeyValue{}, false
	}
	var v cmn.Value
	if err := cbor.Unmarshal(raw, &v); err != nil {
		it.err = err
		return cmn.KeyValue{}, false
	}
	return cmn.KeyValue{Key: string(k), Value: v}, true
}

func (it *boltCursorIterator) Err() error { return it.err }

func (it *boltCursorIterator) Close() error {
	if err := it.tx.Rollback(); err != nil {
		return &cmn.StorageError{Backend: "bolt", Err: err}
	}
	return nil
}
