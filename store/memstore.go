/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package store

import (
	"sort"
	"sync"

	"github.com/kvbus/kvbus/cmn"
)

// MemStore is a concurrent in-memory backend: a map from table name to a
// per-table shard, each shard itself a mutex-guarded map from key to
// Value.
type MemStore struct {
	mu     sync.RWMutex
	tables map[string]*tableShard
}

type tableShard struct {
	mu   sync.RWMutex
	data map[string]cmn.Value
}

// NewMemStore returns an empty in-memory backend.
func NewMemStore() *MemStore {
	return &MemStore{tables: make(map[string]*tableShard)}
}

func (m *MemStore) shard(table string, create bool) *tableShard {
	m.mu.RLock()
	s, ok := m.tables[table]
	m.mu.RUnlock()
	if ok || !create {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok = m.tables[table]; ok {
		return s
	}
	s = &tableShard{data: make(map[string]cmn.Value)}
	m.tables[table] = s
	return s
}

func (m *MemStore) Get(table, key string) (cmn.Value, error) {
	s := m.shard(table, false)
	if s == nil {
		return cmn.Absent, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return cmn.Absent, nil
	}
	return v, nil
}

func (m *MemStore) Set(table, key string, value cmn.Value) (cmn.Value, error) {
	s := m.shard(table, true)
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.data[key]
	s.data[key] = value
	if !ok {
		return cmn.Absent, nil
	}
	return prev, nil
}

func (m *MemStore) Contains(table, key string) (bool, error) {
	s := m.shard(table, false)
	if s == nil {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok, nil
}

func (m *MemStore) Del(table, key string) (cmn.Value, error) {
	s := m.shard(table, false)
	if s == nil {
		return cmn.Absent, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.data[key]
	if !ok {
		return cmn.Absent, nil
	}
	delete(s.data, key)
	return prev, nil
}

// GetAll takes a consistent snapshot of table at call time.
func (m *MemStore) GetAll(table string) ([]cmn.KeyValue, error) {
	s := m.shard(table, false)
	if s == nil {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]cmn.KeyValue, 0, len(s.data))
	for k, v := range s.data {
		out = append(out, cmn.KeyValue{Key: k, Value: v})
	}
	// Order is unspecified, but a stable order makes tests and logs
	// reproducible.
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// GetIter returns a snapshot iterator, taken under the same lock
// discipline as GetAll.
func (m *MemStore) GetIter(table string) (Iterator, error) {
	pairs, err := m.GetAll(table)
	if err != nil {
		return nil, err
	}
	return &sliceIterator{pairs: pairs}, nil
}

func (m *MemStore) Close() error { return nil }

type sliceIterator struct {
	pairs []cmn.KeyValue
	idx   int
}

func (it *sliceIterator) Next() (cmn.KeyValue, bool) {
	if it.idx >= len(it.pairs) {
		return cmn.KeyValue{}, false
	}
	kv := it.pairs[it.idx]
	it.idx++
	return kv, true
}

func (it *sliceIterator) Err() error   { return nil }
func (it *sliceIterator) Close() error { return nil }
