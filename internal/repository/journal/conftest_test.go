package journal

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
)

// memStore is an in-memory stand-in for the hash and sorted-set commands the repo uses.
// failOn makes the named operation return err.
type memStore struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
	zsets  map[string]map[string]float64
	failOn string
	err    error
}

func newMemStore() *memStore {
	return &memStore{
		hashes: make(map[string]map[string]string),
		zsets:  make(map[string]map[string]float64),
	}
}

func (m *memStore) fail(op string) error {
	if m.failOn == op {
		return m.err
	}
	return nil
}

func (m *memStore) HSet(_ context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("HSET"); err != nil {
		return err
	}
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	maps.Copy(h, fields)
	return nil
}

func (m *memStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("HGETALL"); err != nil {
		return nil, err
	}
	return maps.Clone(m.hashes[key]), nil
}

func (m *memStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		h, err := m.HGetAll(ctx, k)
		if err != nil {
			return nil, err
		}
		if h == nil {
			h = map[string]string{}
		}
		out[i] = h
	}
	return out, nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DEL"); err != nil {
		return err
	}
	for _, k := range keys {
		delete(m.hashes, k)
	}
	return nil
}

func (m *memStore) ZAdd(_ context.Context, key string, score float64, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ZADD"); err != nil {
		return err
	}
	z, ok := m.zsets[key]
	if !ok {
		z = make(map[string]float64)
		m.zsets[key] = z
	}
	z[member] = score
	return nil
}

func (m *memStore) ZRem(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range members {
		delete(m.zsets[key], mem)
	}
	return nil
}

func (m *memStore) ZRevRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ZRANGE"); err != nil {
		return nil, err
	}
	z := m.zsets[key]
	members := slices.Collect(maps.Keys(z))
	sort.Slice(members, func(i, j int) bool {
		if z[members[i]] != z[members[j]] {
			return z[members[i]] > z[members[j]]
		}
		return members[i] > members[j]
	})
	n := int64(len(members))
	if stop < 0 || stop >= n {
		stop = n - 1
	}
	if start >= n || start > stop {
		return []string{}, nil
	}
	return members[start : stop+1], nil
}
