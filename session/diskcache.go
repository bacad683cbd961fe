package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/fedesasso/mysqlbatch/batch"
)

// procedureKeyPrefix namespaces every entry this cache writes, so the
// same Badger directory could in principle be shared with other callers
// without key collisions.
const procedureKeyPrefix = "proc:"

// DiskProcedureCache is an optional disk-backed batch.CachedProcedureMap
// replacement: a long-lived Connection can use one so its resolved
// stored-procedure descriptors survive a process restart instead of
// re-resolving them on first use. Grounded on the teacher's
// pkg/resource/badger/datasource.go connection lifecycle (lazy-open
// badger.DB guarded by a mutex, explicit Close).
type DiskProcedureCache struct {
	mu  sync.RWMutex
	db  *badger.DB
	dir string
}

// DiskCacheConfig configures where and how a DiskProcedureCache persists
// its entries.
type DiskCacheConfig struct {
	// DataDir is the on-disk directory Badger stores its LSM tree in.
	// Ignored when InMemory is true.
	DataDir string
	// InMemory runs Badger entirely in memory, useful for tests.
	InMemory bool
}

// OpenDiskProcedureCache opens (creating if necessary) a Badger-backed
// cache at cfg's location.
func OpenDiskProcedureCache(cfg DiskCacheConfig) (*DiskProcedureCache, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.DataDir)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("session: opening procedure cache: %w", err)
	}
	return &DiskProcedureCache{db: db, dir: cfg.DataDir}, nil
}

// Close releases the underlying Badger database.
func (c *DiskProcedureCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Lookup implements the same (descriptor, known, exists) contract as
// batch.CachedProcedureMap.Lookup, reading through to disk.
func (c *DiskProcedureCache) Lookup(name string) (desc *batch.ProcedureDescriptor, known bool, exists bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db == nil {
		return nil, false, false
	}

	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(procedureKeyPrefix + name))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			raw = append([]byte(nil), v...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, false
	}
	if err != nil {
		return nil, false, false
	}
	if len(raw) == 0 {
		// a stored empty value is this cache's tombstone: "looked up,
		// does not exist", matching CachedProcedureMap's nil-value
		// convention.
		return nil, true, false
	}
	var d batch.ProcedureDescriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, false, false
	}
	return &d, true, true
}

// Store persists desc under name. A nil desc writes the tombstone
// recording "name does not exist", so a future Lookup doesn't re-resolve
// it against the server.
func (c *DiskProcedureCache) Store(name string, desc *batch.ProcedureDescriptor) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db == nil {
		return fmt.Errorf("session: procedure cache is closed")
	}

	var raw []byte
	if desc != nil {
		encoded, err := json.Marshal(desc)
		if err != nil {
			return err
		}
		raw = encoded
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(procedureKeyPrefix+name), raw)
	})
}

// ToMemoryMap loads every persisted entry into a fresh
// batch.CachedProcedureMap, for callers that want the disk cache to seed
// a Connection's in-memory map once at startup rather than being
// consulted on every lookup.
func (c *DiskProcedureCache) ToMemoryMap() (batch.CachedProcedureMap, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db == nil {
		return nil, fmt.Errorf("session: procedure cache is closed")
	}

	out := make(batch.CachedProcedureMap)
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(procedureKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			name := string(item.KeyCopy(nil)[len(procedureKeyPrefix):])
			err := item.Value(func(v []byte) error {
				if len(v) == 0 {
					out[name] = nil
					return nil
				}
				var d batch.ProcedureDescriptor
				if err := json.Unmarshal(v, &d); err != nil {
					return err
				}
				out[name] = &d
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
