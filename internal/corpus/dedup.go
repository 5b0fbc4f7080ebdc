package corpus

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// NormalizedHash returns the md5 hex digest of content with comments and
// all whitespace removed, so formatting-only copies collide.
func NormalizedHash(content string) string {
	normalized := blockCommentRe.ReplaceAllString(content, "")
	normalized = lineCommentRe.ReplaceAllString(normalized, "")
	normalized = whitespaceRe.ReplaceAllString(normalized, "")
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// HashIndex remembers content hashes of accepted files.
type HashIndex interface {
	// Seen reports whether hash was added before.
	Seen(hash string) (bool, error)
	// Add records hash. It returns false when hash was already present.
	Add(hash string) (bool, error)
	Close() error
}

// MemoryIndex is a HashIndex for a single run.
type MemoryIndex struct {
	mu     sync.Mutex
	hashes map[string]struct{}
}

// NewMemoryIndex returns an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{hashes: make(map[string]struct{})}
}

// Seen implements HashIndex.
func (m *MemoryIndex) Seen(hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.hashes[hash]
	return ok, nil
}

// Add implements HashIndex.
func (m *MemoryIndex) Add(hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hashes[hash]; ok {
		return false, nil
	}
	m.hashes[hash] = struct{}{}
	return true, nil
}

// Close implements HashIndex.
func (m *MemoryIndex) Close() error { return nil }

// Len returns the number of recorded hashes.
func (m *MemoryIndex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hashes)
}

// BadgerIndex persists hashes across runs in a badger database.
type BadgerIndex struct {
	db *badger.DB
	// serializes check-and-set in Add
	mu sync.Mutex
}

var hashKeyPrefix = []byte("hash/")

// OpenBadgerIndex opens or creates the index at dir. An empty dir opens an
// in-memory database.
func OpenBadgerIndex(dir string) (*BadgerIndex, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open hash index: %w", err)
	}
	return &BadgerIndex{db: db}, nil
}

// Seen implements HashIndex.
func (b *BadgerIndex) Seen(hash string) (bool, error) {
	found := false
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(hashKey(hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("lookup hash %s: %w", hash, err)
	}
	return found, nil
}

// Add implements HashIndex.
func (b *BadgerIndex) Add(hash string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	seen, err := b.Seen(hash)
	if err != nil || seen {
		return false, err
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(hashKey(hash), []byte{1})
	})
	if err != nil {
		return false, fmt.Errorf("store hash %s: %w", hash, err)
	}
	return true, nil
}

// Close implements HashIndex.
func (b *BadgerIndex) Close() error { return b.db.Close() }

func hashKey(hash string) []byte {
	return append(append([]byte{}, hashKeyPrefix...), hash...)
}

// DuplicateGroups groups paths by hash and returns only the groups with
// more than one member. Members keep their input order.
func DuplicateGroups(paths []string, hashes []string) map[string][]string {
	groups := make(map[string][]string)
	for i, h := range hashes {
		groups[h] = append(groups[h], paths[i])
	}
	for h, g := range groups {
		if len(g) < 2 {
			delete(groups, h)
		}
	}
	return groups
}
