// Package store is the local persisted state: per-wallet engagement marks
// (liked / bookmarked post ids) and decoded entity snapshots for warm
// restarts. Ledger truth never lives here; everything in this store can be
// rebuilt from a full rescan except the engagement marks, which exist only
// locally.
package store

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/cockroachdb/pebble"

	"blocksd/pkg/logger"
)

var db *pebble.DB

// Open opens (or creates) the Pebble database at the given path and keeps a
// global handle for simple usage in this package.
func Open(path string) error {
	var err error
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "err", err)
		return err
	}
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

// MarkKind separates the two engagement namespaces. Likes are ledger-gated;
// bookmarks never leave this store.
type MarkKind string

const (
	MarkLike     MarkKind = "like"
	MarkBookmark MarkKind = "mark"
)

// Key format: engage:<wallet>:<kind>:<post id, zero padded for ordering>
func engageKey(wallet string, kind MarkKind, postID uint64) []byte {
	return []byte(fmt.Sprintf("engage:%s:%s:%020d", wallet, kind, postID))
}

func engagePrefix(wallet string, kind MarkKind) []byte {
	return []byte(fmt.Sprintf("engage:%s:%s:", wallet, kind))
}

// SetMark records one engagement mark for a wallet.
func SetMark(wallet string, kind MarkKind, postID uint64) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	return db.Set(engageKey(wallet, kind, postID), []byte{1}, pebble.Sync)
}

// ClearMark removes one engagement mark. Clearing an absent mark is a no-op.
func ClearMark(wallet string, kind MarkKind, postID uint64) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	return db.Delete(engageKey(wallet, kind, postID), pebble.Sync)
}

// HasMark reports whether a wallet holds the given mark.
func HasMark(wallet string, kind MarkKind, postID uint64) (bool, error) {
	if db == nil {
		return false, fmt.Errorf("pebble not opened; call store.Open first")
	}
	_, closer, err := db.Get(engageKey(wallet, kind, postID))
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_ = closer.Close()
	return true, nil
}

// ListMarks returns every post id a wallet has marked, ascending.
func ListMarks(wallet string, kind MarkKind) ([]uint64, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := engagePrefix(wallet, kind)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	out := []uint64{}
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		id, perr := strconv.ParseUint(string(iter.Key()[len(prefix):]), 10, 64)
		if perr != nil {
			continue
		}
		out = append(out, id)
	}
	return out, iter.Error()
}

// ClearWallet drops every mark a wallet holds (explicit user action).
func ClearWallet(wallet string) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	for _, kind := range []MarkKind{MarkLike, MarkBookmark} {
		ids, err := ListMarks(wallet, kind)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := ClearMark(wallet, kind, id); err != nil {
				return err
			}
		}
	}
	logger.Info("engage_wallet_cleared", "wallet", wallet)
	return nil
}

// SaveSnapshot persists one decoded entity JSON blob by ledger address so a
// restart can serve reads before the first full rescan completes.
func SaveSnapshot(addr string, kind string, data []byte) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	key := []byte("snapshot:" + addr)
	val := append([]byte(kind+":"), data...)
	return db.Set(key, val, pebble.NoSync)
}

// LoadSnapshots walks all persisted snapshots, calling fn with the address,
// kind and JSON payload of each.
func LoadSnapshots(fn func(addr, kind string, data []byte) error) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte("snapshot:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		addr := string(iter.Key()[len(prefix):])
		val := append([]byte(nil), iter.Value()...)
		i := bytes.IndexByte(val, ':')
		if i < 0 {
			continue
		}
		if err := fn(addr, string(val[:i]), val[i+1:]); err != nil {
			return err
		}
	}
	return iter.Error()
}
