// Package store persists messages, tasks, participants and document
// metadata in a key-ordered Pebble database. Key namespaces:
//
//	msg:<unix_nano_padded>-<seq>   admitted messages, insertion order
//	task:<id>                      task records
//	participant:<id>               roster records
//	doc:<name>                     document metadata
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"curatord/pkg/logger"
	"curatord/pkg/models"
)

var db *pebble.DB
var dbPath string

// seq reduces key collisions when multiple messages share the same
// nanosecond timestamp.
var seq uint64

// Open opens (or creates) a Pebble database at the given path and keeps a
// package handle for use by the accessors below.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
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

func notOpened() error {
	return fmt.Errorf("pebble not opened; call store.Open first")
}

// AppendMessage appends a message to the curated record under a sortable
// timestamp key. The message text is expected to already be sealed.
func AppendMessage(m models.Message) error {
	if db == nil {
		return notOpened()
	}
	ts := m.TS
	if ts == 0 {
		ts = time.Now().UTC().UnixNano()
	}
	s := atomic.AddUint64(&seq, 1)
	key := fmt.Sprintf("msg:%020d-%06d", ts, s)
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := db.Set([]byte(key), data, pebble.Sync); err != nil {
		logger.Error("append_message_failed", "key", key, "error", err)
		return err
	}
	logger.Debug("message_appended", "key", key, "id", m.ID)
	return nil
}

// RecentMessages returns up to limit messages in insertion order, newest
// last. limit <= 0 returns everything.
func RecentMessages(limit int) ([]models.Message, error) {
	if db == nil {
		return nil, notOpened()
	}
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("msg:"),
		UpperBound: []byte("msg;"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Message
	if limit > 0 {
		// walk backwards to collect the newest entries, then reverse
		for iter.Last(); iter.Valid() && len(out) < limit; iter.Prev() {
			var m models.Message
			if err := json.Unmarshal(iter.Value(), &m); err != nil {
				return nil, fmt.Errorf("invalid message record: %w", err)
			}
			out = append(out, m)
		}
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return out, iter.Error()
	}
	for iter.First(); iter.Valid(); iter.Next() {
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			return nil, fmt.Errorf("invalid message record: %w", err)
		}
		out = append(out, m)
	}
	return out, iter.Error()
}

// MessageByTimestamp returns the first message stored with the given
// collection timestamp, or false when none exists.
func MessageByTimestamp(ts int64) (models.Message, bool, error) {
	if db == nil {
		return models.Message{}, false, notOpened()
	}
	prefix := []byte(fmt.Sprintf("msg:%020d-", ts))
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return models.Message{}, false, err
	}
	defer iter.Close()
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			return models.Message{}, false, fmt.Errorf("invalid message record: %w", err)
		}
		return m, true, nil
	}
	return models.Message{}, false, iter.Error()
}

// SaveParticipant upserts a roster record.
func SaveParticipant(p models.Participant) error {
	if db == nil {
		return notOpened()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return db.Set([]byte("participant:"+p.ID), data, pebble.Sync)
}

// DeleteParticipant removes a roster record.
func DeleteParticipant(id string) error {
	if db == nil {
		return notOpened()
	}
	return db.Delete([]byte("participant:"+id), pebble.Sync)
}

// ListParticipants returns all persisted roster records in key order.
func ListParticipants() ([]models.Participant, error) {
	if db == nil {
		return nil, notOpened()
	}
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("participant:"),
		UpperBound: []byte("participant;"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Participant
	for iter.First(); iter.Valid(); iter.Next() {
		var p models.Participant
		if err := json.Unmarshal(iter.Value(), &p); err != nil {
			return nil, fmt.Errorf("invalid participant record: %w", err)
		}
		out = append(out, p)
	}
	return out, iter.Error()
}

// SaveDocMeta upserts document metadata.
func SaveDocMeta(meta models.DocumentMeta) error {
	if db == nil {
		return notOpened()
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return db.Set([]byte("doc:"+meta.Name), data, pebble.Sync)
}

// GetDocMeta returns metadata for one document.
func GetDocMeta(name string) (models.DocumentMeta, bool, error) {
	if db == nil {
		return models.DocumentMeta{}, false, notOpened()
	}
	v, closer, err := db.Get([]byte("doc:" + name))
	if err == pebble.ErrNotFound {
		return models.DocumentMeta{}, false, nil
	}
	if err != nil {
		return models.DocumentMeta{}, false, err
	}
	defer closer.Close()
	var meta models.DocumentMeta
	if err := json.Unmarshal(v, &meta); err != nil {
		return models.DocumentMeta{}, false, fmt.Errorf("invalid doc record: %w", err)
	}
	return meta, true, nil
}

// DeleteDocMeta removes document metadata.
func DeleteDocMeta(name string) error {
	if db == nil {
		return notOpened()
	}
	return db.Delete([]byte("doc:"+name), pebble.Sync)
}

// ListDocMetas returns all document metadata in key order.
func ListDocMetas() ([]models.DocumentMeta, error) {
	if db == nil {
		return nil, notOpened()
	}
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("doc:"),
		UpperBound: []byte("doc;"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.DocumentMeta
	for iter.First(); iter.Valid(); iter.Next() {
		var meta models.DocumentMeta
		if err := json.Unmarshal(iter.Value(), &meta); err != nil {
			return nil, fmt.Errorf("invalid doc record: %w", err)
		}
		out = append(out, meta)
	}
	return out, iter.Error()
}

// ListKeys returns all keys that start with the given prefix; an empty
// prefix returns every key. Used by the inspect tool.
func ListKeys(prefix string) ([]string, error) {
	if db == nil {
		return nil, notOpened()
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	pfx := []byte(prefix)
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if len(pfx) > 0 && !bytes.HasPrefix(iter.Key(), pfx) {
			break
		}
		out = append(out, string(append([]byte(nil), iter.Key()...)))
	}
	return out, iter.Error()
}

// GetKey returns the raw value for the given key. Used by the inspect
// tool.
func GetKey(key string) (string, error) {
	if db == nil {
		return "", notOpened()
	}
	v, closer, err := db.Get([]byte(key))
	if err != nil {
		return "", err
	}
	defer closer.Close()
	return string(v), nil
}
