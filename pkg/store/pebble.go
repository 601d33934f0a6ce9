// Package store persists topic snapshots in a Pebble database. A topic
// is stored as one JSON value; mutations replace the whole snapshot so
// readers never observe a half-updated branch forest.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"synapse/pkg/logger"
	"synapse/pkg/models"
)

var (
	db     *pebble.DB
	dbPath string
)

const topicPrefix = "topic:"

// Open opens (or creates) a Pebble database at the given path and keeps
// a global handle for simple usage in this package.
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

func topicKey(id string) []byte {
	return []byte(topicPrefix + id)
}

// SaveTopic writes the full topic snapshot under its id.
func SaveTopic(t *models.Topic) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal topic: %w", err)
	}
	if err := db.Set(topicKey(t.ID), data, pebble.Sync); err != nil {
		logger.Error("save_topic_failed", "topic", t.ID, "error", err)
		return err
	}
	logger.Debug("topic_saved", "topic", t.ID, "branches", len(t.Branches))
	return nil
}

// GetTopic loads one topic snapshot. Missing topics return
// pebble.ErrNotFound.
func GetTopic(id string) (*models.Topic, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	v, closer, err := db.Get(topicKey(id))
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	var t models.Topic
	if err := json.Unmarshal(v, &t); err != nil {
		return nil, fmt.Errorf("invalid stored topic %s: %w", id, err)
	}
	return &t, nil
}

// ListTopics returns all stored topics in key order.
func ListTopics() ([]*models.Topic, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte(topicPrefix)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []*models.Topic
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var t models.Topic
		if err := json.Unmarshal(iter.Value(), &t); err != nil {
			logger.Error("list_topics_bad_value", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, &t)
	}
	return out, nil
}

// DeleteTopic removes a topic snapshot.
func DeleteTopic(id string) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	if err := db.Delete(topicKey(id), pebble.Sync); err != nil {
		return err
	}
	logger.Info("topic_deleted", "topic", id)
	return nil
}

// IsNotFound reports whether err is the store's missing-key error.
func IsNotFound(err error) bool {
	return errors.Is(err, pebble.ErrNotFound)
}
