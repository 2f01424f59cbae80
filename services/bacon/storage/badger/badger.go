// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package badger opens in-memory BadgerDB instances.
//
// kbacon keeps no state on disk. Badger is used purely as a concurrent,
// size-bounded key/value memo that lives as long as the process:
//
//	Hot (LRU) → Warm (in-memory BadgerDB)
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package badger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// ErrClosed is returned by DB methods after Close.
var ErrClosed = badger.ErrDBClosed

// Config holds configuration for an in-memory BadgerDB instance.
type Config struct {
	// Logger receives BadgerDB's internal log lines.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger

	// MemTableSize is the size of each memtable in bytes.
	// Default: 16 MiB.
	MemTableSize int64

	// NumVersionsToKeep is the number of versions to keep per key.
	// Default: 1.
	NumVersionsToKeep int
}

// DefaultConfig returns a small-footprint configuration.
func DefaultConfig() Config {
	return Config{
		MemTableSize:      16 << 20,
		NumVersionsToKeep: 1,
	}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// DB wraps an in-memory BadgerDB with integer value helpers.
//
// Thread Safety: Safe for concurrent use.
type DB struct {
	*badger.DB
}

// Open creates an in-memory BadgerDB.
//
// Description:
//
//	Never touches disk: the database is opened with WithInMemory(true),
//	and all contents are lost on Close. Zero config fields fall back to
//	DefaultConfig.
//
// Inputs:
//
//	cfg - Database configuration.
//
// Outputs:
//
//	*DB - The opened database. Caller must call Close() when done.
//	error - Non-nil if the database cannot be opened.
func Open(cfg Config) (*DB, error) {
	def := DefaultConfig()
	if cfg.MemTableSize <= 0 {
		cfg.MemTableSize = def.MemTableSize
	}
	if cfg.NumVersionsToKeep <= 0 {
		cfg.NumVersionsToKeep = def.NumVersionsToKeep
	}

	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithMemTableSize(cfg.MemTableSize).
		WithNumVersionsToKeep(cfg.NumVersionsToKeep)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger database: %w", err)
	}
	return &DB{DB: db}, nil
}

// GetInt reads an integer stored with PutInt.
//
// Outputs:
//
//	int64 - The stored value, 0 when absent.
//	bool - True if the key was present.
//	error - Non-nil on read failure or a malformed value.
func (d *DB) GetInt(key []byte) (int64, bool, error) {
	if d.IsClosed() {
		return 0, false, ErrClosed
	}

	var (
		value int64
		found bool
	)
	err := d.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(raw []byte) error {
			v, n := binary.Varint(raw)
			if n <= 0 {
				return fmt.Errorf("malformed varint for key %q", key)
			}
			value, found = v, true
			return nil
		})
	})
	if err != nil {
		return 0, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, found, nil
}

// PutInt stores value under key as a signed varint.
func (d *DB) PutInt(key []byte, value int64) error {
	if d.IsClosed() {
		return ErrClosed
	}

	buf := binary.AppendVarint(nil, value)
	if err := d.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf)
	}); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Len counts the keys that start with prefix.
func (d *DB) Len(prefix []byte) (int, error) {
	if d.IsClosed() {
		return 0, ErrClosed
	}

	n := 0
	err := d.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}
