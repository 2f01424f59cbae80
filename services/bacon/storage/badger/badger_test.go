// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestOpen verifies the database is in memory and usable.
func TestOpen(t *testing.T) {
	db := openTest(t)
	assert.True(t, db.Opts().InMemory)
	assert.Empty(t, db.Opts().Dir)

	err := db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("key"), []byte("value"))
	})
	require.NoError(t, err)

	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("key"))
		require.NoError(t, err)
		return item.Value(func(val []byte) error {
			assert.Equal(t, []byte("value"), val)
			return nil
		})
	})
	require.NoError(t, err)
}

func TestOpen_ZeroConfigUsesDefaults(t *testing.T) {
	db, err := Open(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, DefaultConfig().MemTableSize, db.Opts().MemTableSize)
	assert.Equal(t, 1, db.Opts().NumVersionsToKeep)
}

func TestIntRoundTrip(t *testing.T) {
	db := openTest(t)

	_, found, err := db.GetInt([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, found)

	for _, v := range []int64{0, 1, 7, -1, 1 << 40} {
		require.NoError(t, db.PutInt([]byte("k"), v))
		got, found, err := db.GetInt([]byte("k"))
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, v, got)
	}
}

func TestGetInt_Malformed(t *testing.T) {
	db := openTest(t)
	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("bad"), []byte{})
	}))

	_, _, err := db.GetInt([]byte("bad"))
	assert.Error(t, err)
}

func TestLen_Prefix(t *testing.T) {
	db := openTest(t)
	require.NoError(t, db.PutInt([]byte("a\x00one"), 1))
	require.NoError(t, db.PutInt([]byte("a\x00two"), 2))
	require.NoError(t, db.PutInt([]byte("b\x00one"), 3))

	n, err := db.Len([]byte("a\x00"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = db.Len(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestClosed(t *testing.T) {
	db, err := Open(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, _, err = db.GetInt([]byte("k"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, db.PutInt([]byte("k"), 1), ErrClosed)
	_, err = db.Len(nil)
	assert.ErrorIs(t, err, ErrClosed)
}
