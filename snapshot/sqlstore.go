// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snapshot

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emer/pcnet/comp"
	_ "modernc.org/sqlite" // SQLite driver
)

const sqlSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
    unit TEXT PRIMARY KEY,
    data BLOB NOT NULL
);`

// SQLStore stores snapshots as JSON in a SQLite database, one row per unit.
type SQLStore struct {
	db *sql.DB
}

// OpenSQL opens (creating if needed) the SQLite database at path.
// Use ":memory:" for a transient store.
func OpenSQL(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer
	if _, err := db.ExecContext(context.Background(), sqlSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: failed to initialize schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Close closes the database.
func (ss *SQLStore) Close() error {
	return ss.db.Close()
}

func (ss *SQLStore) Save(sn *comp.Snapshot) error {
	var b bytes.Buffer
	if err := WriteJSON(&b, sn); err != nil {
		return err
	}
	_, err := ss.db.ExecContext(context.Background(),
		`INSERT OR REPLACE INTO snapshots (unit, data) VALUES (?, ?)`, sn.Unit, b.Bytes())
	if err != nil {
		return fmt.Errorf("snapshot: failed to save %s: %w", sn.Unit, err)
	}
	return nil
}

func (ss *SQLStore) Load(unit string) (*comp.Snapshot, error) {
	var data []byte
	err := ss.db.QueryRowContext(context.Background(),
		`SELECT data FROM snapshots WHERE unit = ?`, unit).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, unit)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: failed to load %s: %w", unit, err)
	}
	sn, err := ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", unit, err)
	}
	return sn, nil
}

// Units returns the names of all stored units, sorted.
func (ss *SQLStore) Units() ([]string, error) {
	rows, err := ss.db.QueryContext(context.Background(), `SELECT unit FROM snapshots ORDER BY unit`)
	if err != nil {
		return nil, fmt.Errorf("snapshot: failed to list units: %w", err)
	}
	defer rows.Close()
	var units []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}
