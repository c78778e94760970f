// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package snapshot provides stores for the persisted state of units,
so that adaptive state (encoder keys, adaptive thresholds) carries
across runs.  Values round-trip exactly.
*/
package snapshot

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/emer/pcnet/comp"
)

// ErrNotFound is returned by Load when no snapshot is stored for a unit.
var ErrNotFound = errors.New("snapshot: not found")

// Store saves and loads unit snapshots by unit name.
type Store interface {
	Save(sn *comp.Snapshot) error
	Load(unit string) (*comp.Snapshot, error)
}

// SaveAll saves the snapshots of all units.
func SaveAll(st Store, units ...comp.Persister) error {
	for _, u := range units {
		if err := st.Save(u.Snapshot()); err != nil {
			return err
		}
	}
	return nil
}

// LoadAll restores all units from the store.  Units with no stored
// snapshot are left as is unless strict is true, in which case
// ErrNotFound is returned.
func LoadAll(st Store, strict bool, units ...comp.Persister) error {
	for _, u := range units {
		sn, err := st.Load(u.Name())
		if errors.Is(err, ErrNotFound) && !strict {
			continue
		}
		if err != nil {
			return err
		}
		if err := u.Restore(sn); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the snapshot as indented JSON.
func WriteJSON(w io.Writer, sn *comp.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(sn)
}

// ReadJSON reads a snapshot written by WriteJSON.
func ReadJSON(r io.Reader) (*comp.Snapshot, error) {
	sn := &comp.Snapshot{}
	if err := json.NewDecoder(r).Decode(sn); err != nil {
		return nil, err
	}
	return sn, nil
}

// DirStore stores each unit's snapshot as a JSON file in a directory,
// named <unit>.json, or <unit>.json.gz if Gzip is set.
type DirStore struct {

	// directory holding the files, created on first Save
	Dir string

	// gzip compress files
	Gzip bool
}

// NewDirStore returns a new DirStore in dir.
func NewDirStore(dir string, gz bool) *DirStore {
	return &DirStore{Dir: dir, Gzip: gz}
}

// FileName returns the file name for given unit.
func (ds *DirStore) FileName(unit string) string {
	fn := filepath.Join(ds.Dir, unit+".json")
	if ds.Gzip {
		fn += ".gz"
	}
	return fn
}

func (ds *DirStore) Save(sn *comp.Snapshot) error {
	if err := os.MkdirAll(ds.Dir, 0755); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	fp, err := os.Create(ds.FileName(sn.Unit))
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return writeClose(fp, ds.Gzip, sn)
}

// writeClose writes sn to wc, gzipped if gz, and closes wc.  A failed
// close is returned, as the data may not have been written.
func writeClose(wc io.WriteCloser, gz bool, sn *comp.Snapshot) error {
	var err error
	if gz {
		gzr := gzip.NewWriter(wc)
		err = WriteJSON(gzr, sn)
		if err == nil {
			err = gzr.Close()
		}
	} else {
		err = WriteJSON(wc, sn)
	}
	if cerr := wc.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("snapshot %s: %w", sn.Unit, cerr)
	}
	return err
}

func (ds *DirStore) Load(unit string) (*comp.Snapshot, error) {
	fp, err := os.Open(ds.FileName(unit))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, unit, ds.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	defer fp.Close()
	var r io.Reader = fp
	if ds.Gzip {
		gzr, err := gzip.NewReader(fp)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", unit, err)
		}
		defer gzr.Close()
		r = gzr
	}
	sn, err := ReadJSON(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", unit, err)
	}
	return sn, nil
}
