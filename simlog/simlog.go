// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package simlog records per-step statistics of a simulation into an
etable.Table, one row per Record call, which can be written as CSV,
either all at once or streamed row by row to a file.
*/
package simlog

import (
	"io"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
	"github.com/emer/pcnet/comp"
)

// Item is one logged column, computed by Fun at each Record.
type Item struct {
	Name string
	Fun  func() float64
}

// Log is a step log.
type Log struct {

	// the log table: Episode, Cycle and T columns followed by one column per item
	Table *etable.Table

	// the logged items
	Items []Item

	// if non-nil, each recorded row is also written here as it is recorded
	File io.Writer `view:"-"`

	// column delimiter for CSV output
	Delim etable.Delims

	headersDone bool
}

// New returns a new log with given items.
func New(name string, items ...Item) *Log {
	lg := &Log{Items: items, Delim: etable.Comma}
	dt := &etable.Table{}
	dt.SetMetaData("name", name)
	dt.SetMetaData("read-only", "true")
	sch := etable.Schema{
		{"Episode", etensor.INT64, nil, nil},
		{"Cycle", etensor.INT64, nil, nil},
		{"T", etensor.FLOAT64, nil, nil},
	}
	for _, it := range items {
		sch = append(sch, etable.Column{it.Name, etensor.FLOAT64, nil, nil})
	}
	dt.SetFromSchema(sch, 0)
	lg.Table = dt
	return lg
}

// Record adds a row for the current time.
func (lg *Log) Record(tm *comp.Time) error {
	dt := lg.Table
	row := dt.Rows
	dt.SetNumRows(row + 1)
	dt.SetCellFloat("Episode", row, float64(tm.Episode))
	dt.SetCellFloat("Cycle", row, float64(tm.Cycle))
	dt.SetCellFloat("T", row, float64(tm.T))
	for _, it := range lg.Items {
		dt.SetCellFloat(it.Name, row, it.Fun())
	}
	if lg.File == nil {
		return nil
	}
	if !lg.headersDone {
		if _, err := dt.WriteCSVHeaders(lg.File, lg.Delim); err != nil {
			return err
		}
		lg.headersDone = true
	}
	return dt.WriteCSVRow(lg.File, row, lg.Delim)
}

// WriteCSV writes the whole table, with headers.
func (lg *Log) WriteCSV(w io.Writer) error {
	return lg.Table.WriteCSV(w, lg.Delim, etable.Headers)
}

// Reset removes all rows.
func (lg *Log) Reset() {
	lg.Table.SetNumRows(0)
}

// SlotStats returns the average and max of the slot values.
func SlotStats(sl *comp.Slot) minmax.AvgMax32 {
	var am minmax.AvgMax32
	am.Init()
	for i, v := range sl.Values() {
		am.UpdateVal(v, int32(i))
	}
	am.CalcAvg()
	return am
}

// SlotItems returns Avg and Max log items for the slot, named
// prefix+"Avg" and prefix+"Max".
func SlotItems(prefix string, sl *comp.Slot) []Item {
	return []Item{
		{Name: prefix + "Avg", Fun: func() float64 { return float64(SlotStats(sl).Avg) }},
		{Name: prefix + "Max", Fun: func() float64 { return float64(SlotStats(sl).Max) }},
	}
}

// SlotSum returns a log item with the sum of the slot values.
func SlotSum(name string, sl *comp.Slot) Item {
	return Item{Name: name, Fun: func() float64 {
		s := float64(0)
		for _, v := range sl.Values() {
			s += float64(v)
		}
		return s
	}}
}
