// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comp

import (
	"fmt"
	"strings"

	"github.com/c2h5oh/datasize"
)

// SizeReport returns a string reporting the number of slots and
// slot memory of each unit, and the total memory footprint.
func SizeReport(units ...Unit) string {
	var b strings.Builder
	tot := 0
	nslot := 0
	for _, u := range units {
		mem := 0
		for _, sl := range u.Slots() {
			mem += sl.Bytes()
		}
		tot += mem
		nslot += len(u.Slots())
		fmt.Fprintf(&b, "%14s:\t Type: %s\t Slots: %d\t SlotMem: %v\n", u.Name(), u.TypeName(), len(u.Slots()), (datasize.ByteSize)(mem).HumanReadable())
	}
	fmt.Fprintf(&b, "\n%14s:\t Units: %d\t Slots: %d\t SlotMem: %v\n", "Total", len(units), nslot, (datasize.ByteSize)(tot).HumanReadable())
	return b.String()
}
