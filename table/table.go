// Package table stores variable length items in slotted pages of a heap file and keeps track of pages with
// room left through a free space map.
package table

import (
	"fmt"

	"github.com/gostonefire/freespacemap/internal/conf"
)

// RID - Identifies a stored item by the address of its page and its slot within the page
type RID struct {
	Address int64
	Slot    int16
}

// NilRID - The RID that identifies nothing, used to terminate links between items
var NilRID = RID{Address: conf.NoAddress, Slot: 0}

// IsNil - Returns true if R points nowhere, only the address is looked at
func (R RID) IsNil() bool {
	return R.Address == conf.NoAddress
}

// String - Returns the RID as address:slot
func (R RID) String() string {
	return fmt.Sprintf("%d:%d", R.Address, R.Slot)
}

// Table - Storage of byte items addressed by RID
type Table interface {
	Insert(item []byte) (rid RID, err error)
	Read(rid RID) (item []byte, err error)
	Delete(rid RID) (err error)
}
