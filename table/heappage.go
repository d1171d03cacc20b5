package table

import (
	"github.com/gostonefire/freespacemap/internal/conf"
	"github.com/gostonefire/freespacemap/internal/file"
	"github.com/gostonefire/freespacemap/internal/model"
)

// heapPage - Slotted page view over a cached page. Records grow forward from the header, the slot directory
// grows backward from the end of the page. A slot with offset 0 is a tombstone.
type heapPage struct {
	p *model.Page
}

// initialize - Sets up the header of a page never written before
func (H heapPage) initialize() {
	if H.recordEnd() == 0 {
		H.setSlotCount(0)
		H.setRecordEnd(pageHeaderLength)
	}
}

func (H heapPage) slotCount() int64 {
	return int64(file.BytesToInt16(H.p[slotCountOffset:]))
}

func (H heapPage) setSlotCount(n int64) {
	file.Int16ToBytes(H.p[slotCountOffset:], int16(n))
}

func (H heapPage) recordEnd() int64 {
	return int64(file.BytesToInt16(H.p[recordEndOffset:]))
}

func (H heapPage) setRecordEnd(end int64) {
	file.Int16ToBytes(H.p[recordEndOffset:], int16(end))
}

// slotPosition - Returns the page offset of slot directory entry i
func slotPosition(i int64) int64 {
	return conf.PageSize - SlotSize*(i+1)
}

func (H heapPage) slot(i int64) (offset, length int64) {
	pos := slotPosition(i)
	offset = int64(file.BytesToInt16(H.p[pos:]))
	length = int64(file.BytesToInt16(H.p[pos+2:]))

	return
}

func (H heapPage) setSlot(i, offset, length int64) {
	pos := slotPosition(i)
	file.Int16ToBytes(H.p[pos:], int16(offset))
	file.Int16ToBytes(H.p[pos+2:], int16(length))
}

// freeSpace - Returns the number of bytes an item placed in a new slot could use, negative if not even
// an empty slot fits
func (H heapPage) freeSpace() int64 {
	return conf.PageSize - SlotSize*H.slotCount() - H.recordEnd() - SlotSize
}

// bucket - Returns the free space map bucket for an amount of free space
func bucket(free int64) int16 {
	if free < 0 {
		return 0
	}
	if free >= int64(conf.BucketCount) {
		return conf.BucketCount - 1
	}
	return int16(free)
}

// record - Returns the bytes of the record in slot i, ok is false for a tombstone or a slot out of range
func (H heapPage) record(i int64) (data []byte, ok bool) {
	if i < 0 || i >= H.slotCount() {
		return
	}
	offset, length := H.slot(i)
	if offset == 0 {
		return
	}

	return H.p[offset : offset+length], true
}

// place - Appends item to the records and returns its slot, reusing the first tombstone if any.
// The caller makes sure the item fits.
func (H heapPage) place(item []byte) (slot int64) {
	n := H.slotCount()
	slot = n
	for i := int64(0); i < n; i++ {
		if offset, _ := H.slot(i); offset == 0 {
			slot = i
			break
		}
	}
	if slot == n {
		H.setSlotCount(n + 1)
	}

	end := H.recordEnd()
	copy(H.p[end:], item)
	H.setSlot(slot, end, int64(len(item)))
	H.setRecordEnd(end + int64(len(item)))

	return
}

// remove - Tombstones slot i and compacts the records so the free space is contiguous again.
// Trailing tombstones are dropped from the slot directory.
func (H heapPage) remove(i int64) {
	offset, length := H.slot(i)
	end := H.recordEnd()

	copy(H.p[offset:], H.p[offset+length:end])
	for j := end - length; j < end; j++ {
		H.p[j] = 0
	}
	H.setRecordEnd(end - length)

	n := H.slotCount()
	for j := int64(0); j < n; j++ {
		if o, l := H.slot(j); o > offset {
			H.setSlot(j, o-length, l)
		}
	}
	H.setSlot(i, 0, 0)

	for n > 0 {
		if o, _ := H.slot(n - 1); o != 0 {
			break
		}
		n--
	}
	H.setSlotCount(n)
}

// fits - Returns true if item can be placed without overwriting the slot directory
func (H heapPage) fits(item []byte) bool {
	room := conf.PageSize - SlotSize*H.slotCount() - H.recordEnd()
	n := H.slotCount()
	for i := int64(0); i < n; i++ {
		if offset, _ := H.slot(i); offset == 0 {
			return room >= int64(len(item))
		}
	}

	return room >= int64(len(item))+SlotSize
}
