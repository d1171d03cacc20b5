package table

import "github.com/gostonefire/freespacemap/internal/conf"

// slotCountOffset - Heap page offset to number of slots in the slot directory - 2 bytes
const slotCountOffset int64 = 0

// recordEndOffset - Heap page offset to the first byte after the last record - 2 bytes
const recordEndOffset int64 = 2

// pageHeaderLength - Length of the heap page header, records start right after it
const pageHeaderLength int64 = 4

// SlotSize - Length of one slot directory entry, record offset and record length - 2 bytes each
const SlotSize int64 = 4

// MaxItemSize - Largest item that fits in an empty heap page together with its slot
const MaxItemSize int = int(conf.PageSize - pageHeaderLength - SlotSize)
