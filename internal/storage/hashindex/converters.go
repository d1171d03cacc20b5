package hashindex

import (
	"github.com/gostonefire/freespacemap/internal/conf"
	"github.com/gostonefire/freespacemap/internal/file"
	"github.com/gostonefire/freespacemap/internal/model"
)

// bytesToControlBlock - Converts a control page to a ControlBlock struct
func bytesToControlBlock(p *model.Page) (cb model.ControlBlock) {
	cb = model.ControlBlock{
		NDirectoryBlocks: file.BytesToAddress(p[conf.NDirectoryBlocksOffset:]),
		FreeBlockHead:    file.BytesToAddress(p[conf.FreeBlockHeadOffset:]),
		MaxSize:          file.BytesToAddress(p[conf.MaxSizeOffset:]),
	}

	return
}

// controlBlockToBytes - Writes a ControlBlock struct into a control page
func controlBlockToBytes(cb model.ControlBlock, p *model.Page) {
	file.AddressToBytes(p[conf.NDirectoryBlocksOffset:], cb.NDirectoryBlocks)
	file.AddressToBytes(p[conf.FreeBlockHeadOffset:], cb.FreeBlockHead)
	file.AddressToBytes(p[conf.MaxSizeOffset:], cb.MaxSize)
}

// bytesToDirectoryBlock - Converts a directory page to a DirectoryBlock
func bytesToDirectoryBlock(p *model.Page) (db model.DirectoryBlock) {
	for i := range db {
		db[i] = getDirectoryEntry(p, int64(i))
	}

	return
}

// directoryBlockToBytes - Writes a DirectoryBlock into a directory page
func directoryBlockToBytes(db model.DirectoryBlock, p *model.Page) {
	for i, a := range db {
		setDirectoryEntry(p, int64(i), a)
	}
}

// getDirectoryEntry - Returns the head address stored at entry of a directory page
func getDirectoryEntry(p *model.Page, entry int64) int64 {
	return file.BytesToAddress(p[entry*conf.AddressLength:])
}

// setDirectoryEntry - Sets the head address stored at entry of a directory page
func setDirectoryEntry(p *model.Page, entry, address int64) {
	file.AddressToBytes(p[entry*conf.AddressLength:], address)
}

// bytesToMapBlock - Converts a map page to a MapBlock struct
func bytesToMapBlock(p *model.Page) (mb model.MapBlock) {
	mb.NItems = file.BytesToAddress(p[conf.MapBlockItemsOffset:])
	mb.Next = file.BytesToAddress(p[conf.MapBlockNextOffset:])
	for i := range mb.Entries {
		mb.Entries[i] = file.BytesToAddress(p[conf.MapBlockEntriesOffset+int64(i)*conf.AddressLength:])
	}

	return
}

// mapBlockToBytes - Writes a MapBlock struct into a map page
func mapBlockToBytes(mb model.MapBlock, p *model.Page) {
	file.AddressToBytes(p[conf.MapBlockItemsOffset:], mb.NItems)
	file.AddressToBytes(p[conf.MapBlockNextOffset:], mb.Next)
	for i, a := range mb.Entries {
		file.AddressToBytes(p[conf.MapBlockEntriesOffset+int64(i)*conf.AddressLength:], a)
	}
}
