package hashindex

import (
	"fmt"

	"github.com/gostonefire/freespacemap/fserr"
	"github.com/gostonefire/freespacemap/internal/conf"
	"github.com/gostonefire/freespacemap/internal/model"
)

// pin - Fetches and pins a page of the index file. All page access of the index goes through pin and
// unpin so a latch per page can be taken here later on.
func (I *Index) pin(address int64) (p *model.Page, err error) {
	p, err = I.pool.GetPage(address)
	if err != nil {
		I.log.Error("unable to get index page", "address", address, "error", err)
	}

	return
}

// unpin - Releases a page pinned by pin
func (I *Index) unpin(address int64) {
	if err := I.pool.Release(address); err != nil {
		I.log.Warn("unable to release index page", "address", address, "error", err)
	}
}

// checkSize - Returns fserr.InvalidSize if size is not a bucket
func (I *Index) checkSize(size int16) (err error) {
	if size < 0 || size >= conf.BucketCount {
		err = fserr.InvalidSize{Size: size}
		I.log.Warn("invalid bucket size", "size", size)
	}

	return
}

// directoryAddress - Returns the address of the directory page holding the head of a bucket
func directoryAddress(size int16) int64 {
	return conf.PageSize * (int64(size)/conf.DirBlockSize + 1)
}

// directoryEntry - Returns the entry within its directory page that holds the head of a bucket
func directoryEntry(size int16) int64 {
	return int64(size) % conf.DirBlockSize
}

// initialize - Writes control block, empty directory and the initial free list to a new index file
func (I *Index) initialize() (err error) {
	cb := model.ControlBlock{
		NDirectoryBlocks: I.nDirectoryBlocks,
		FreeBlockHead:    conf.PageSize * (I.nDirectoryBlocks + 1),
		MaxSize:          conf.InitialMapBlocks,
	}

	p, err := I.pin(conf.ControlBlockAddress)
	if err != nil {
		return
	}
	controlBlockToBytes(cb, p)
	I.unpin(conf.ControlBlockAddress)

	var empty model.DirectoryBlock
	for i := range empty {
		empty[i] = conf.NoAddress
	}
	for i := int64(0); i < I.nDirectoryBlocks; i++ {
		address := conf.PageSize * (i + 1)
		p, err = I.pin(address)
		if err != nil {
			return
		}
		directoryBlockToBytes(empty, p)
		I.unpin(address)
	}

	for i := int64(0); i < cb.MaxSize; i++ {
		address := cb.FreeBlockHead + conf.PageSize*i
		block := model.MapBlock{Next: conf.NoAddress}
		if i != cb.MaxSize-1 {
			block.Next = address + conf.PageSize
		}

		p, err = I.pin(address)
		if err != nil {
			return
		}
		mapBlockToBytes(block, p)
		I.unpin(address)
	}

	err = I.pool.Flush()

	return
}

// appendToChain - Appends address to the first block in the chain starting at head that has room
func (I *Index) appendToChain(head, address int64) (appended bool, err error) {
	cur := head
	for cur != conf.NoAddress {
		var p *model.Page
		p, err = I.pin(cur)
		if err != nil {
			return
		}
		block := bytesToMapBlock(p)

		if block.NItems < conf.MapBlockCapacity {
			block.Entries[block.NItems] = address
			block.NItems++
			mapBlockToBytes(block, p)
			I.unpin(cur)
			appended = true
			return
		}

		I.unpin(cur)
		cur = block.Next
	}

	return
}

// allocateBlock - Writes block to a map block taken from the free list, or to a new block past the end of
// the file if the free list is empty, and returns its address. The control page must be pinned by the caller.
func (I *Index) allocateBlock(ctrlPage *model.Page, block model.MapBlock) (address int64, err error) {
	cb := bytesToControlBlock(ctrlPage)

	var p *model.Page
	if cb.FreeBlockHead != conf.NoAddress {
		address = cb.FreeBlockHead
		p, err = I.pin(address)
		if err != nil {
			return
		}
		free := bytesToMapBlock(p)
		mapBlockToBytes(block, p)
		I.unpin(address)

		cb.FreeBlockHead = free.Next
		controlBlockToBytes(cb, ctrlPage)

		return
	}

	address = conf.PageSize * (1 + cb.NDirectoryBlocks + cb.MaxSize)
	cb.MaxSize++
	controlBlockToBytes(cb, ctrlPage)

	p, err = I.pin(address)
	if err != nil {
		return
	}
	mapBlockToBytes(block, p)
	I.unpin(address)

	I.log.Debug("extended index file", "block", address, "max_size", cb.MaxSize)

	return
}

// freeBlock - Turns the pinned map page at address into an empty block at the head of the free list.
// The control page must be pinned by the caller.
func (I *Index) freeBlock(ctrlPage *model.Page, address int64, p *model.Page) {
	cb := bytesToControlBlock(ctrlPage)
	mapBlockToBytes(model.MapBlock{Next: cb.FreeBlockHead}, p)
	cb.FreeBlockHead = address
	controlBlockToBytes(cb, ctrlPage)
}

// link - Points the predecessor of a removed block at next. The predecessor is the directory entry when
// prev is conf.NoAddress, otherwise the map block at prev.
func (I *Index) link(dirPage *model.Page, entry, prev, next int64) (err error) {
	if prev == conf.NoAddress {
		setDirectoryEntry(dirPage, entry, next)
		return
	}

	p, err := I.pin(prev)
	if err != nil {
		return
	}
	block := bytesToMapBlock(p)
	block.Next = next
	mapBlockToBytes(block, p)
	I.unpin(prev)

	return
}

// lowerBound - Finds the smallest bucket at or above size with entries and returns the last entry of its
// head block, without removing it
func (I *Index) lowerBound(size int16) (bucket int16, address int64, err error) {
	address = conf.NoAddress

	_, err = I.pin(conf.ControlBlockAddress)
	if err != nil {
		return
	}
	defer I.unpin(conf.ControlBlockAddress)

	dirAddress := conf.NoAddress
	defer func() {
		if dirAddress != conf.NoAddress {
			I.unpin(dirAddress)
		}
	}()

	var dirPage, p *model.Page
	for b := size; b < conf.BucketCount; b++ {
		if da := directoryAddress(b); da != dirAddress {
			if dirAddress != conf.NoAddress {
				I.unpin(dirAddress)
				dirAddress = conf.NoAddress
			}
			dirPage, err = I.pin(da)
			if err != nil {
				return
			}
			dirAddress = da
		}

		head := getDirectoryEntry(dirPage, directoryEntry(b))
		if head == conf.NoAddress {
			continue
		}

		p, err = I.pin(head)
		if err != nil {
			return
		}
		block := bytesToMapBlock(p)
		I.unpin(head)

		if block.NItems <= 0 || block.NItems > conf.MapBlockCapacity {
			err = fmt.Errorf("head block %d of bucket %d holds %d items, index is corrupt", head, b, block.NItems)
			return
		}

		bucket = b
		address = block.Entries[block.NItems-1]
		return
	}

	return
}

// chain - Returns an iterator over the chain starting at head
func (I *Index) chain(head int64) (iter *ChainBlocks, err error) {
	params, err := I.GetParameters()
	if err != nil {
		return
	}
	iter = newChainBlocks(I, head, params.MaxSize)

	return
}

// indexOf - Returns the position of address among the entries in use of block, -1 if not there
func indexOf(block model.MapBlock, address int64) int64 {
	n := min(block.NItems, conf.MapBlockCapacity)
	for j := int64(0); j < n; j++ {
		if block.Entries[j] == address {
			return j
		}
	}
	return -1
}

// removeEntry - Removes entry j keeping the entries in use dense
func removeEntry(block *model.MapBlock, j int64) {
	copy(block.Entries[j:block.NItems-1], block.Entries[j+1:block.NItems])
	block.NItems--
	block.Entries[block.NItems] = 0
}
