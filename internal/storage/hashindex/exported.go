package hashindex

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/gostonefire/freespacemap/fserr"
	"github.com/gostonefire/freespacemap/internal/bufferpool"
	"github.com/gostonefire/freespacemap/internal/conf"
	"github.com/gostonefire/freespacemap/internal/logging"
	"github.com/gostonefire/freespacemap/internal/model"
)

// Index - A persistent free space index kept entirely in pages of one buffer pool.
// Page 0 is the control block, pages 1..nDirectoryBlocks the directory, and the rest map blocks that
// are either linked into a bucket chain or into the free list.
type Index struct {
	pool             *bufferpool.Pool
	nDirectoryBlocks int64
	log              *slog.Logger
}

// Open - Returns an index on the file behind pool. A file with content is used as is, its control block
// decides the number of directory pages. An empty file is initialized with nDirectoryBlocks directory
// pages and the initial set of free map blocks, and then flushed.
//   - pool is an open buffer pool, the index never closes it
//   - nDirectoryBlocks is the number of directory pages for a new index, at least conf.MinDirectoryBlocks
func Open(pool *bufferpool.Pool, nDirectoryBlocks int64) (index *Index, err error) {
	if pool == nil || !pool.Ready() {
		err = fserr.PoolNotReady{}
		return
	}

	index = &Index{pool: pool, log: logging.WithComponent("hashindex")}

	if pool.FileLength() != 0 {
		var p *model.Page
		p, err = index.pin(conf.ControlBlockAddress)
		if err != nil {
			return
		}
		cb := bytesToControlBlock(p)
		index.unpin(conf.ControlBlockAddress)

		if cb.NDirectoryBlocks < conf.MinDirectoryBlocks {
			err = fmt.Errorf("control block holds %d directory blocks, need at least %d", cb.NDirectoryBlocks, conf.MinDirectoryBlocks)
			return
		}
		index.nDirectoryBlocks = cb.NDirectoryBlocks
		index.log.Debug("opened existing index", "directory_blocks", cb.NDirectoryBlocks, "max_size", cb.MaxSize,
			"file_size", humanize.IBytes(uint64(pool.FileLength())))

		return
	}

	if nDirectoryBlocks < conf.MinDirectoryBlocks {
		err = fserr.NewInvalidArgument("number of directory blocks must be at least %d, got %d", conf.MinDirectoryBlocks, nDirectoryBlocks)
		return
	}
	index.nDirectoryBlocks = nDirectoryBlocks

	err = index.initialize()
	if err != nil {
		err = fmt.Errorf("error while initializing index file: %w", err)
		return
	}

	index.log.Info("index initialized", "directory_blocks", nDirectoryBlocks, "map_blocks", conf.InitialMapBlocks)

	return
}

// Insert - Registers address as a page offering size bytes of free space.
// The address is appended to the first block in the bucket chain with room, if all blocks are full a new
// block is allocated (free list first) and spliced in as the new chain head.
//   - size is the bucket, 0..127
//   - address is the page address to register
func (I *Index) Insert(size int16, address int64) (err error) {
	err = I.checkSize(size)
	if err != nil {
		return
	}

	ctrlPage, err := I.pin(conf.ControlBlockAddress)
	if err != nil {
		return
	}
	defer I.unpin(conf.ControlBlockAddress)

	dirAddress := directoryAddress(size)
	dirPage, err := I.pin(dirAddress)
	if err != nil {
		return
	}
	defer I.unpin(dirAddress)

	entry := directoryEntry(size)
	head := getDirectoryEntry(dirPage, entry)

	var appended bool
	appended, err = I.appendToChain(head, address)
	if err != nil || appended {
		return
	}

	block := model.MapBlock{NItems: 1, Next: head}
	block.Entries[0] = address

	newHead, err := I.allocateBlock(ctrlPage, block)
	if err != nil {
		return
	}
	setDirectoryEntry(dirPage, entry, newHead)
	I.log.Debug("new chain head", "bucket", size, "block", newHead, "address", address)

	return
}

// Pop - Removes address from the bucket. A block left empty is unlinked from the chain and pushed onto the
// free list. An address not present is a no-op reported through found being false.
//   - size is the bucket, 0..127
//   - address is the page address to remove
func (I *Index) Pop(size int16, address int64) (found bool, err error) {
	err = I.checkSize(size)
	if err != nil {
		return
	}

	ctrlPage, err := I.pin(conf.ControlBlockAddress)
	if err != nil {
		return
	}
	defer I.unpin(conf.ControlBlockAddress)

	dirAddress := directoryAddress(size)
	dirPage, err := I.pin(dirAddress)
	if err != nil {
		return
	}
	defer I.unpin(dirAddress)

	entry := directoryEntry(size)
	prev := conf.NoAddress
	cur := getDirectoryEntry(dirPage, entry)

	for cur != conf.NoAddress {
		var p *model.Page
		p, err = I.pin(cur)
		if err != nil {
			return
		}
		block := bytesToMapBlock(p)

		j := indexOf(block, address)
		if j < 0 {
			I.unpin(cur)
			prev, cur = cur, block.Next
			continue
		}

		found = true
		if block.NItems > 1 {
			removeEntry(&block, j)
			mapBlockToBytes(block, p)
			I.unpin(cur)
			return
		}

		// Never in a chain and the free list at once, so unlink first.
		next := block.Next
		I.unpin(cur)
		err = I.link(dirPage, entry, prev, next)
		if err != nil {
			return
		}

		p, err = I.pin(cur)
		if err != nil {
			return
		}
		I.freeBlock(ctrlPage, cur, p)
		I.unpin(cur)
		I.log.Debug("block released to free list", "bucket", size, "block", cur)

		return
	}

	I.log.Debug("address not found in bucket", "bucket", size, "address", address)

	return
}

// PopLowerBound - Removes and returns an address from the smallest non-empty bucket at or above size.
// The address taken is the last entry of that bucket's head block. conf.NoAddress is returned if every
// bucket from size upwards is empty.
//   - size is the least amount of free space needed, 0..127
func (I *Index) PopLowerBound(size int16) (address int64, err error) {
	address = conf.NoAddress
	err = I.checkSize(size)
	if err != nil {
		return
	}

	bucket, candidate, err := I.lowerBound(size)
	if err != nil || candidate == conf.NoAddress {
		return
	}

	found, err := I.Pop(bucket, candidate)
	if err != nil {
		return
	}
	if !found {
		err = fmt.Errorf("address %d vanished from bucket %d", candidate, bucket)
		return
	}

	address = candidate
	I.log.Debug("popped lower bound", "size", size, "bucket", bucket, "address", address)

	return
}

// Head - Returns the address of the head map block of a bucket, conf.NoAddress if the bucket is empty
func (I *Index) Head(size int16) (head int64, err error) {
	head = conf.NoAddress
	err = I.checkSize(size)
	if err != nil {
		return
	}

	dirAddress := directoryAddress(size)
	p, err := I.pin(dirAddress)
	if err != nil {
		return
	}
	head = getDirectoryEntry(p, directoryEntry(size))
	I.unpin(dirAddress)

	return
}

// Entries - Returns every address in a bucket, walking the chain from its head and each block in entry order
func (I *Index) Entries(size int16) (addresses []int64, err error) {
	head, err := I.Head(size)
	if err != nil {
		return
	}

	iter, err := I.chain(head)
	if err != nil {
		return
	}

	var block model.MapBlock
	for iter.HasNext() {
		_, block, err = iter.Next()
		if err != nil {
			return
		}
		addresses = append(addresses, block.Entries[:block.NItems]...)
	}

	return
}

// FreeList - Returns an iterator over the map blocks currently in the free list
func (I *Index) FreeList() (iter *ChainBlocks, err error) {
	p, err := I.pin(conf.ControlBlockAddress)
	if err != nil {
		return
	}
	cb := bytesToControlBlock(p)
	I.unpin(conf.ControlBlockAddress)

	iter = newChainBlocks(I, cb.FreeBlockHead, cb.MaxSize)

	return
}

// Stat - Walks every bucket chain and the free list and returns a model.IndexStat
func (I *Index) Stat() (stat model.IndexStat, err error) {
	params, err := I.GetParameters()
	if err != nil {
		return
	}
	stat.DirectoryBlocks = params.DirectoryBlocks
	stat.MaxSize = params.MaxSize

	var block model.MapBlock
	for b := int16(0); b < conf.BucketCount; b++ {
		var head int64
		head, err = I.Head(b)
		if err != nil {
			return
		}
		iter := newChainBlocks(I, head, params.MaxSize)
		for iter.HasNext() {
			_, block, err = iter.Next()
			if err != nil {
				return
			}
			stat.ChainBlocks++
			stat.Entries += block.NItems
			stat.BucketDistribution[b] += block.NItems
		}
	}

	free, err := I.FreeList()
	if err != nil {
		return
	}
	for free.HasNext() {
		_, _, err = free.Next()
		if err != nil {
			return
		}
		stat.FreeBlocks++
	}

	return
}

// GetParameters - Returns the structural parameters of the index
func (I *Index) GetParameters() (params model.IndexParameters, err error) {
	p, err := I.pin(conf.ControlBlockAddress)
	if err != nil {
		return
	}
	cb := bytesToControlBlock(p)
	I.unpin(conf.ControlBlockAddress)

	params = model.IndexParameters{
		DirectoryBlocks: cb.NDirectoryBlocks,
		MaxSize:         cb.MaxSize,
		FileSize:        I.pool.FileLength(),
	}

	return
}
