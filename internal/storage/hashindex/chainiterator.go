package hashindex

import (
	"fmt"

	"github.com/gostonefire/freespacemap/fserr"
	"github.com/gostonefire/freespacemap/internal/conf"
	"github.com/gostonefire/freespacemap/internal/model"
)

// ChainBlocks - Is used to walk a chain of map blocks one by one, either a bucket chain or the free list.
// Each call to Next pins and releases exactly one page, nothing stays pinned between calls.
type ChainBlocks struct {
	index   *Index
	address int64
	steps   int64
	limit   int64
}

// newChainBlocks - Returns a pointer to a new ChainBlocks starting at address
func newChainBlocks(index *Index, address, limit int64) *ChainBlocks {
	return &ChainBlocks{
		index:   index,
		address: address,
		limit:   limit,
	}
}

// HasNext - Returns true if there are more blocks to be fetched from a call to Next.
func (C *ChainBlocks) HasNext() bool {
	return C.address != conf.NoAddress
}

// Next - Returns the next block in chain together with its address.
// It returns an error of type fserr.RecordNotFound if the chain is already exhausted.
func (C *ChainBlocks) Next() (address int64, block model.MapBlock, err error) {
	if C.address == conf.NoAddress {
		err = fserr.NewRecordNotFound("map block chain exhausted")
		return
	}
	if C.steps > C.limit {
		err = fmt.Errorf("map block chain longer than %d blocks, index is corrupt", C.limit)
		return
	}

	address = C.address
	p, err := C.index.pin(address)
	if err != nil {
		return
	}
	block = bytesToMapBlock(p)
	C.index.unpin(address)

	C.address = block.Next
	C.steps++

	return
}
