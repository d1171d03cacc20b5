//go:build unit

package hashindex

import (
	"errors"
	"testing"

	"github.com/gostonefire/freespacemap/fserr"
	"github.com/gostonefire/freespacemap/internal/bufferpool"
	"github.com/gostonefire/freespacemap/internal/conf"
	"github.com/gostonefire/freespacemap/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyIO - In memory bufferpool.PageIO where reads of chosen pages start failing after a number of
// successful reads
type faultyIO struct {
	pages     map[int64]model.Page
	length    int64
	readsLeft map[int64]int
}

func newFaultyIO() *faultyIO {
	return &faultyIO{
		pages:     make(map[int64]model.Page),
		readsLeft: make(map[int64]int),
	}
}

func (F *faultyIO) ReadPage(buf *model.Page, offset int64) error {
	if left, ok := F.readsLeft[offset]; ok {
		if left == 0 {
			return errors.New("injected read failure")
		}
		F.readsLeft[offset] = left - 1
	}
	*buf = F.pages[offset]
	return nil
}

func (F *faultyIO) WritePage(buf *model.Page, offset int64) error {
	F.pages[offset] = *buf
	if offset+conf.PageSize > F.length {
		F.length = offset + conf.PageSize
	}
	return nil
}

func (F *faultyIO) Length() int64 { return F.length }

func (F *faultyIO) Close() error { return nil }

// newFaultyIndex - Returns an index behind a pool of only three pages, so map blocks keep being evicted
func newFaultyIndex(t *testing.T) (index *Index, pool *bufferpool.Pool, io *faultyIO) {
	io = newFaultyIO()
	pool, err := bufferpool.New(io, 3, bufferpool.Options{})
	require.NoError(t, err, "create buffer pool")

	index, err = Open(pool, conf.MinDirectoryBlocks)
	require.NoError(t, err, "open index")

	return
}

func TestIndex_ReadFailures(t *testing.T) {
	t.Run("operations fail with every page released", func(t *testing.T) {
		// Prepare
		index, pool, io := newFaultyIndex(t)
		for b := int16(0); b < 20; b++ {
			require.NoError(t, index.Insert(b, page(100+int64(b))), "insert into bucket %d", b)
		}
		for b := int16(0); b < 3; b++ {
			head, err := index.Head(b)
			require.NoError(t, err, "head of bucket %d", b)
			require.False(t, pool.Resident(head), "head of bucket %d not cached", b)
			io.readsLeft[head] = 0
		}

		// Execute
		errInsert := index.Insert(0, page(200))
		_, errPop := index.Pop(1, page(101))
		address, errLowerBound := index.PopLowerBound(2)

		// Check
		assert.ErrorAs(t, errInsert, &fserr.IOFailure{}, "insert")
		assert.ErrorAs(t, errPop, &fserr.IOFailure{}, "pop")
		assert.ErrorAs(t, errLowerBound, &fserr.IOFailure{}, "pop lower bound")
		assert.Equal(t, conf.NoAddress, address, "nothing popped")
		assert.Zero(t, pool.Stats().Pinned, "no page left pinned")

		io.readsLeft = make(map[int64]int)
		for b := int16(0); b < 3; b++ {
			entries, err := index.Entries(b)
			assert.NoError(t, err, "entries of bucket %d", b)
			assert.Equal(t, []int64{page(100 + int64(b))}, entries, "bucket %d unchanged", b)
		}
	})

	t.Run("emptied block stays out of the free list when unlinking fails", func(t *testing.T) {
		// Prepare
		index, pool, io := newFaultyIndex(t)
		for i := int64(0); i <= conf.MapBlockCapacity; i++ {
			require.NoError(t, index.Insert(5, page(100+i)), "insert %d", i)
		}
		head, err := index.Head(5)
		require.NoError(t, err, "head")
		chain := newChainBlocks(index, head, conf.InitialMapBlocks)
		_, headBlock, err := chain.Next()
		require.NoError(t, err, "head block")
		tail := headBlock.Next
		require.NotEqual(t, conf.NoAddress, tail, "two blocks in chain")

		for i := int64(0); i < conf.MapBlockCapacity-1; i++ {
			found, err := index.Pop(5, page(100+i))
			require.NoError(t, err, "pop %d", i)
			require.True(t, found, "found %d", i)
		}
		require.False(t, pool.Resident(head), "head not cached")
		io.readsLeft[head] = 1

		// Execute
		_, err = index.Pop(5, page(100+conf.MapBlockCapacity-1))

		// Check
		assert.ErrorAs(t, err, &fserr.IOFailure{}, "head unreadable while unlinking")
		assert.Zero(t, pool.Stats().Pinned, "no page left pinned")

		io.readsLeft = make(map[int64]int)
		free, err := index.FreeList()
		require.NoError(t, err, "free list")
		for free.HasNext() {
			address, _, err := free.Next()
			require.NoError(t, err, "next free block")
			assert.NotEqual(t, tail, address, "tail block not freed")
		}
		entries, err := index.Entries(5)
		assert.NoError(t, err, "entries")
		assert.ElementsMatch(t, []int64{page(100 + conf.MapBlockCapacity), page(100 + conf.MapBlockCapacity - 1)}, entries, "chain intact")

		found, err := index.Pop(5, page(100+conf.MapBlockCapacity-1))
		assert.NoError(t, err, "retry pop")
		assert.True(t, found, "found on retry")
		stat, err := index.Stat()
		assert.NoError(t, err, "stat")
		assert.Equal(t, int64(1), stat.ChainBlocks, "tail block unlinked")
		assert.Equal(t, stat.MaxSize-1, stat.FreeBlocks, "tail block in free list")
	})
}
