//go:build integration

package freespacemap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gostonefire/freespacemap/internal/conf"
	"github.com/gostonefire/freespacemap/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testName(t *testing.T) string {
	return filepath.Join(t.TempDir(), "test")
}

func TestNewFreeSpaceMap(t *testing.T) {
	t.Run("creates free space map", func(t *testing.T) {
		// Prepare
		name := testName(t)

		// Execute
		fsm, info, err := NewFreeSpaceMap(name, DefaultConfig())

		// Check
		assert.NoError(t, err, "creates free space map")
		assert.Equal(t, name, fsm.Name(), "correct name")
		assert.Equal(t, conf.MinDirectoryBlocks, info.DirectoryBlocks, "directory blocks in info")
		assert.Equal(t, conf.InitialMapBlocks, info.MapBlocks, "map blocks in info")
		assert.Equal(t, conf.PageSize*(1+info.DirectoryBlocks+info.MapBlocks), info.FileSize, "file size in info")

		stat, err := os.Stat(storage.GetIndexFileName(name))
		assert.NoError(t, err, "index file exists")
		assert.Equal(t, info.FileSize, stat.Size(), "file size on disk")

		// Clean up
		err = fsm.RemoveFiles()
		assert.NoError(t, err, "removes files")

		_, err = os.Stat(storage.GetIndexFileName(name))
		assert.True(t, os.IsNotExist(err), "index file removed")
	})

	t.Run("opens an existing file", func(t *testing.T) {
		// Prepare
		name := testName(t)
		config := DefaultConfig()
		config.DirectoryBlocks = 10
		fsmInit, infoInit, err := NewFreeSpaceMap(name, config)
		require.NoError(t, err, "creates free space map")
		require.NoError(t, fsmInit.Insert(42, 4096), "insert")
		require.NoError(t, fsmInit.CloseFiles(), "close files")

		// Execute
		fsm, info, err := NewFreeSpaceMap(name, DefaultConfig())

		// Check
		assert.NoError(t, err, "opens free space map")
		assert.Equal(t, int64(10), info.DirectoryBlocks, "directory blocks kept from file")
		assert.Equal(t, infoInit.MapBlocks, info.MapBlocks, "map blocks preserved")
		entries, err := fsm.Entries(42)
		assert.NoError(t, err, "entries")
		assert.Equal(t, []int64{4096}, entries, "page registration preserved")

		// Clean up
		err = fsm.RemoveFiles()
		assert.NoError(t, err, "removes files")
	})

	t.Run("error on empty name", func(t *testing.T) {
		// Execute
		_, _, err := NewFreeSpaceMap("", DefaultConfig())

		// Check
		assert.ErrorAs(t, err, &InvalidArgument{}, "empty name")
	})

	t.Run("error on too few directory blocks", func(t *testing.T) {
		// Prepare
		name := testName(t)
		config := DefaultConfig()
		config.DirectoryBlocks = 4

		// Execute
		_, _, err := NewFreeSpaceMap(name, config)

		// Check
		assert.ErrorAs(t, err, &InvalidArgument{}, "too few directory blocks")
	})

	t.Run("error on a cache too small for an insert", func(t *testing.T) {
		for _, pages := range []int{-1, 1, 2} {
			// Prepare
			name := testName(t)
			config := DefaultConfig()
			config.CachePages = pages

			// Execute
			_, _, err := NewFreeSpaceMap(name, config)

			// Check
			assert.ErrorAs(t, err, &InvalidArgument{}, "cache of %d pages", pages)
			_, err = os.Stat(storage.GetIndexFileName(name))
			assert.True(t, os.IsNotExist(err), "no file created for cache of %d pages", pages)
		}
	})

	t.Run("smallest cache handles a chain of blocks", func(t *testing.T) {
		// Prepare
		config := DefaultConfig()
		config.CachePages = conf.MinCachePages
		fsm, _, err := NewFreeSpaceMap(testName(t), config)
		require.NoError(t, err, "creates free space map")

		// Execute
		for i := int64(0); i < 3*conf.MapBlockCapacity; i++ {
			require.NoError(t, fsm.Insert(9, conf.PageSize*i), "insert %d", i)
		}
		address, err := fsm.PopLowerBound(9)

		// Check
		assert.NoError(t, err, "pop lower bound")
		assert.NotEqual(t, conf.NoAddress, address, "address popped")
		assert.Zero(t, fsm.CacheStats().Pinned, "every page released")

		// Clean up
		assert.NoError(t, fsm.RemoveFiles(), "removes files")
	})

	t.Run("error when the file can not be opened", func(t *testing.T) {
		// Prepare
		name := filepath.Join(t.TempDir(), "missing", "test")

		// Execute
		_, _, err := NewFreeSpaceMap(name, DefaultConfig())

		// Check
		assert.Error(t, err, "directory does not exist")
	})

	t.Run("operations on closed files fail", func(t *testing.T) {
		// Prepare
		fsm, _, err := NewFreeSpaceMap(testName(t), DefaultConfig())
		require.NoError(t, err, "creates free space map")
		require.NoError(t, fsm.CloseFiles(), "close files")

		// Execute
		err = fsm.Insert(1, 128)

		// Check
		assert.ErrorAs(t, err, &PoolNotReady{}, "closed")
		assert.NoError(t, fsm.CloseFiles(), "closing twice is fine")

		// Clean up
		assert.NoError(t, fsm.RemoveFiles(), "removes files")
	})
}

func TestFreeSpaceMap_GetInfo(t *testing.T) {
	t.Run("map blocks grow when the free list runs dry", func(t *testing.T) {
		// Prepare
		fsm, infoInit, err := NewFreeSpaceMap(testName(t), DefaultConfig())
		require.NoError(t, err, "creates free space map")

		// Execute
		for b := int16(0); b <= int16(conf.InitialMapBlocks); b++ {
			require.NoError(t, fsm.Insert(b, conf.PageSize*int64(b)), "insert into bucket %d", b)
		}
		info, err := fsm.GetInfo()

		// Check
		assert.NoError(t, err, "get info")
		assert.Equal(t, infoInit.MapBlocks+1, info.MapBlocks, "one block added past the initial ones")
		assert.Equal(t, infoInit.DirectoryBlocks, info.DirectoryBlocks, "directory never grows")

		cache := fsm.CacheStats()
		assert.Equal(t, conf.CachePages, cache.Capacity, "default capacity")
		assert.Positive(t, cache.Hits+cache.Misses, "pages went through the cache")
		assert.Zero(t, cache.Pinned, "every page released")

		// Clean up
		assert.NoError(t, fsm.RemoveFiles(), "removes files")
	})
}

func TestMapInfo_String(t *testing.T) {
	t.Run("sizes are human readable", func(t *testing.T) {
		// Prepare
		info := MapInfo{DirectoryBlocks: 8, MapBlocks: 8, FileSize: 2176}
		stat := MapStat{Pages: 40000, ChainBlocks: 2858, FreeBlocks: 3}

		// Execute
		infoLine := info.String()
		statLine := stat.String()

		// Check
		assert.Equal(t, "8 directory blocks, 8 map blocks, 2.1 KiB on disk", infoLine, "info line")
		assert.Equal(t, "40,000 pages registered, 2,858 chain blocks, 3 free blocks", statLine, "stat line")
	})
}
