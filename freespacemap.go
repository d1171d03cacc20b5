package freespacemap

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/gostonefire/freespacemap/fserr"
	"github.com/gostonefire/freespacemap/internal/bufferpool"
	"github.com/gostonefire/freespacemap/internal/conf"
	"github.com/gostonefire/freespacemap/internal/file"
	"github.com/gostonefire/freespacemap/internal/logging"
	"github.com/gostonefire/freespacemap/internal/storage"
	"github.com/gostonefire/freespacemap/internal/storage/hashindex"
)

// MapInfo - Information structure containing some information about the free space map opened
//   - DirectoryBlocks is the number of directory pages in the index file
//   - MapBlocks is the number of map blocks allocated in the index file so far, chained or free
//   - FileSize is the size of the index file as written to disk
type MapInfo struct {
	DirectoryBlocks int64
	MapBlocks       int64
	FileSize        int64
}

// MapStat - Statistics on the overall usage and distribution over buckets
//   - Pages is the total number of page addresses registered
//   - ChainBlocks is the number of map blocks linked into bucket chains
//   - FreeBlocks is the number of map blocks in the free list
//   - BucketDistribution is the number of page addresses registered in each bucket
type MapStat struct {
	Pages              int64
	ChainBlocks        int64
	FreeBlocks         int64
	BucketDistribution []int64
}

// String - Returns the layout as a human readable line
func (M MapInfo) String() string {
	return fmt.Sprintf("%d directory blocks, %d map blocks, %s on disk",
		M.DirectoryBlocks, M.MapBlocks, humanize.IBytes(uint64(M.FileSize)))
}

// String - Returns the usage as a human readable line, page and block counts with thousands separators
func (M MapStat) String() string {
	return fmt.Sprintf("%s pages registered, %s chain blocks, %s free blocks",
		humanize.Comma(M.Pages), humanize.Comma(M.ChainBlocks), humanize.Comma(M.FreeBlocks))
}

// FreeSpaceMap - The main implementation struct
type FreeSpaceMap struct {
	pool  *bufferpool.Pool
	index *hashindex.Index
	name  string
	log   *slog.Logger
	// CloseFiles - Writes every cached page back and closes the index file. Use this preferably in a "defer"
	// directly after NewFreeSpaceMap. Calling it on closed files does nothing.
	CloseFiles func() error
	// RemoveFiles - Removes the index file if it exists.
	// The function first internally tries to close it using CloseFiles.
	RemoveFiles func() error
}

// NewFreeSpaceMap - Opens the free space map with the given name, creating its index file if it does not exist.
// An existing file keeps the number of directory blocks it was created with.
//   - name is the name of the free space map and will be used to form the file name
//   - config holds cache and layout settings, zero fields fall back to DefaultConfig
//
// It returns:
//   - fsm is a pointer to a FreeSpaceMap struct
//   - info is a MapInfo struct containing some data regarding the map opened
//   - err is a normal go Error which should be nil if everything went ok
func NewFreeSpaceMap(name string, config Config) (fsm *FreeSpaceMap, info MapInfo, err error) {
	// Check if name is empty
	if name == "" {
		err = fserr.NewInvalidArgument("name can not be empty, it will be used to name physical files")
		return
	}

	config = config.withDefaults()
	if config.CachePages < conf.MinCachePages {
		err = fserr.NewInvalidArgument("cache must hold at least %d pages, got %d", conf.MinCachePages, config.CachePages)
		return
	}
	fileName := storage.GetIndexFileName(name)

	pool, err := bufferpool.Open(fileName, config.CachePages, bufferpool.Options{EvictEmptyFirst: config.EvictEmptyFirst})
	if err != nil {
		err = fmt.Errorf("error while opening free space map %s: %w", name, err)
		return
	}

	index, err := hashindex.Open(pool, config.DirectoryBlocks)
	if err != nil {
		_ = pool.Close()
		err = fmt.Errorf("error while opening free space map %s: %w", name, err)
		return
	}

	fsm = &FreeSpaceMap{
		pool:  pool,
		index: index,
		name:  name,
		log:   logging.WithComponent("freespacemap").With("name", name),
	}
	fsm.CloseFiles = func() error {
		if !pool.Ready() {
			return nil
		}
		return pool.Close()
	}
	fsm.RemoveFiles = func() error {
		_ = fsm.CloseFiles()
		return file.RemoveFile(fileName)
	}

	info, err = fsm.GetInfo()
	if err != nil {
		_ = fsm.CloseFiles()
		return
	}

	fsm.log.Info("free space map opened", "layout", info.String())

	return
}

// Name - Returns the name the free space map was opened with
func (F *FreeSpaceMap) Name() string {
	return F.name
}

// GetInfo - Returns a MapInfo struct with current layout data of the index file
func (F *FreeSpaceMap) GetInfo() (info MapInfo, err error) {
	params, err := F.index.GetParameters()
	if err != nil {
		return
	}

	info = MapInfo{
		DirectoryBlocks: params.DirectoryBlocks,
		MapBlocks:       params.MaxSize,
		FileSize:        params.FileSize,
	}

	return
}

// CacheStats - Returns hit, miss and eviction counters of the page cache in front of the index file
func (F *FreeSpaceMap) CacheStats() bufferpool.Stats {
	return F.pool.Stats()
}
