package model

import "github.com/gostonefire/freespacemap/internal/conf"

// Page - A raw page as stored on disk, its meaning depends on which structure owns it
type Page [conf.PageSize]byte

// ControlBlock - Represents the index control block kept in page 0
type ControlBlock struct {
	NDirectoryBlocks int64
	FreeBlockHead    int64
	MaxSize          int64
}

// DirectoryBlock - Represents one directory page, each entry is the head map block of a bucket
type DirectoryBlock [conf.DirBlockSize]int64

// MapBlock - Represents one map (overflow) block in a bucket chain or in the free list
type MapBlock struct {
	NItems  int64
	Next    int64
	Entries [conf.MapBlockCapacity]int64
}

// IndexParameters - Represents the structural parameters of an open free space index
type IndexParameters struct {
	DirectoryBlocks int64
	MaxSize         int64
	FileSize        int64
}

// IndexStat - Statistics over the whole index
//   - Entries is the total number of page addresses stored in all buckets
//   - ChainBlocks is the number of map blocks linked into bucket chains
//   - FreeBlocks is the number of map blocks waiting in the free list
//   - BucketDistribution is the number of entries per bucket
type IndexStat struct {
	DirectoryBlocks    int64
	MaxSize            int64
	Entries            int64
	ChainBlocks        int64
	FreeBlocks         int64
	BucketDistribution [conf.BucketCount]int64
}
