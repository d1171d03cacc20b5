package freespacemap

import (
	"fmt"

	"github.com/gostonefire/freespacemap/internal/conf"
	"github.com/gostonefire/freespacemap/internal/logging"
)

// Insert - Registers a page as offering size bytes of free space.
// A page is expected to be registered under one size at a time, registering it twice is not detected.
//   - size is the amount of free space in the page, 0 to 127
//   - address is the address of the page in the data file
//
// It returns:
//   - err is either of type InvalidSize or a standard error, if something went wrong
func (F *FreeSpaceMap) Insert(size int16, address int64) (err error) {
	err = F.index.Insert(size, address)
	if err != nil {
		err = fmt.Errorf("error while inserting page %d with %d bytes free: %w", address, size, err)
	}

	return
}

// Pop - Removes a page previously registered under size.
//   - size is the amount of free space the page was registered with
//   - address is the address of the page in the data file
//
// It returns:
//   - found is false if the page was not registered under size, nothing is changed then
//   - err is either of type InvalidSize or a standard error, if something went wrong
func (F *FreeSpaceMap) Pop(size int16, address int64) (found bool, err error) {
	found, err = F.index.Pop(size, address)
	if err != nil {
		err = fmt.Errorf("error while removing page %d with %d bytes free: %w", address, size, err)
	}

	return
}

// PopLowerBound - Removes and returns a page offering at least size bytes of free space, preferring the
// smallest amount of free space that is enough.
//   - size is the amount of free space needed
//
// It returns:
//   - address is the page removed from the map, or -1 if no registered page has enough free space
//   - err is either of type InvalidSize or a standard error, if something went wrong
func (F *FreeSpaceMap) PopLowerBound(size int16) (address int64, err error) {
	address, err = F.index.PopLowerBound(size)
	if err != nil {
		err = fmt.Errorf("error while finding a page with %d bytes free: %w", size, err)
		return
	}

	if address == conf.NoAddress {
		logging.WithBucket("freespacemap", size).Debug("no page with enough free space", "name", F.name)
	}

	return
}

// Entries - Returns every page registered under size
func (F *FreeSpaceMap) Entries(size int16) (addresses []int64, err error) {
	return F.index.Entries(size)
}

// Buckets - Returns an iterator over all buckets in ascending order of free space
func (F *FreeSpaceMap) Buckets() *BucketEntries {
	return newBucketEntries(F)
}

// Stat - Walks through every bucket chain and the free list of map blocks and produce a MapStat struct.
//   - includeDistribution set to true will include a slice with the number of pages per bucket, false will set
//     MapStat.BucketDistribution to nil.
func (F *FreeSpaceMap) Stat(includeDistribution bool) (mapStat *MapStat, err error) {
	stat, err := F.index.Stat()
	if err != nil {
		return
	}

	ms := MapStat{
		Pages:       stat.Entries,
		ChainBlocks: stat.ChainBlocks,
		FreeBlocks:  stat.FreeBlocks,
	}
	if includeDistribution {
		ms.BucketDistribution = make([]int64, conf.BucketCount)
		copy(ms.BucketDistribution, stat.BucketDistribution[:])
	}

	mapStat = &ms
	return
}
