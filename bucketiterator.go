package freespacemap

import (
	"fmt"

	"github.com/gostonefire/freespacemap/internal/conf"
)

// BucketEntries - Is used to iterate over buckets one by one, smallest amount of free space first.
type BucketEntries struct {
	fsm  *FreeSpaceMap
	size int16
}

// newBucketEntries - Returns a pointer to a new BucketEntries struct
func newBucketEntries(fsm *FreeSpaceMap) *BucketEntries {
	return &BucketEntries{
		fsm: fsm,
	}
}

// HasNext - Returns true if there are more buckets to be fetched from a call to Next.
func (B *BucketEntries) HasNext() bool {
	return B.size < conf.BucketCount
}

// Next - Returns the next bucket.
// It returns:
//   - size is the amount of free space the bucket stands for.
//   - addresses is the pages registered in the bucket, empty for an empty bucket.
//   - err is either a standard error or if there are no more buckets when calling this function an error of type NoRecordFound is returned.
func (B *BucketEntries) Next() (size int16, addresses []int64, err error) {
	if B.size >= conf.BucketCount {
		err = NoRecordFound{}
		return
	}

	size = B.size
	addresses, err = B.fsm.index.Entries(size)
	if err != nil {
		err = fmt.Errorf("error while retrieving entries of bucket %d: %w", size, err)
		return
	}

	B.size++

	return
}
