package freespacemap

import "github.com/gostonefire/freespacemap/fserr"

// InvalidSize - Returned when a free space size is outside 0..127
type InvalidSize = fserr.InvalidSize

// InvalidArgument - Returned when an argument, such as a name or a configuration value, is not acceptable
type InvalidArgument = fserr.InvalidArgument

// PoolNotReady - Returned when the free space map files are closed or could not be opened
type PoolNotReady = fserr.PoolNotReady

// NoVictim - Returned when every cached page is pinned
type NoVictim = fserr.NoVictim

// IOFailure - Returned when a page read or write failed, the underlying error is available through errors.Unwrap
type IOFailure = fserr.IOFailure

// NoRecordFound - Returned by iterators that are exhausted
type NoRecordFound = fserr.RecordNotFound
