package fserr

import "fmt"

// InvalidSize - Custom error to inform that a free space bucket size was outside 0..127
type InvalidSize struct {
	Size int16
}

// Error - Used to notify that the bucket size is invalid
func (E InvalidSize) Error() string {
	return fmt.Sprintf("invalid size (%d), must be in range 0 to 127", E.Size)
}

// InvalidArgument - Custom error to inform that an argument was not acceptable
type InvalidArgument struct {
	msg string
}

// NewInvalidArgument - Returns an InvalidArgument with a formatted message
func NewInvalidArgument(format string, a ...any) InvalidArgument {
	return InvalidArgument{msg: fmt.Sprintf(format, a...)}
}

// Error - Used to notify that an argument is invalid
func (E InvalidArgument) Error() string {
	if E.msg == "" {
		return "invalid argument"
	}
	return E.msg
}

// AddressNotFound - Custom error to inform that no buffer slot holds the given address
type AddressNotFound struct {
	Address int64
}

// Error - Used to notify that an address was not resident in the buffer pool
func (E AddressNotFound) Error() string {
	return fmt.Sprintf("address %d not found in buffer pool", E.Address)
}

// NotPinned - Custom error to inform that a release was made on a page with no outstanding pins
type NotPinned struct {
	Address int64
}

// Error - Used to notify that a page was released more times than it was fetched
func (E NotPinned) Error() string {
	return fmt.Sprintf("page at address %d is not pinned", E.Address)
}

// NoVictim - Custom error to inform that every buffer slot is pinned and nothing can be evicted
type NoVictim struct {
	msg string
}

// Error - Used to notify that the buffer pool is exhausted
func (E NoVictim) Error() string {
	if E.msg == "" {
		return "all buffer pool pages are pinned, no victim to evict"
	}
	return E.msg
}

// PoolNotReady - Custom error to inform that the buffer pool has no usable backing file
type PoolNotReady struct {
	msg string
}

// Error - Used to notify that the buffer pool is not usable
func (E PoolNotReady) Error() string {
	if E.msg == "" {
		return "buffer pool not ready"
	}
	return E.msg
}

// RecordNotFound - Custom error to inform that no record exists for a record identifier
type RecordNotFound struct {
	msg string
}

// NewRecordNotFound - Returns a RecordNotFound with a formatted message
func NewRecordNotFound(format string, a ...any) RecordNotFound {
	return RecordNotFound{msg: fmt.Sprintf(format, a...)}
}

// Error - Used to notify that no record was found
func (E RecordNotFound) Error() string {
	if E.msg == "" {
		return "no record found"
	}
	return E.msg
}

// Is - Makes errors.Is match any RecordNotFound regardless of message
func (E RecordNotFound) Is(target error) bool {
	_, ok := target.(RecordNotFound)
	return ok
}

// IOFailure - Custom error to inform that a page read or write failed
type IOFailure struct {
	Op     string
	Offset int64
	Err    error
}

// Error - Used to notify about a failed page I/O
func (E IOFailure) Error() string {
	return fmt.Sprintf("page %s at offset %d failed: %s", E.Op, E.Offset, E.Err)
}

// Unwrap - Returns the underlying I/O error
func (E IOFailure) Unwrap() error {
	return E.Err
}
