// Package strstore keeps byte strings of any length in a table.Table as singly linked chains of small chunks,
// and reads, compares and hashes them a byte at a time without loading a whole string into memory.
package strstore

import (
	"fmt"

	"github.com/gostonefire/freespacemap/fserr"
	"github.com/gostonefire/freespacemap/internal/logging"
	"github.com/gostonefire/freespacemap/table"
)

// Record - A read cursor into a stored string
type Record struct {
	chunk  chunk
	cursor int
}

// Write - Stores data as a chain of chunks and returns the RID of the head chunk.
// The remainder chunk (len(data) % ChunkMaxLen bytes, possibly empty) is written first and becomes the tail,
// then the full chunks from the end of data towards its start, each pointing at the chunk written before it.
// If an insert fails the chunks already written are deleted again.
func Write(t table.Table, data []byte) (rid table.RID, err error) {
	full := len(data) / ChunkMaxLen

	rid, err = t.Insert(chunkToBytes(chunk{Next: table.NilRID, Data: data[full*ChunkMaxLen:]}))
	if err != nil {
		rid = table.NilRID
		err = fmt.Errorf("error while writing string tail: %w", err)
		return
	}

	for i := full - 1; i >= 0; i-- {
		var head table.RID
		head, err = t.Insert(chunkToBytes(chunk{Next: rid, Data: data[i*ChunkMaxLen : (i+1)*ChunkMaxLen]}))
		if err != nil {
			if delErr := Delete(t, rid); delErr != nil {
				logging.WithComponent("strstore").Warn("unable to remove partly written string", "rid", rid.String(), "error", delErr)
			}
			rid = table.NilRID
			err = fmt.Errorf("error while writing string chunk %d: %w", i, err)
			return
		}
		rid = head
	}

	return
}

// ReadFirst - Returns a Record positioned at the first byte of the string with head chunk rid.
// It returns an error of type fserr.RecordNotFound if there is no chunk at rid.
func ReadFirst(t table.Table, rid table.RID) (record *Record, err error) {
	c, err := readChunk(t, rid)
	if err != nil {
		return
	}

	record = &Record{chunk: c}
	err = record.skipEmpty(t)

	return
}

// HasNext - Returns true if there are more bytes to be fetched from a call to NextByte.
func (R *Record) HasNext() bool {
	return R.cursor < len(R.chunk.Data) || !R.chunk.Next.IsNil()
}

// NextByte - Returns the byte under the cursor and moves the cursor on, following the chain into the next
// chunk when the current one is used up.
// A failure to read the next chunk after the byte is not reported with the byte, the following call
// retries the read and returns its error.
// It returns an error of type fserr.RecordNotFound if the string is already exhausted.
func (R *Record) NextByte(t table.Table) (b byte, err error) {
	err = R.skipEmpty(t)
	if err != nil {
		return
	}
	if R.cursor >= len(R.chunk.Data) {
		err = fserr.NewRecordNotFound("end of string")
		return
	}

	b = R.chunk.Data[R.cursor]
	R.cursor++

	if lookErr := R.skipEmpty(t); lookErr != nil {
		logging.WithComponent("strstore").Debug("next chunk not read ahead", "error", lookErr)
	}

	return
}

// skipEmpty - Follows the chain while the cursor is at the end of a chunk that has a successor, so that the
// cursor is either on a byte or at the end of the last chunk
func (R *Record) skipEmpty(t table.Table) (err error) {
	for R.cursor >= len(R.chunk.Data) && !R.chunk.Next.IsNil() {
		var c chunk
		c, err = readChunk(t, R.chunk.Next)
		if err != nil {
			return
		}
		R.chunk = c
		R.cursor = 0
	}

	return
}

// Delete - Removes every chunk of the string with head chunk rid
func Delete(t table.Table, rid table.RID) (err error) {
	for !rid.IsNil() {
		var c chunk
		c, err = readChunk(t, rid)
		if err != nil {
			return
		}

		err = t.Delete(rid)
		if err != nil {
			err = fmt.Errorf("error while deleting string chunk %s: %w", rid, err)
			return
		}

		rid = c.Next
	}

	return
}

// readChunk - Reads and decodes the chunk at rid
func readChunk(t table.Table, rid table.RID) (c chunk, err error) {
	item, err := t.Read(rid)
	if err != nil {
		return
	}

	c, err = bytesToChunk(item)
	if err != nil {
		err = fmt.Errorf("error while decoding string chunk %s: %w", rid, err)
	}

	return
}
