package strstore

import (
	"fmt"

	"github.com/gostonefire/freespacemap/internal/file"
	"github.com/gostonefire/freespacemap/table"
)

// nextAddressOffset - Chunk offset to the page address of the next chunk - 8 bytes
const nextAddressOffset int = 0

// nextSlotOffset - Chunk offset to the slot of the next chunk - 2 bytes
const nextSlotOffset int = 8

// sizeOffset - Chunk offset to the number of data bytes in the chunk - 2 bytes
const sizeOffset int = 10

// ChunkHeaderLength - Length of the chunk header, data starts right after it
const ChunkHeaderLength int = 12

// ChunkMaxSize - Largest encoded chunk
const ChunkMaxSize int = 32

// ChunkMaxLen - Largest number of data bytes in one chunk
const ChunkMaxLen int = ChunkMaxSize - ChunkHeaderLength

// chunk - One linked segment of a stored string
type chunk struct {
	Next table.RID
	Data []byte
}

// chunkToBytes - Encodes a chunk as a table item of header length plus data length bytes
func chunkToBytes(c chunk) (buf []byte) {
	buf = make([]byte, ChunkHeaderLength+len(c.Data))
	file.AddressToBytes(buf[nextAddressOffset:], c.Next.Address)
	file.Int16ToBytes(buf[nextSlotOffset:], c.Next.Slot)
	file.Int16ToBytes(buf[sizeOffset:], int16(len(c.Data)))
	copy(buf[ChunkHeaderLength:], c.Data)

	return
}

// bytesToChunk - Decodes a table item into a chunk, the data slice refers into buf
func bytesToChunk(buf []byte) (c chunk, err error) {
	if len(buf) < ChunkHeaderLength {
		err = fmt.Errorf("item of %d bytes is too short for a string chunk", len(buf))
		return
	}

	size := int(file.BytesToInt16(buf[sizeOffset:]))
	if size < 0 || size > ChunkMaxLen || ChunkHeaderLength+size > len(buf) {
		err = fmt.Errorf("string chunk claims %d data bytes in an item of %d bytes", size, len(buf))
		return
	}

	c = chunk{
		Next: table.RID{
			Address: file.BytesToAddress(buf[nextAddressOffset:]),
			Slot:    file.BytesToInt16(buf[nextSlotOffset:]),
		},
		Data: buf[ChunkHeaderLength : ChunkHeaderLength+size],
	}

	return
}
