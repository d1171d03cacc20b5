package file

import "encoding/binary"

// BytesToAddress - Reads a little endian on-disk address from the start of buf
func BytesToAddress(buf []byte) int64 {
	return int64(binary.LittleEndian.Uint64(buf))
}

// AddressToBytes - Writes a little endian on-disk address to the start of buf
func AddressToBytes(buf []byte, address int64) {
	binary.LittleEndian.PutUint64(buf, uint64(address))
}

// BytesToInt16 - Reads a little endian 16 bit value from the start of buf
func BytesToInt16(buf []byte) int16 {
	return int16(binary.LittleEndian.Uint16(buf))
}

// Int16ToBytes - Writes a little endian 16 bit value to the start of buf
func Int16ToBytes(buf []byte, v int16) {
	binary.LittleEndian.PutUint16(buf, uint16(v))
}
