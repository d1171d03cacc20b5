package strstore

import (
	"github.com/cespare/xxhash/v2"
	"github.com/gostonefire/freespacemap/table"
)

// Compare - Compares two stored strings byte by byte.
// The result is 0 if a == b, -1 if a < b and +1 if a > b, a proper prefix being less than its extension.
// Both records are left where they were, the comparison runs on copies.
func Compare(t table.Table, a, b *Record) (result int, err error) {
	ra, rb := *a, *b

	var ca, cb byte
	for {
		hasA, hasB := ra.HasNext(), rb.HasNext()
		switch {
		case hasA && hasB:
			ca, err = ra.NextByte(t)
			if err != nil {
				return
			}
			cb, err = rb.NextByte(t)
			if err != nil {
				return
			}
			if ca != cb {
				result = compareByte(ca, cb)
				return
			}
		case hasA:
			result = 1
			return
		case hasB:
			result = -1
			return
		default:
			return
		}
	}
}

// CompareBytes - Compares an in memory byte slice with a stored string using the same ordering as Compare.
// The record is left where it was.
func CompareBytes(t table.Table, a []byte, b *Record) (result int, err error) {
	rb := *b

	var cb byte
	for i := 0; ; i++ {
		hasA, hasB := i < len(a), rb.HasNext()
		switch {
		case hasA && hasB:
			cb, err = rb.NextByte(t)
			if err != nil {
				return
			}
			if a[i] != cb {
				result = compareByte(a[i], cb)
				return
			}
		case hasA:
			result = 1
			return
		case hasB:
			result = -1
			return
		default:
			return
		}
	}
}

// Load - Returns up to maxLen bytes of the string from the position of record, fewer if the string ends first.
// The record is left where it was.
func Load(t table.Table, record *Record, maxLen int) (data []byte, err error) {
	r := *record
	data = make([]byte, 0, max(0, min(maxLen, ChunkMaxLen)))

	var c byte
	for len(data) < maxLen && r.HasNext() {
		c, err = r.NextByte(t)
		if err != nil {
			return
		}
		data = append(data, c)
	}

	return
}

// Hash - Returns the 64 bit xxHash of the string from the position of record. Equal strings hash equal
// however they are split into chunks. The record is left where it was.
func Hash(t table.Table, record *Record) (sum uint64, err error) {
	r := *record
	d := xxhash.New()

	for {
		_, _ = d.Write(r.chunk.Data[r.cursor:])
		r.cursor = len(r.chunk.Data)
		if r.chunk.Next.IsNil() {
			break
		}
		err = r.skipEmpty(t)
		if err != nil {
			return
		}
	}

	sum = d.Sum64()

	return
}

func compareByte(a, b byte) int {
	if a < b {
		return -1
	}
	return 1
}
