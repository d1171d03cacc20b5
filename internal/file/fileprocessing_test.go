//go:build unit

package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gostonefire/freespacemap/internal/conf"
	"github.com/gostonefire/freespacemap/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPageFile(t *testing.T) {
	t.Run("creates a missing file with zero length", func(t *testing.T) {
		// Prepare
		name := filepath.Join(t.TempDir(), "unittest1.bin")

		// Execute
		pf, err := OpenPageFile(name)

		// Check
		require.NoError(t, err, "open page file")
		assert.Equal(t, int64(0), pf.Length(), "new file is empty")
		assert.Equal(t, name, pf.Name())
		_, err = os.Stat(name)
		assert.NoError(t, err, "file exists")

		// Clean up
		assert.NoError(t, pf.Close())
		assert.NoError(t, RemoveFile(name))
		_, err = os.Stat(name)
		assert.True(t, os.IsNotExist(err), "file removed")
	})

	t.Run("picks up length of an existing file", func(t *testing.T) {
		// Prepare
		name := filepath.Join(t.TempDir(), "unittest2.bin")
		err := os.WriteFile(name, make([]byte, 3*conf.PageSize), 0644)
		require.NoError(t, err)

		// Execute
		pf, err := OpenPageFile(name)

		// Check
		require.NoError(t, err, "open page file")
		assert.Equal(t, 3*conf.PageSize, pf.Length())

		// Clean up
		_ = pf.Close()
	})
}

func TestPageFile_WritePage(t *testing.T) {
	t.Run("writes and reads back a page", func(t *testing.T) {
		// Prepare
		pf, err := OpenPageFile(filepath.Join(t.TempDir(), "unittest1.bin"))
		require.NoError(t, err)
		defer func() { _ = pf.Close() }()

		var out, in model.Page
		for i := range out {
			out[i] = byte(i)
		}

		// Execute
		err = pf.WritePage(&out, 2*conf.PageSize)

		// Check
		assert.NoError(t, err, "write page")
		assert.Equal(t, 3*conf.PageSize, pf.Length(), "file extended to cover the page")
		err = pf.ReadPage(&in, 2*conf.PageSize)
		assert.NoError(t, err, "read page")
		assert.Equal(t, out, in, "same contents")
	})

	t.Run("rejects unaligned offsets", func(t *testing.T) {
		// Prepare
		pf, err := OpenPageFile(filepath.Join(t.TempDir(), "unittest1.bin"))
		require.NoError(t, err)
		defer func() { _ = pf.Close() }()
		var p model.Page

		// Execute
		errWrite := pf.WritePage(&p, 3)
		errRead := pf.ReadPage(&p, -conf.PageSize)

		// Check
		assert.Error(t, errWrite)
		assert.Error(t, errRead)
	})

	t.Run("fails on a closed file", func(t *testing.T) {
		// Prepare
		pf, err := OpenPageFile(filepath.Join(t.TempDir(), "unittest1.bin"))
		require.NoError(t, err)
		require.NoError(t, pf.Close())
		var p model.Page

		// Execute
		err = pf.WritePage(&p, 0)

		// Check
		assert.Error(t, err)
		assert.NoError(t, pf.Close(), "second close is a no-op")
	})
}

func TestPageFile_ReadPage(t *testing.T) {
	t.Run("reads zeros beyond end of file", func(t *testing.T) {
		// Prepare
		pf, err := OpenPageFile(filepath.Join(t.TempDir(), "unittest1.bin"))
		require.NoError(t, err)
		defer func() { _ = pf.Close() }()

		var p model.Page
		for i := range p {
			p[i] = 0xff
		}

		// Execute
		err = pf.ReadPage(&p, 5*conf.PageSize)

		// Check
		assert.NoError(t, err)
		assert.Equal(t, model.Page{}, p, "blank page")
		assert.Equal(t, int64(0), pf.Length(), "reading does not extend the file")
	})
}

func TestAddressToBytes(t *testing.T) {
	t.Run("converts between bytes and addresses", func(t *testing.T) {
		// Prepare
		buf := make([]byte, conf.AddressLength)

		// Execute
		AddressToBytes(buf, conf.NoAddress)
		a := BytesToAddress(buf)
		Int16ToBytes(buf, -2)
		b := BytesToInt16(buf)

		// Check
		assert.Equal(t, conf.NoAddress, a)
		assert.Equal(t, int16(-2), b)
	})
}
