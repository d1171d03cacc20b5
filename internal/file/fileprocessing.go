package file

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gostonefire/freespacemap/internal/conf"
	"github.com/gostonefire/freespacemap/internal/model"
)

// PageFile - A file accessed one whole page at a time at page aligned byte offsets
type PageFile struct {
	fileName string
	file     *os.File
	length   int64
}

// OpenPageFile - Opens a page file for reading and writing, creating it empty if it doesn't exist
func OpenPageFile(fileName string) (pageFile *PageFile, err error) {
	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		err = fmt.Errorf("unable to open page file: %w", err)
		return
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		err = fmt.Errorf("unable to stat page file: %w", err)
		return
	}

	pageFile = &PageFile{
		fileName: fileName,
		file:     f,
		length:   stat.Size(),
	}

	return
}

// Name - Returns the file name
func (P *PageFile) Name() string {
	return P.fileName
}

// Length - Returns the file length in bytes
func (P *PageFile) Length() int64 {
	return P.length
}

// ReadPage - Reads the page at offset into buf. A page partly or fully beyond end of file reads as zeros.
func (P *PageFile) ReadPage(buf *model.Page, offset int64) (err error) {
	err = checkOffset(offset)
	if err != nil {
		return
	}
	if P.file == nil {
		err = fmt.Errorf("page file %s is closed", P.fileName)
		return
	}

	n, err := P.file.ReadAt(buf[:], offset)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	if err != nil {
		return
	}

	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}

	return
}

// WritePage - Writes buf as the page at offset, extending the file if needed
func (P *PageFile) WritePage(buf *model.Page, offset int64) (err error) {
	err = checkOffset(offset)
	if err != nil {
		return
	}
	if P.file == nil {
		err = fmt.Errorf("page file %s is closed", P.fileName)
		return
	}

	_, err = P.file.WriteAt(buf[:], offset)
	if err != nil {
		return
	}

	if end := offset + conf.PageSize; end > P.length {
		P.length = end
	}

	return
}

// Close - Syncs and closes the file, closing twice is a no-op
func (P *PageFile) Close() (err error) {
	if P.file == nil {
		return
	}

	_ = P.file.Sync()
	err = P.file.Close()
	P.file = nil

	return
}

// RemoveFile - Removes a page file, make sure to close it first. A missing file is not an error.
func RemoveFile(fileName string) (err error) {
	if stat, ok := os.Stat(fileName); ok == nil {
		if !stat.IsDir() {
			err = os.Remove(fileName)
			if err != nil {
				err = fmt.Errorf("error while removing page file: %w", err)
			}
		}
	}

	return
}

// checkOffset - All page I/O must be at a non-negative multiple of the page size
func checkOffset(offset int64) error {
	if offset < 0 || offset%conf.PageSize != 0 {
		return fmt.Errorf("offset %d is not page aligned", offset)
	}
	return nil
}
