package table

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/gostonefire/freespacemap"
	"github.com/gostonefire/freespacemap/fserr"
	"github.com/gostonefire/freespacemap/internal/bufferpool"
	"github.com/gostonefire/freespacemap/internal/conf"
	"github.com/gostonefire/freespacemap/internal/file"
	"github.com/gostonefire/freespacemap/internal/logging"
	"github.com/gostonefire/freespacemap/internal/storage"
)

// HeapTable - A Table kept in slotted pages of a heap file, pages with room left are found through a
// free space map with the same name as the table
type HeapTable struct {
	name     string
	fileName string
	pool     *bufferpool.Pool
	fsm      *freespacemap.FreeSpaceMap
	nPages   int64
	log      *slog.Logger
}

// NewHeapTable - Opens the heap table with the given name, creating its files if they do not exist.
//   - name is the name of the table and will be used to form file names
//   - config holds cache settings for the data file and the free space map
func NewHeapTable(name string, config freespacemap.Config) (table *HeapTable, err error) {
	fsm, _, err := freespacemap.NewFreeSpaceMap(name, config)
	if err != nil {
		return
	}

	config = withCacheDefault(config)
	fileName := storage.GetDataFileName(name)
	pool, err := bufferpool.Open(fileName, config.CachePages, bufferpool.Options{EvictEmptyFirst: config.EvictEmptyFirst})
	if err != nil {
		_ = fsm.CloseFiles()
		err = fmt.Errorf("error while opening data file of table %s: %w", name, err)
		return
	}

	table = &HeapTable{
		name:     name,
		fileName: fileName,
		pool:     pool,
		fsm:      fsm,
		nPages:   pool.FileLength() / conf.PageSize,
		log:      logging.WithTable(name),
	}

	table.log.Debug("heap table opened", "pages", table.nPages, "file_size", humanize.IBytes(uint64(pool.FileLength())))

	return
}

// Insert - Stores item in a page with enough free space, appending a new page if there is none.
//   - item is at most MaxItemSize bytes
//
// It returns:
//   - rid is the identifier of the stored item
//   - err is either of type fserr.InvalidArgument or a standard error, if something went wrong
func (H *HeapTable) Insert(item []byte) (rid RID, err error) {
	rid = NilRID
	if len(item) > MaxItemSize {
		err = fserr.NewInvalidArgument("item of %d bytes exceeds max item size %d", len(item), MaxItemSize)
		return
	}

	address, err := H.fsm.PopLowerBound(int16(len(item)))
	if err != nil {
		return
	}
	if address == conf.NoAddress {
		address = H.nPages * conf.PageSize
		H.nPages++
		H.log.Debug("appending page", "address", address)
	}

	p, err := H.pool.GetPage(address)
	if err != nil {
		return
	}
	page := heapPage{p: p}
	page.initialize()

	if !page.fits(item) {
		free := page.freeSpace()
		_ = H.pool.Release(address)
		err = fmt.Errorf("page %d registered with %d bytes free can not hold %d bytes", address, free, len(item))
		return
	}

	slot := page.place(item)
	free := page.freeSpace()
	_ = H.pool.Release(address)

	rid = RID{Address: address, Slot: int16(slot)}

	if free >= 0 {
		err = H.fsm.Insert(bucket(free), address)
	}

	return
}

// Read - Returns a copy of the item identified by rid.
// It returns an error of type fserr.RecordNotFound if there is no such item.
func (H *HeapTable) Read(rid RID) (item []byte, err error) {
	err = H.checkRID(rid)
	if err != nil {
		return
	}

	p, err := H.pool.GetPage(rid.Address)
	if err != nil {
		return
	}
	defer func() { _ = H.pool.Release(rid.Address) }()

	data, ok := heapPage{p: p}.record(int64(rid.Slot))
	if !ok {
		err = fserr.NewRecordNotFound("no item at %s", rid)
		return
	}

	item = make([]byte, len(data))
	copy(item, data)

	return
}

// Delete - Removes the item identified by rid and moves its page to the bucket of its new free space.
// It returns an error of type fserr.RecordNotFound if there is no such item.
func (H *HeapTable) Delete(rid RID) (err error) {
	err = H.checkRID(rid)
	if err != nil {
		return
	}

	p, err := H.pool.GetPage(rid.Address)
	if err != nil {
		return
	}
	page := heapPage{p: p}

	if _, ok := page.record(int64(rid.Slot)); !ok {
		_ = H.pool.Release(rid.Address)
		err = fserr.NewRecordNotFound("no item at %s", rid)
		return
	}

	oldFree := page.freeSpace()
	page.remove(int64(rid.Slot))
	newFree := page.freeSpace()
	_ = H.pool.Release(rid.Address)

	if oldFree >= 0 {
		var found bool
		found, err = H.fsm.Pop(bucket(oldFree), rid.Address)
		if err != nil {
			return
		}
		if !found {
			logging.WithPage("table", rid.Address).Warn("page missing from free space map", "table", H.name, "free", oldFree)
		}
	}

	err = H.fsm.Insert(bucket(newFree), rid.Address)

	return
}

// Pages - Returns the number of pages in the data file, including pages not yet written to disk
func (H *HeapTable) Pages() int64 {
	return H.nPages
}

// FreeSpaceMap - Returns the free space map tracking the pages of the table
func (H *HeapTable) FreeSpaceMap() *freespacemap.FreeSpaceMap {
	return H.fsm
}

// Close - Writes all cached pages back and closes the data file and the free space map
func (H *HeapTable) Close() (err error) {
	if H.pool.Ready() {
		err = H.pool.Close()
		if err != nil {
			return
		}
		H.log.Debug("heap table closed", "pages", H.nPages)
	}

	return H.fsm.CloseFiles()
}

// Remove - Closes the table and removes its data file and free space map file
func (H *HeapTable) Remove() (err error) {
	_ = H.Close()

	err = file.RemoveFile(H.fileName)
	if err != nil {
		return
	}

	return H.fsm.RemoveFiles()
}

// checkRID - Returns fserr.RecordNotFound if rid can't point at a page of the data file
func (H *HeapTable) checkRID(rid RID) (err error) {
	if rid.Address < 0 || rid.Address%conf.PageSize != 0 || rid.Address >= H.nPages*conf.PageSize || rid.Slot < 0 {
		err = fserr.NewRecordNotFound("no item at %s", rid)
	}

	return
}

// withCacheDefault - Fills in the cache size if the config leaves it out
func withCacheDefault(config freespacemap.Config) freespacemap.Config {
	if config.CachePages == 0 {
		config.CachePages = freespacemap.DefaultConfig().CachePages
	}

	return config
}
