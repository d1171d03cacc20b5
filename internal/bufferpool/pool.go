package bufferpool

import (
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/gostonefire/freespacemap/fserr"
	"github.com/gostonefire/freespacemap/internal/conf"
	"github.com/gostonefire/freespacemap/internal/file"
	"github.com/gostonefire/freespacemap/internal/logging"
	"github.com/gostonefire/freespacemap/internal/model"
)

// PageIO - The page level file operations a Pool needs from its backing file
type PageIO interface {
	ReadPage(buf *model.Page, offset int64) error
	WritePage(buf *model.Page, offset int64) error
	Length() int64
	Close() error
}

// Options - Tuning of a Pool
//   - EvictEmptyFirst makes a miss take an unpinned empty slot before looking at recency, otherwise empty
//     slots compete on recency like any other slot.
type Options struct {
	EvictEmptyFirst bool
}

// Stats - Counters and occupancy of a Pool
type Stats struct {
	Capacity   int
	Resident   int
	Pinned     int
	Hits       int64
	Misses     int64
	Evictions  int64
	Writebacks int64
}

// slot - One cached page
type slot struct {
	page    model.Page
	address int64
	recency uint64
	pins    int
}

// Pool - A fixed set of page slots in front of one page file
type Pool struct {
	io    PageIO
	slots []slot
	opts  Options
	ready bool
	stats Stats
	log   *slog.Logger
}

// Open - Opens (or creates) fileName and returns a pool with capacity slots in front of it.
// If the file can't be opened the error is returned together with a pool that is not ready,
// every operation on it fails with fserr.PoolNotReady.
func Open(fileName string, capacity int, opts Options) (pool *Pool, err error) {
	pf, err := file.OpenPageFile(fileName)
	if err != nil {
		pool = &Pool{opts: opts, log: logging.WithComponent("bufferpool")}
		pool.log.Error("unable to open backing file", "file", fileName, "error", err)
		return
	}

	pool, err = New(pf, capacity, opts)
	if err != nil {
		_ = pf.Close()
	}

	return
}

// New - Returns a pool with capacity slots in front of io, all slots empty
func New(io PageIO, capacity int, opts Options) (pool *Pool, err error) {
	pool = &Pool{opts: opts, log: logging.WithComponent("bufferpool")}
	if capacity <= 0 {
		err = fserr.NewInvalidArgument("buffer pool capacity must be positive, got %d", capacity)
		return
	}

	pool.io = io
	pool.slots = make([]slot, capacity)
	for i := range pool.slots {
		pool.slots[i].address = conf.NoAddress
	}
	pool.stats.Capacity = capacity
	pool.ready = true

	return
}

// Ready - Returns true if the pool has an open backing file
func (P *Pool) Ready() bool {
	return P.ready
}

// FileLength - Returns the length of the backing file as currently written to disk
func (P *Pool) FileLength() int64 {
	if !P.ready {
		return 0
	}
	return P.io.Length()
}

// GetPage - Returns the page at address pinned once more. Every call must be matched by exactly one
// Release of the same address. The returned pointer stays valid until that Release.
func (P *Pool) GetPage(address int64) (page *model.Page, err error) {
	if !P.ready {
		err = fserr.PoolNotReady{}
		return
	}
	if address < 0 || address%conf.PageSize != 0 {
		err = fserr.NewInvalidArgument("address %d is not a page address", address)
		return
	}

	hit := -1
	for i := range P.slots {
		P.slots[i].recency++
		if P.slots[i].address == address {
			hit = i
		}
	}

	if hit >= 0 {
		s := &P.slots[hit]
		s.recency = 0
		s.pins++
		P.stats.Hits++
		page = &s.page
		return
	}

	P.stats.Misses++
	victim := P.victim()
	if victim < 0 {
		err = fserr.NoVictim{}
		P.log.Error("no victim for page miss", "address", address)
		return
	}

	s := &P.slots[victim]
	if s.address != conf.NoAddress {
		err = P.io.WritePage(&s.page, s.address)
		if err != nil {
			err = fserr.IOFailure{Op: "write", Offset: s.address, Err: err}
			P.log.Error("write back on eviction failed", "address", s.address, "error", err)
			return
		}
		P.stats.Writebacks++
		P.stats.Evictions++
		P.log.Debug("evicted page", "address", s.address, "for", address)
	}

	err = P.io.ReadPage(&s.page, address)
	if err != nil {
		s.address = conf.NoAddress
		s.recency = 0
		s.pins = 0
		err = fserr.IOFailure{Op: "read", Offset: address, Err: err}
		P.log.Error("page read failed", "address", address, "error", err)
		return
	}

	s.address = address
	s.recency = 0
	s.pins = 1
	page = &s.page

	return
}

// victim - Returns the slot to load a missed page into, or -1 if every slot is pinned.
// The slot with the highest recency wins, ties go to the lowest index.
func (P *Pool) victim() int {
	if P.opts.EvictEmptyFirst {
		for i := range P.slots {
			if P.slots[i].address == conf.NoAddress && P.slots[i].pins == 0 {
				return i
			}
		}
	}

	pos := -1
	var maxRecency uint64
	for i := range P.slots {
		if P.slots[i].pins == 0 && P.slots[i].recency > maxRecency {
			maxRecency = P.slots[i].recency
			pos = i
		}
	}

	return pos
}

// Release - Drops one pin on the page at address. Releasing an address that isn't resident, or isn't
// pinned, is a caller bug. It is logged and returned but leaves the pool unchanged.
func (P *Pool) Release(address int64) (err error) {
	if !P.ready {
		err = fserr.PoolNotReady{}
		return
	}

	s := P.find(address)
	if s == nil {
		err = fserr.AddressNotFound{Address: address}
		P.log.Warn("release of address not in pool", "address", address)
		return
	}
	if s.pins == 0 {
		err = fserr.NotPinned{Address: address}
		P.log.Warn("release of unpinned page", "address", address)
		return
	}

	s.pins--

	return
}

// Flush - Writes every cached page back to the file, pages stay cached
func (P *Pool) Flush() (err error) {
	if !P.ready {
		err = fserr.PoolNotReady{}
		return
	}

	return P.writeBackAll()
}

// Close - Writes every cached page back, pinned or not, and closes the file. The first write failure
// aborts the remaining write backs and leaves the file open.
func (P *Pool) Close() (err error) {
	if !P.ready {
		err = fserr.PoolNotReady{}
		return
	}

	err = P.writeBackAll()
	if err != nil {
		return
	}

	size := P.io.Length()
	err = P.io.Close()
	P.ready = false
	P.log.Debug("buffer pool closed", "file_size", humanize.IBytes(uint64(size)),
		"hits", P.stats.Hits, "misses", P.stats.Misses)

	return
}

func (P *Pool) writeBackAll() (err error) {
	for i := range P.slots {
		s := &P.slots[i]
		if s.address == conf.NoAddress {
			continue
		}
		err = P.io.WritePage(&s.page, s.address)
		if err != nil {
			err = fserr.IOFailure{Op: "write", Offset: s.address, Err: err}
			P.log.Error("write back failed", "address", s.address, "error", err)
			return
		}
		P.stats.Writebacks++
	}

	return
}

// Pins - Returns the pin count of the page at address, zero if not resident
func (P *Pool) Pins(address int64) int {
	if s := P.find(address); s != nil {
		return s.pins
	}
	return 0
}

// Resident - Returns true if the page at address is cached
func (P *Pool) Resident(address int64) bool {
	return P.find(address) != nil
}

// Stats - Returns a snapshot of pool counters and occupancy
func (P *Pool) Stats() (stats Stats) {
	stats = P.stats
	for i := range P.slots {
		if P.slots[i].address != conf.NoAddress {
			stats.Resident++
		}
		if P.slots[i].pins > 0 {
			stats.Pinned++
		}
	}

	return
}

func (P *Pool) find(address int64) *slot {
	if address == conf.NoAddress {
		return nil
	}
	for i := range P.slots {
		if P.slots[i].address == address {
			return &P.slots[i]
		}
	}
	return nil
}
