package conf

// PageSize - Number of bytes in one page, the unit of all file I/O and caching
const PageSize int64 = 128

// CachePages - Default number of page slots in a buffer pool
const CachePages int = 8

// MinCachePages - Fewest page slots an index can work with, an insert pins the control page, a directory
// page and a map block at the same time
const MinCachePages int = 3

// NoAddress - Sentinel address meaning "no page" (an empty slot, an empty bucket or the end of a chain)
const NoAddress int64 = -1

// AddressLength - Length of an on-disk address - 8 bytes
const AddressLength int64 = 8

// BucketCount - Number of free space buckets, bucket b holds pages with at least b bytes free
const BucketCount int16 = 128

// DirBlockSize - Number of bucket head addresses in one directory page
const DirBlockSize int64 = PageSize / AddressLength

// MinDirectoryBlocks - Smallest number of directory pages that covers every bucket
const MinDirectoryBlocks int64 = int64(BucketCount) / DirBlockSize

// MapBlockCapacity - Number of page addresses held by one map (overflow) block
const MapBlockCapacity int64 = (PageSize - mapBlockHeaderLength) / AddressLength

// InitialMapBlocks - Number of map blocks pre-allocated into the free list when an index file is created
const InitialMapBlocks int64 = 8

// ControlBlockAddress - The control block always lives in page 0 of an index file
const ControlBlockAddress int64 = 0

// NDirectoryBlocksOffset - Control block offset to number of directory pages - 8 bytes
const NDirectoryBlocksOffset int64 = 0

// FreeBlockHeadOffset - Control block offset to the head of the map block free list - 8 bytes
const FreeBlockHeadOffset int64 = 8

// MaxSizeOffset - Control block offset to number of map blocks ever allocated - 8 bytes
const MaxSizeOffset int64 = 16

// mapBlockHeaderLength - Length of the map block header (item count and next address)
const mapBlockHeaderLength int64 = 16

// MapBlockItemsOffset - Map block offset to number of items in use - 8 bytes
const MapBlockItemsOffset int64 = 0

// MapBlockNextOffset - Map block offset to the next block in chain - 8 bytes
const MapBlockNextOffset int64 = 8

// MapBlockEntriesOffset - Map block offset to the first entry
const MapBlockEntriesOffset int64 = mapBlockHeaderLength
