package storage

import "fmt"

// GetIndexFileName - Return the free space index file name given the free space map name
func GetIndexFileName(name string) (fileName string) {
	return fmt.Sprintf("%s-fsm.bin", name)
}

// GetDataFileName - Return the heap data file name given the table name
func GetDataFileName(name string) (fileName string) {
	return fmt.Sprintf("%s-data.bin", name)
}
