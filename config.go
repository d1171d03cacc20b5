package freespacemap

import (
	"fmt"
	"os"
	"strings"

	"github.com/gostonefire/freespacemap/internal/conf"
	"github.com/gostonefire/freespacemap/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config - Settings for opening a free space map or a heap table
//   - CachePages is the number of page slots in each buffer pool
//   - DirectoryBlocks is the number of directory pages in a new index file, at least 8
//   - EvictEmptyFirst makes a cache miss prefer an empty page slot over evicting a cached page
type Config struct {
	CachePages      int   `yaml:"cache_pages"`
	DirectoryBlocks int64 `yaml:"directory_blocks"`
	EvictEmptyFirst bool  `yaml:"evict_empty_first"`
}

// DefaultConfig - Returns the configuration used when nothing else is given
func DefaultConfig() Config {
	return Config{
		CachePages:      conf.CachePages,
		DirectoryBlocks: conf.MinDirectoryBlocks,
		EvictEmptyFirst: false,
	}
}

// LoadConfig - Reads a YAML configuration file, fields left out fall back to DefaultConfig
func LoadConfig(path string) (config Config, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("error while reading config file: %w", err)
		return
	}

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		err = fmt.Errorf("error while parsing config file %s: %w", path, err)
		return
	}

	config = config.withDefaults()

	return
}

// withDefaults - Returns a copy of the config with zero fields replaced by defaults
func (C Config) withDefaults() Config {
	d := DefaultConfig()
	if C.CachePages == 0 {
		C.CachePages = d.CachePages
	}
	if C.DirectoryBlocks == 0 {
		C.DirectoryBlocks = d.DirectoryBlocks
	}

	return C
}

// ConfigureLogging - Replaces the logger used by every free space map and table opened afterwards.
//   - level is one of debug, info, warn or error
//   - outputPath is a file to append log lines to, empty for stderr
func ConfigureLogging(level, outputPath string) (err error) {
	err = logging.Close()
	if err != nil {
		return
	}

	return logging.Init(logging.Config{
		Level:      logging.LogLevel(strings.ToUpper(level)),
		OutputPath: outputPath,
		Format:     "text",
	})
}
