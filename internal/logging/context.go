package logging

import "log/slog"

// WithComponent - Returns a logger tagged with the subsystem name, e.g. "bufferpool" or "hashindex"
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithPage - Returns a logger tagged with a page address
func WithPage(component string, address int64) *slog.Logger {
	return GetLogger().With("component", component, "address", address)
}

// WithBucket - Returns a logger tagged with a free space bucket
func WithBucket(component string, size int16) *slog.Logger {
	return GetLogger().With("component", component, "bucket", size)
}

// WithTable - Returns a logger tagged with a table name
func WithTable(name string) *slog.Logger {
	return GetLogger().With("component", "table", "table", name)
}
