package storage

import "deals-scraper/models"

// WriteMode declares the consistency contract of one batch write.
type WriteMode int

const (
	// ModeAppend inserts all records, skipping URLs already present.
	ModeAppend WriteMode = iota
	// ModeUpsert inserts or updates rows by URL; newest values win.
	ModeUpsert
	// ModeReplace clears the target categories' prior rows before
	// inserting the new batch (full-refresh snapshot).
	ModeReplace
)

func (m WriteMode) String() string {
	switch m {
	case ModeAppend:
		return "append"
	case ModeUpsert:
		return "upsert"
	case ModeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// ProductWriter is the interface any durable storage backend must satisfy.
// A batch commits atomically or not at all.
type ProductWriter interface {
	Write(products []*models.Product, mode WriteMode) error
	Close() error
}

// DumpWriter persists a normalized batch to a file for offline replay.
type DumpWriter interface {
	Dump(products []*models.Product) error
}
