package models

import "time"

// KVEntry is the row layout of the SQL-backed key-value store. One row per
// persisted document (tables, catalog, pricing rules).
type KVEntry struct {
	Key       string `gorm:"primaryKey;column:doc_key;type:varchar(128)"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
