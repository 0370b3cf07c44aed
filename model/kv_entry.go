package model

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry is one row of the key-value table used by the GORM backends
type KVEntry struct {
	Key       string         `gorm:"primaryKey;type:varchar(255)" json:"key"`
	Value     datatypes.JSON `json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName pins the table name regardless of naming strategy
func (KVEntry) TableName() string {
	return "kv_entries"
}
