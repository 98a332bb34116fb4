package types

// KVRecord is one key of the sqlite-backed key/value store.
type KVRecord struct {
	Key   string `gorm:"primaryKey"`
	Value []byte
}

func (KVRecord) TableName() string {
	return "kv_records"
}
