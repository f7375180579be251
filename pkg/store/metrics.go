package store

// PebbleMetrics is the subset of pebble's internal metrics the pressure
// monitor watches.
type PebbleMetrics struct {
	WALBytes      uint64
	MemtableBytes uint64
}

// GetPebbleMetrics samples the live database. Returns zeros when the
// store is not open.
func GetPebbleMetrics() PebbleMetrics {
	if db == nil {
		return PebbleMetrics{}
	}
	m := db.Metrics()
	return PebbleMetrics{
		WALBytes:      m.WAL.Size,
		MemtableBytes: m.MemTable.Size,
	}
}
