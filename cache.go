package adscan

// CacheStats reports content cache occupancy and effectiveness.
type CacheStats struct {
	Entries   int
	SizeBytes int64
	Hits      int64
	Misses    int64
}

// HitRate returns the fraction of lookups served from cache, or 0 before any
// lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// ContentCache is a bounded cache of fetched raw content. Caching is an
// optimization, never a correctness dependency: implementations degrade to
// in-memory operation when persistent backing is unavailable, and Get/Set
// never fail.
type ContentCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Stats() CacheStats
}
