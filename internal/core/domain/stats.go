package domain

// CacheStats is a point-in-time snapshot of cache access counters.
// Hits counts reads satisfied by either tier; Misses counts reads that fell
// past the in-process tier. A read warmed from the durable tier therefore
// bumps both counters, matching how the counters have always been reported.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// HitRate returns Hits/(Hits+Misses), or 0 before any access.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
