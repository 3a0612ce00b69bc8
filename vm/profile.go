package vm

// hotspotProfile tracks per-address execution counts. Entries are created
// lazily on first visit and never removed or decayed.
type hotspotProfile struct {
	counts map[int]int
}

func newHotspotProfile() *hotspotProfile {
	return &hotspotProfile{counts: map[int]int{}}
}

// Record increments and returns the execution count for addr.
func (p *hotspotProfile) Record(addr int) int {
	p.counts[addr]++
	return p.counts[addr]
}

// Count returns the execution count for addr, zero if never visited.
func (p *hotspotProfile) Count(addr int) int {
	return p.counts[addr]
}

// IsHot reports whether addr has reached the given threshold.
func (p *hotspotProfile) IsHot(addr, threshold int) bool {
	return p.counts[addr] >= threshold
}
