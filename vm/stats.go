package vm

import "sort"

// HotAddress is one entry of the execution profile.
type HotAddress struct {
	Address int
	Count   int
}

// Stats is a snapshot of a machine's execution statistics.
type Stats struct {
	// InstructionsExecuted counts individual instruction effects, whether
	// performed by the interpreter or inside a fast path.
	InstructionsExecuted int64

	// RegionsCompiled is the number of fast paths in the cache.
	RegionsCompiled int

	// HotAddresses lists the most-executed addresses, highest count first,
	// capped at ten entries. Addresses executed only via a fast path stop
	// accumulating counts once their region is cached.
	HotAddresses []HotAddress
}

// Stats returns a snapshot of the machine's execution statistics. It is
// intended for inspection after Run returns.
func (m *Machine) Stats() Stats {
	hot := make([]HotAddress, 0, len(m.profile.counts))
	for addr, count := range m.profile.counts {
		hot = append(hot, HotAddress{Address: addr, Count: count})
	}
	sort.Slice(hot, func(i, j int) bool {
		if hot[i].Count != hot[j].Count {
			return hot[i].Count > hot[j].Count
		}
		return hot[i].Address < hot[j].Address
	})
	if len(hot) > 10 {
		hot = hot[:10]
	}
	return Stats{
		InstructionsExecuted: m.instructionCount,
		RegionsCompiled:      len(m.cache),
		HotAddresses:         hot,
	}
}
