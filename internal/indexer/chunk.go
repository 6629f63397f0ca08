package indexer

// blockRange is an inclusive block range.
type blockRange struct {
	From uint64
	To   uint64
}

// splitRange chunks [from, to] into ranges of at most size blocks, so a
// single getLogs call never exceeds endpoint log-count limits. size must
// be positive; callers validate configuration at startup.
func splitRange(from, to, size uint64) []blockRange {
	if to < from || size == 0 {
		return nil
	}

	ranges := make([]blockRange, 0, (to-from)/size+1)
	for start := from; start <= to; {
		end := to
		if to-start >= size {
			end = start + size - 1
		}
		ranges = append(ranges, blockRange{From: start, To: end})
		if end == to {
			break
		}
		start = end + 1
	}
	return ranges
}
