package pool

import "github.com/citesweep/citesweep/internal/pipeline"

// DefaultBatchSize matches the API's bulk revisions query limit.
const DefaultBatchSize = 32

// MakeBatches collapses duplicate ids and partitions the remainder into
// batches of at most size, preserving first-seen order. Every input id is
// assigned to exactly one batch.
func MakeBatches(ids []pipeline.PageID, size int) [][]pipeline.PageID {
	if size <= 0 {
		size = DefaultBatchSize
	}

	seen := make(map[pipeline.PageID]struct{}, len(ids))
	unique := make([]pipeline.PageID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var batches [][]pipeline.PageID
	for start := 0; start < len(unique); start += size {
		end := min(start+size, len(unique))
		batches = append(batches, unique[start:end])
	}
	return batches
}
