// Package bloom deduplicates crawl request keys with a Bloom filter.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a fixed-size set of request unique keys. It may report a key it
// never saw (false positive) but never forgets a key it did see.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a Filter sized for n expected keys at the given false
// positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records key.
func (f *Filter) Add(key string) {
	f.f.AddString(key)
}

// Test reports whether key might have been added.
func (f *Filter) Test(key string) bool {
	return f.f.TestString(key)
}

// Claim records key and reports whether it was new. A false result means the
// key was seen before, or collided with keys that were.
func (f *Filter) Claim(key string) bool {
	return !f.f.TestAndAddString(key)
}

// Reset forgets every key while keeping the filter's size.
func (f *Filter) Reset() {
	f.f.ClearAll()
}

// EstimatedCount returns the approximate number of distinct keys added.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
