package yolo2coco

import "sync"

// IDGenerator is a struct to hold a counter for generating the next
// incremental annotation ID.  A single generator is shared by all images of
// a run so annotation IDs are unique across the dataset
type IDGenerator struct {
	next int
	sync.Mutex
}

// NewIDGenerator returns a generator whose first ID is start
func NewIDGenerator(start int) *IDGenerator {
	return &IDGenerator{next: start}
}

// Next returns the next incremental ID
func (id *IDGenerator) Next() int {
	id.Lock()
	defer id.Unlock()
	n := id.next
	id.next++
	return n
}
