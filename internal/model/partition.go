package model

import (
	"errors"
	"fmt"
)

// ErrPartitionLength is returned when a positional label list does not
// have exactly one label per network node.
var ErrPartitionLength = errors.New("partition length does not match network size")

// Partition assigns a community label to each page title.
// Labels are expected to be contiguous from 0 to k-1.
type Partition map[string]int

// NewPartition copies labels into a Partition.
func NewPartition(labels map[string]int) Partition {
	p := make(Partition, len(labels))
	for title, label := range labels {
		p[title] = label
	}
	return p
}

// PartitionFromLabels binds a positional label list to network titles.
// labels[i] belongs to the i-th title in the network's insertion order.
// This is the only place where position matters; everything downstream
// works on titles.
func PartitionFromLabels(network *Network, labels []int) (Partition, error) {
	if len(labels) != network.Len() {
		return nil, fmt.Errorf("%w: %d labels for %d nodes", ErrPartitionLength, len(labels), network.Len())
	}

	p := make(Partition, len(labels))
	network.Each(func(i int, title string, _ *Node) bool {
		p[title] = labels[i]
		return true
	})
	return p, nil
}

// Label returns the label of title.
func (p Partition) Label(title string) (int, bool) {
	label, ok := p[title]
	return label, ok
}

// Bag counts how many pages of one community carry each category.
type Bag map[string]int
