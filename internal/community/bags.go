package community

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nao1215/wikigraph/internal/model"
)

// Aggregation errors.
var (
	// ErrLabelOutOfRange is returned when a label is not in [0, k), where
	// k is the number of distinct labels.
	ErrLabelOutOfRange = errors.New("community label out of range")

	// ErrUnlabeled is returned when a network title has no label.
	ErrUnlabeled = errors.New("title has no community label")

	// ErrPartitionLength is returned by BagsFromLabels when the label
	// list does not cover the network exactly.
	ErrPartitionLength = model.ErrPartitionLength
)

// BagsOfCommunities counts, for each community, how many of its pages
// carry each category. The result is indexed by label.
//
// Labels are expected to be contiguous from 0. A sparse labeling fails
// with ErrLabelOutOfRange.
func BagsOfCommunities(network *model.Network, partition model.Partition) ([]model.Bag, error) {
	labels, k, err := resolveLabels(network, partition)
	if err != nil {
		return nil, err
	}

	bags := make([]model.Bag, k)
	for i := range bags {
		bags[i] = make(model.Bag)
	}

	network.Each(func(i int, _ string, node *model.Node) bool {
		bag := bags[labels[i]]
		for _, category := range node.Categories {
			bag[category]++
		}
		return true
	})
	return bags, nil
}

// BagsFromLabels is BagsOfCommunities for a label list aligned with the
// network's insertion order.
func BagsFromLabels(network *model.Network, labels []int) ([]model.Bag, error) {
	partition, err := model.PartitionFromLabels(network, labels)
	if err != nil {
		return nil, err
	}
	return BagsOfCommunities(network, partition)
}

// resolveLabels returns the label of every network title in insertion
// order, and k, the number of distinct labels in the whole partition.
// Titles outside the network still count towards k.
func resolveLabels(network *model.Network, partition model.Partition) ([]int, int, error) {
	distinct := make(map[int]struct{}, len(partition))
	for _, label := range partition {
		distinct[label] = struct{}{}
	}
	k := len(distinct)

	labels := make([]int, 0, network.Len())
	var err error
	network.Each(func(_ int, title string, _ *model.Node) bool {
		label, ok := partition.Label(title)
		if !ok {
			err = fmt.Errorf("%w: %q", ErrUnlabeled, title)
			return false
		}
		if label < 0 || label >= k {
			err = fmt.Errorf("%w: %q has label %d, want 0..%d", ErrLabelOutOfRange, title, label, k-1)
			return false
		}
		labels = append(labels, label)
		return true
	})
	if err != nil {
		return nil, 0, err
	}
	return labels, k, nil
}

// CategoryCount is one entry of a bag.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// TopCategories returns the n most frequent categories of bag, by count
// descending and then by name. n <= 0 returns all of them.
func TopCategories(bag model.Bag, n int) []CategoryCount {
	out := make([]CategoryCount, 0, len(bag))
	for category, count := range bag {
		out = append(out, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
