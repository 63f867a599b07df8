package community

import "github.com/nao1215/wikigraph/internal/model"

// Community describes one community of a partitioned network.
type Community struct {
	// Label is the community label.
	Label int `json:"label"`

	// Size is the number of pages with this label.
	Size int `json:"size"`

	// Categories is the number of distinct categories in the community.
	Categories int `json:"categories"`

	// Top holds the most frequent categories.
	Top []CategoryCount `json:"top"`
}

// Summary is the per-community view of a network.
type Summary struct {
	Pages       int         `json:"pages"`
	Communities []Community `json:"communities"`
}

// Summarize aggregates network by partition and keeps the top categories
// of each community.
func Summarize(network *model.Network, partition model.Partition, top int) (*Summary, error) {
	bags, err := BagsOfCommunities(network, partition)
	if err != nil {
		return nil, err
	}

	sizes := make([]int, len(bags))
	network.Each(func(_ int, title string, _ *model.Node) bool {
		label, _ := partition.Label(title)
		sizes[label]++
		return true
	})

	s := &Summary{
		Pages:       network.Len(),
		Communities: make([]Community, len(bags)),
	}
	for label, bag := range bags {
		s.Communities[label] = Community{
			Label:      label,
			Size:       sizes[label],
			Categories: len(bag),
			Top:        TopCategories(bag, top),
		}
	}
	return s, nil
}
