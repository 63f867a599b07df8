package model

import (
	"encoding/json"
	"fmt"
)

// Node is a single Wikipedia article as recorded in the network.
type Node struct {
	// Links are the titles of articles this page links to.
	// In outer mode this is the list returned by the API, verbatim.
	// In inner mode it is restricted to titles already in the network.
	Links []string `json:"links"`

	// Categories are the category names without the "Category:" prefix.
	Categories []string `json:"categories"`

	// URL is the canonical URL of the article.
	URL string `json:"url"`
}

// Network maps canonical page titles to nodes.
// It remembers insertion order, which is the order used when labels
// are aligned positionally (see PartitionFromLabels).
//
// Network is insert-only: a title, once added, is never replaced or removed.
type Network struct {
	order []string
	nodes map[string]*Node
}

// NewNetwork returns an empty network.
func NewNetwork() *Network {
	return &Network{
		order: make([]string, 0),
		nodes: make(map[string]*Node),
	}
}

// Has reports whether title is a key of the network.
func (n *Network) Has(title string) bool {
	_, ok := n.nodes[title]
	return ok
}

// Get returns the node stored under title.
func (n *Network) Get(title string) (*Node, bool) {
	node, ok := n.nodes[title]
	return node, ok
}

// Add inserts node under title. It returns false and leaves the
// network untouched if title is already present.
func (n *Network) Add(title string, node *Node) bool {
	if n.Has(title) {
		return false
	}
	if node == nil {
		node = &Node{}
	}
	n.order = append(n.order, title)
	n.nodes[title] = node
	return true
}

// Len returns the number of nodes.
func (n *Network) Len() int {
	return len(n.order)
}

// Titles returns a copy of the keys in insertion order.
func (n *Network) Titles() []string {
	titles := make([]string, len(n.order))
	copy(titles, n.order)
	return titles
}

// TitleSet returns the keys as a set.
func (n *Network) TitleSet() map[string]struct{} {
	set := make(map[string]struct{}, len(n.order))
	for _, title := range n.order {
		set[title] = struct{}{}
	}
	return set
}

// Each calls fn for every node in insertion order together with its
// position. Iteration stops when fn returns false.
func (n *Network) Each(fn func(i int, title string, node *Node) bool) {
	for i, title := range n.order {
		if !fn(i, title, n.nodes[title]) {
			return
		}
	}
}

// EdgeCount returns the total number of recorded links.
func (n *Network) EdgeCount() int {
	total := 0
	for _, node := range n.nodes {
		total += len(node.Links)
	}
	return total
}

// networkJSON is the wire form of Network. A plain JSON object would
// lose insertion order, so the order is stored next to the nodes.
type networkJSON struct {
	Order []string         `json:"order"`
	Nodes map[string]*Node `json:"nodes"`
}

// MarshalJSON implements json.Marshaler.
func (n *Network) MarshalJSON() ([]byte, error) {
	return json.Marshal(networkJSON{Order: n.order, Nodes: n.nodes})
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Network) UnmarshalJSON(data []byte) error {
	var raw networkJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := NewNetwork()
	for _, title := range raw.Order {
		node, ok := raw.Nodes[title]
		if !ok {
			return fmt.Errorf("network order references unknown title %q", title)
		}
		if !out.Add(title, node) {
			return fmt.Errorf("network order lists title %q twice", title)
		}
	}
	if len(raw.Nodes) != out.Len() {
		return fmt.Errorf("network has %d nodes but order lists %d", len(raw.Nodes), out.Len())
	}

	*n = *out
	return nil
}
