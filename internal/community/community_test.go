package community

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nao1215/wikigraph/internal/model"
)

func newTestNetwork() *model.Network {
	n := model.NewNetwork()
	n.Add("p1", &model.Node{Categories: []string{"c1", "c2"}})
	n.Add("p2", &model.Node{Categories: []string{"c1"}})
	return n
}

// TestBagsFromLabels tests the positional form.
func TestBagsFromLabels(t *testing.T) {
	t.Parallel()

	t.Run("one bag per label", func(t *testing.T) {
		t.Parallel()

		bags, err := BagsFromLabels(newTestNetwork(), []int{0, 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []model.Bag{{"c1": 1, "c2": 1}, {"c1": 1}}
		if !reflect.DeepEqual(bags, want) {
			t.Errorf("expected %v, got %v", want, bags)
		}
	})

	t.Run("shared label sums counts", func(t *testing.T) {
		t.Parallel()

		bags, err := BagsFromLabels(newTestNetwork(), []int{0, 0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []model.Bag{{"c1": 2, "c2": 1}}
		if !reflect.DeepEqual(bags, want) {
			t.Errorf("expected %v, got %v", want, bags)
		}
	})

	t.Run("length mismatch", func(t *testing.T) {
		t.Parallel()

		if _, err := BagsFromLabels(newTestNetwork(), []int{0}); !errors.Is(err, ErrPartitionLength) {
			t.Errorf("expected ErrPartitionLength, got %v", err)
		}
	})
}

// TestBagsOfCommunities tests the title-keyed form.
func TestBagsOfCommunities(t *testing.T) {
	t.Parallel()

	t.Run("labels by title", func(t *testing.T) {
		t.Parallel()

		bags, err := BagsOfCommunities(newTestNetwork(), model.NewPartition(map[string]int{"p2": 0, "p1": 1}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []model.Bag{{"c1": 1}, {"c1": 1, "c2": 1}}
		if !reflect.DeepEqual(bags, want) {
			t.Errorf("expected %v, got %v", want, bags)
		}
	})

	t.Run("community without categories has an empty bag", func(t *testing.T) {
		t.Parallel()

		n := newTestNetwork()
		n.Add("p3", &model.Node{})

		bags, err := BagsOfCommunities(n, model.Partition{"p1": 0, "p2": 0, "p3": 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(bags) != 2 || bags[1] == nil || len(bags[1]) != 0 {
			t.Errorf("expected an empty second bag, got %v", bags)
		}
	})

	t.Run("sparse labels are out of range", func(t *testing.T) {
		t.Parallel()

		_, err := BagsOfCommunities(newTestNetwork(), model.Partition{"p1": 0, "p2": 5})
		if !errors.Is(err, ErrLabelOutOfRange) {
			t.Errorf("expected ErrLabelOutOfRange, got %v", err)
		}
	})

	t.Run("negative labels are out of range", func(t *testing.T) {
		t.Parallel()

		_, err := BagsOfCommunities(newTestNetwork(), model.Partition{"p1": -1, "p2": 0})
		if !errors.Is(err, ErrLabelOutOfRange) {
			t.Errorf("expected ErrLabelOutOfRange, got %v", err)
		}
	})

	t.Run("unlabeled title", func(t *testing.T) {
		t.Parallel()

		_, err := BagsOfCommunities(newTestNetwork(), model.Partition{"p1": 0})
		if !errors.Is(err, ErrUnlabeled) {
			t.Errorf("expected ErrUnlabeled, got %v", err)
		}
	})

	t.Run("titles outside the network count towards k", func(t *testing.T) {
		t.Parallel()

		network := model.NewNetwork()
		network.Add("p1", &model.Node{Categories: []string{"c1"}})
		network.Add("p2", &model.Node{Categories: []string{"c2"}})

		bags, err := BagsOfCommunities(network, model.Partition{"p1": 0, "p2": 2, "p3": 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []model.Bag{{"c1": 1}, {}, {"c2": 1}}
		if !reflect.DeepEqual(bags, want) {
			t.Errorf("expected %v, got %v", want, bags)
		}
	})

	t.Run("extra partition entries widen k", func(t *testing.T) {
		t.Parallel()

		bags, err := BagsOfCommunities(newTestNetwork(), model.Partition{"p1": 0, "p2": 0, "elsewhere": 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(bags) != 2 {
			t.Errorf("expected 2 bags, got %d", len(bags))
		}
	})

	t.Run("sparse labels outside the network", func(t *testing.T) {
		t.Parallel()

		_, err := BagsOfCommunities(newTestNetwork(), model.Partition{"p1": 0, "p2": 3, "elsewhere": 7})
		if !errors.Is(err, ErrLabelOutOfRange) {
			t.Errorf("expected ErrLabelOutOfRange, got %v", err)
		}
	})
}

// TestTopCategories tests ordering and truncation.
func TestTopCategories(t *testing.T) {
	t.Parallel()

	bag := model.Bag{"b": 2, "a": 2, "c": 5, "d": 1}

	got := TopCategories(bag, 3)
	want := []CategoryCount{{"c", 5}, {"a", 2}, {"b", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if all := TopCategories(bag, 0); len(all) != 4 {
		t.Errorf("expected all 4 categories, got %d", len(all))
	}
}

// TestSummarize tests the per-community summary.
func TestSummarize(t *testing.T) {
	t.Parallel()

	n := newTestNetwork()
	n.Add("p3", &model.Node{Categories: []string{"c3"}})

	s, err := Summarize(n, model.Partition{"p1": 0, "p2": 1, "p3": 1}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Pages != 3 || len(s.Communities) != 2 {
		t.Fatalf("unexpected summary %+v", s)
	}

	second := s.Communities[1]
	if second.Label != 1 || second.Size != 2 || second.Categories != 2 {
		t.Errorf("unexpected community %+v", second)
	}
	if !reflect.DeepEqual(second.Top, []CategoryCount{{"c1", 1}}) {
		t.Errorf("expected top [c1], got %v", second.Top)
	}
}
