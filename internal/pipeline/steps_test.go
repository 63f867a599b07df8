package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/nao1215/wikigraph/internal/database"
	"github.com/nao1215/wikigraph/internal/model"
	"github.com/nao1215/wikigraph/internal/persist"
	"github.com/nao1215/wikigraph/internal/wiki"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestFetcher serves S -> A, B; A -> S, B; B -> C, with C missing.
func newTestFetcher() *wiki.MemoryFetcher {
	return wiki.NewMemoryFetcher().
		AddPage(&wiki.Page{Title: "S", Links: []string{"A", "B"}, Categories: []string{"Root"}}).
		AddPage(&wiki.Page{Title: "A", Links: []string{"S", "B"}, Categories: []string{"Leaf"}}).
		AddPage(&wiki.Page{Title: "B", Links: []string{"C"}, Categories: []string{"Leaf"}})
}

// TestDefaultPipeline tests the standard crawl, inner pass and save sequence.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("step names", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(newTestFetcher(), nil, WithPipelineInner(false))
		if want := []string{"crawl"}; !reflect.DeepEqual(p.StepNames(), want) {
			t.Errorf("expected %v, got %v", want, p.StepNames())
		}
	})

	t.Run("crawls, re-explores and saves", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := persist.NewStore(t.TempDir())
		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })

		p := DefaultPipeline(newTestFetcher(),
			[]Option{WithLogger(discardLogger())},
			WithPipelineStore(store),
			WithPipelineDB(db),
		)
		if want := []string{"crawl", "inner", "save", "database"}; !reflect.DeepEqual(p.StepNames(), want) {
			t.Fatalf("expected %v, got %v", want, p.StepNames())
		}

		run := NewRun("network", []string{"S"})
		if err := p.Execute(ctx, run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if want := []string{"S", "A", "B"}; !reflect.DeepEqual(run.Outer.Network.Titles(), want) {
			t.Errorf("expected outer titles %v, got %v", want, run.Outer.Network.Titles())
		}
		if run.Inner == nil {
			t.Fatal("expected an inner session")
		}
		b, _ := run.Inner.Network.Get("B")
		if len(b.Links) != 0 {
			t.Errorf("expected inner links of B to be restricted away, got %v", b.Links)
		}

		if want := []string{"network", "network-inner"}; !reflect.DeepEqual(run.Saved, want) {
			t.Errorf("expected saved %v, got %v", want, run.Saved)
		}
		var loaded model.Session
		if err := store.Load("network-inner", &loaded); err != nil {
			t.Fatalf("failed to load inner network: %v", err)
		}
		if loaded.Mode != "inner" || loaded.Network.Len() != 3 {
			t.Errorf("unexpected loaded session mode=%q pages=%d", loaded.Mode, loaded.Network.Len())
		}

		if len(run.SessionIDs) != 2 {
			t.Fatalf("expected 2 stored sessions, got %v", run.SessionIDs)
		}
		rec, err := db.GetSession(ctx, run.SessionIDs[1])
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if rec.Name != "network-inner" || rec.Pages != 3 {
			t.Errorf("unexpected record %+v", rec)
		}
	})

	t.Run("interrupted crawl is still saved", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		store := persist.NewStore(t.TempDir())

		p := DefaultPipeline(newTestFetcher(),
			[]Option{WithLogger(discardLogger())},
			WithPipelineStore(store),
			WithPipelineProgress(func(*model.Session) { cancel() }),
		)

		run := NewRun("network", []string{"S"})
		if err := p.Execute(ctx, run); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if !run.Interrupted || run.Inner != nil {
			t.Errorf("expected an interrupted run without inner pass, got interrupted=%v inner=%v", run.Interrupted, run.Inner != nil)
		}

		var loaded model.Session
		if err := store.Load("network", &loaded); err != nil {
			t.Fatalf("failed to load partial network: %v", err)
		}
		if !loaded.Interrupted {
			t.Error("expected saved session to be marked interrupted")
		}
		if want := []string{"A", "B"}; !reflect.DeepEqual(loaded.Pending, want) {
			t.Errorf("expected pending %v, got %v", want, loaded.Pending)
		}
	})
}

// TestInnerStepWithoutOuter tests the missing outer session error.
func TestInnerStepWithoutOuter(t *testing.T) {
	t.Parallel()

	p := New(WithLogger(discardLogger()))
	p.AddStep(NewInnerStep(nil))

	if err := p.Execute(context.Background(), NewRun("network", nil)); !errors.Is(err, ErrNoOuterSession) {
		t.Errorf("expected ErrNoOuterSession, got %v", err)
	}
}
