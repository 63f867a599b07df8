package wiki

import (
	"strings"
	"testing"
)

// TestNormalizeTitle tests local title normalization.
func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already normalized", input: "Graph theory", want: "Graph theory"},
		{name: "underscores become spaces", input: "Graph_theory", want: "Graph theory"},
		{name: "first letter upper-cased", input: "graph theory", want: "Graph theory"},
		{name: "whitespace collapsed and trimmed", input: "  Graph   theory ", want: "Graph theory"},
		{name: "non-ascii first letter", input: "école normale", want: "École normale"},
		{name: "decomposed input is composed", input: "Cafe\u0301", want: "Caf\u00e9"},
		{name: "empty stays empty", input: "   ", want: ""},
		{name: "digits unchanged", input: "1984 (novel)", want: "1984 (novel)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeTitle(tt.input); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestStripNamespace tests namespace prefix removal.
func TestStripNamespace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "Category:Graph theory", want: "Graph theory"},
		{input: "Kategorie:Graphentheorie", want: "Graphentheorie"},
		{input: "Plain", want: "Plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := StripNamespace(tt.input); got != tt.want {
				t.Errorf("StripNamespace(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestKindString tests Kind names.
func TestKindString(t *testing.T) {
	t.Parallel()

	kinds := map[Kind]string{
		KindPage:               "page",
		KindDisambiguation:     "disambiguation",
		KindMissing:            "missing",
		KindRedirectUnresolved: "redirect-unresolved",
		Kind(99):               "unknown",
	}

	for kind, want := range kinds {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

// TestParseDisambiguationOptions tests option extraction from rendered HTML.
func TestParseDisambiguationOptions(t *testing.T) {
	t.Parallel()

	t.Run("collects first link of each list item", func(t *testing.T) {
		t.Parallel()

		page := `<div class="mw-parser-output">
			<p><b>Mercury</b> may refer to:</p>
			<ul>
				<li><a href="/wiki/Mercury_(planet)" title="Mercury (planet)">Mercury (planet)</a>, the closest planet to the Sun</li>
				<li><a href="/wiki/Mercury_(element)" title="Mercury (element)">Mercury</a>, a chemical element, see also <a href="/wiki/Hg" title="Hg">Hg</a></li>
				<li>No link here</li>
			</ul>
		</div>`

		options, err := ParseDisambiguationOptions(strings.NewReader(page))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"Mercury (planet)", "Mercury (element)"}
		if len(options) != len(want) {
			t.Fatalf("expected %d options, got %d: %v", len(want), len(options), options)
		}
		for i := range want {
			if options[i] != want[i] {
				t.Errorf("option %d: expected %q, got %q", i, want[i], options[i])
			}
		}
	})

	t.Run("skips table of contents entries", func(t *testing.T) {
		t.Parallel()

		page := `<ul>
			<li class="toclevel-1 tocsection-1"><a href="#Science"><span>Science</span></a></li>
			<li><a href="/wiki/Mercury_(planet)" title="Mercury (planet)">planet</a></li>
		</ul>`

		options, err := ParseDisambiguationOptions(strings.NewReader(page))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(options) != 1 || options[0] != "Mercury (planet)" {
			t.Errorf("expected only the article option, got %v", options)
		}
	})

	t.Run("skips red links and footnotes", func(t *testing.T) {
		t.Parallel()

		page := `<ul>
			<li><a href="/w/index.php?title=Mercury_(band)&amp;action=edit&amp;redlink=1" class="new" title="Mercury (band) (page does not exist)">Mercury</a>, a band</li>
			<li><sup class="reference"><a href="#cite_note-1">^</a></sup> <a href="/wiki/Mercury_(mythology)" title="Mercury (mythology)">Mercury</a>, a Roman god</li>
			<li><a href="#See_also">See also</a></li>
		</ul>`

		options, err := ParseDisambiguationOptions(strings.NewReader(page))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(options) != 1 || options[0] != "Mercury (mythology)" {
			t.Errorf("expected only the existing article, got %v", options)
		}
	})

	t.Run("falls back to anchor text and deduplicates", func(t *testing.T) {
		t.Parallel()

		page := `<ul>
			<li><a href="/wiki/Freddie_Mercury">Freddie_Mercury</a></li>
			<li><a href="/wiki/Freddie_Mercury" title="Freddie Mercury">Freddie</a></li>
		</ul>`

		options, err := ParseDisambiguationOptions(strings.NewReader(page))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(options) != 1 || options[0] != "Freddie Mercury" {
			t.Errorf("unexpected options %v", options)
		}
	})
}
