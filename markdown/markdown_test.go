package markdown

import (
	"reflect"
	"testing"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "The Eiffel Tower stands in Paris.", "The Eiffel Tower stands in Paris."},
		{"bold", "A **famous** landmark", "A famous landmark"},
		{"italic", "A *famous* landmark", "A famous landmark"},
		{"underscore emphasis", "A __very__ _famous_ place", "A very famous place"},
		{"heading", "## History\nBuilt in 1889.", "History\nBuilt in 1889."},
		{"link keeps text", "See [the official site](https://example.com) for hours.", "See the official site for hours."},
		{"bullet list", "- first\n- second", "first\nsecond"},
		{"ordered list", "1. first\n2. second", "first\nsecond"},
		{"blockquote", "> a quote", "a quote"},
		{"inline code", "the `metro` line", "the metro line"},
		{"code fence", "```\nsome text\n```", "some text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Strip(tt.in); got != tt.want {
				t.Errorf("Strip(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitParagraphs(t *testing.T) {
	text := "First paragraph.\n\nSecond paragraph\nwith a wrapped line.\n\n\nThird."
	want := []string{"First paragraph.", "Second paragraph\nwith a wrapped line.", "Third."}
	if got := SplitParagraphs(text); !reflect.DeepEqual(got, want) {
		t.Errorf("SplitParagraphs = %#v, want %#v", got, want)
	}
}

func TestSplitParagraphsEmpty(t *testing.T) {
	if got := SplitParagraphs("   \n\n  "); got != nil {
		t.Errorf("SplitParagraphs on blank input = %#v, want nil", got)
	}
}
