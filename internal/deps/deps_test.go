package deps

import (
	"reflect"
	"testing"

	"github.com/heefoo/codesight/internal/parser"
)

func TestExtractFindsCalls(t *testing.T) {
	snippet := `def process(data):
    cleaned = normalize(data)
    result = transform(cleaned)
    return result`

	got := Extract(snippet, parser.LangPython)
	want := []string{"normalize", "process", "transform"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %v, want %v", got, want)
	}
}

func TestExtractFiltersKeywords(t *testing.T) {
	snippet := `function handle(x) {
    if (x) {
        while (x > 0) {
            doWork(x);
        }
    }
    return finish(x);
}`

	got := Extract(snippet, parser.LangJavaScript)
	for _, name := range got {
		switch name {
		case "if", "while", "return", "for", "switch", "catch":
			t.Errorf("keyword %q leaked into dependency set %v", name, got)
		}
	}
	want := []string{"doWork", "finish", "handle"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %v, want %v", got, want)
	}
}

func TestExtractDeduplicatesAndSorts(t *testing.T) {
	snippet := "b(); a(); b(); a(); c();"
	got := Extract(snippet, parser.LangJavaScript)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %v, want %v", got, want)
	}
}

func TestExtractMarkupYieldsNothing(t *testing.T) {
	if got := Extract("body { margin: calc(1px); }", parser.LangCSS); got != nil {
		t.Errorf("css snippet produced dependencies: %v", got)
	}
	if got := Extract("<div onclick=\"go()\"></div>", parser.LangHTML); got != nil {
		t.Errorf("html snippet produced dependencies: %v", got)
	}
}

func TestExtractEmptySnippet(t *testing.T) {
	if got := Extract("", parser.LangPython); got != nil {
		t.Errorf("empty snippet produced dependencies: %v", got)
	}
}
