package parser

import (
	"context"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		filename string
		want     Language
	}{
		{"main.py", LangPython},
		{"app.js", LangJavaScript},
		{"view.jsx", LangJavaScript},
		{"mod.mjs", LangJavaScript},
		{"api.ts", LangTypeScript},
		{"page.tsx", LangTypeScript},
		{"Main.java", LangJava},
		{"index.php", LangPHP},
		{"page.HTML", LangHTML},
		{"style.css", LangCSS},
		{"core.c", LangC},
		{"core.h", LangC},
		{"engine.cpp", LangCPP},
		{"engine.hpp", LangCPP},
		{"server.go", LangGo},
		{"lib.rs", LangRust},
		{"README.md", ""},
		{"notes.txt", ""},
		{"Makefile", ""},
	}

	for _, tc := range cases {
		if got := DetectLanguage(tc.filename); got != tc.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func TestExtractPythonStructural(t *testing.T) {
	source := []byte("def top(a):\n    return a\n\nclass Widget:\n    def render(self):\n        pass\n")

	p := NewParser()
	if !p.HasStructuralParser(LangPython) {
		t.Fatal("python grammar not registered")
	}

	elements := p.Extract(context.Background(), "w.py", LangPython, source)
	if len(elements) != 3 {
		t.Fatalf("extracted %d elements, want 3: %v", len(elements), elements)
	}

	if elements[0].Name != "top" || elements[0].Kind != KindFunction {
		t.Errorf("element 0 = %+v", elements[0])
	}
	if elements[0].StartLine != 1 || elements[0].EndLine != 2 {
		t.Errorf("top lines = %d..%d, want 1..2", elements[0].StartLine, elements[0].EndLine)
	}
	if elements[1].Name != "Widget" || elements[1].Kind != KindClass {
		t.Errorf("element 1 = %+v", elements[1])
	}
	if elements[2].Name != "render" || elements[2].Kind != KindFunction {
		t.Errorf("element 2 = %+v", elements[2])
	}
}

func TestExtractGoStructural(t *testing.T) {
	source := []byte("package x\n\ntype Server struct{}\n\nfunc (s *Server) Run() error { return nil }\n\nfunc New() *Server { return &Server{} }\n")

	p := NewParser()
	elements := p.Extract(context.Background(), "s.go", LangGo, source)

	byName := make(map[string]Element)
	for _, el := range elements {
		byName[el.Name] = el
	}
	if el, ok := byName["Server"]; !ok || el.Kind != KindClass {
		t.Errorf("Server = %+v, ok=%v", el, ok)
	}
	if el, ok := byName["Run"]; !ok || el.Kind != KindMethod {
		t.Errorf("Run = %+v, ok=%v", el, ok)
	}
	if el, ok := byName["New"]; !ok || el.Kind != KindFunction {
		t.Errorf("New = %+v, ok=%v", el, ok)
	}
}

func TestExtractEmptySource(t *testing.T) {
	p := NewParser()
	if got := p.Extract(context.Background(), "e.py", LangPython, nil); got != nil {
		t.Errorf("empty source yielded %v", got)
	}
}

func TestExtractUnknownLanguageUsesPatternTier(t *testing.T) {
	p := NewParser()
	if p.HasStructuralParser(LangHTML) {
		t.Fatal("html should have no structural parser")
	}
	// No grammar and no patterns either: markup yields nothing.
	if got := p.Extract(context.Background(), "i.html", LangHTML, []byte("<p>hi</p>")); got != nil {
		t.Errorf("html yielded %v", got)
	}
}

func TestExtractSignatureBounded(t *testing.T) {
	long := "def long_one(a, b, c, d, e, f, g, h, i, j, k, l, m, n, o, p, q, r, s, t, u, v, w, x, y, z):\n    pass\n"

	p := NewParser()
	elements := p.Extract(context.Background(), "l.py", LangPython, []byte(long))
	if len(elements) != 1 {
		t.Fatalf("extracted %d elements, want 1", len(elements))
	}
	if len(elements[0].Signature) > signatureLen {
		t.Errorf("signature length %d exceeds bound %d", len(elements[0].Signature), signatureLen)
	}
}
