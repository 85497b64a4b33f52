package parser

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// signatureLen bounds the signature string taken from a structural node's
// source span.
const signatureLen = 100

// Parser extracts code elements from source text. Extraction is two-tier:
// a tree-sitter structural parse where a grammar is registered, and a
// line-pattern fallback everywhere else (including when the structural
// attempt fails for a file).
type Parser struct {
	languages map[Language]*sitter.Language
	mu        sync.RWMutex
}

func NewParser() *Parser {
	p := &Parser{
		languages: make(map[Language]*sitter.Language),
	}

	p.languages[LangC] = c.GetLanguage()
	p.languages[LangCPP] = cpp.GetLanguage()
	p.languages[LangGo] = golang.GetLanguage()
	p.languages[LangJava] = java.GetLanguage()
	p.languages[LangJavaScript] = javascript.GetLanguage()
	p.languages[LangPHP] = php.GetLanguage()
	p.languages[LangPython] = python.GetLanguage()
	p.languages[LangRust] = rust.GetLanguage()
	p.languages[LangTypeScript] = typescript.GetLanguage()

	return p
}

// HasStructuralParser reports whether a tree-sitter grammar is registered for
// the language.
func (p *Parser) HasStructuralParser(lang Language) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.languages[lang] != nil
}

func (p *Parser) grammar(lang Language) *sitter.Language {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.languages[lang]
}

// Extract returns the named elements of one source file in declaration order.
// A structural parse failure degrades to the pattern tier for this file only;
// Extract itself never fails. An empty file yields an empty result.
func (p *Parser) Extract(ctx context.Context, filePath string, lang Language, source []byte) []Element {
	if len(source) == 0 {
		return nil
	}

	if p.HasStructuralParser(lang) {
		elements, err := p.extractStructural(ctx, filePath, lang, source)
		if err == nil {
			return elements
		}
		// fall through to the pattern tier
	}

	return extractPattern(string(source), filePath, lang)
}

func (p *Parser) extractStructural(ctx context.Context, filePath string, lang Language, source []byte) ([]Element, error) {
	grammar := p.grammar(lang)
	if grammar == nil {
		return nil, fmt.Errorf("no structural parser for language: %s", lang)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	defer tree.Close()

	var elements []Element
	p.walk(tree.RootNode(), filePath, lang, source, &elements)
	return elements, nil
}

// walk visits the syntax tree pre-order so elements come out in declaration
// order.
func (p *Parser) walk(node *sitter.Node, filePath string, lang Language, source []byte, out *[]Element) {
	if node == nil {
		return
	}

	if kind, ok := definitionKind(lang, node.Type()); ok {
		name := p.nodeName(node, source)
		if name != "" {
			*out = append(*out, Element{
				Name:      name,
				Kind:      kind,
				FilePath:  filePath,
				StartLine: int(node.StartPoint().Row) + 1,
				EndLine:   int(node.EndPoint().Row) + 1,
				Language:  lang,
				Signature: signatureOf(node, source),
			})
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		p.walk(node.Child(i), filePath, lang, source, out)
	}
}

// definitionKind maps a tree-sitter node type to an element kind for the
// given language. Node types that do not declare a named element return
// ok=false.
func definitionKind(lang Language, nodeType string) (Kind, bool) {
	switch lang {
	case LangPython:
		switch nodeType {
		case "function_definition":
			return KindFunction, true
		case "class_definition":
			return KindClass, true
		}
	case LangJavaScript, LangTypeScript:
		switch nodeType {
		case "function_declaration":
			return KindFunction, true
		case "class_declaration":
			return KindClass, true
		case "method_definition":
			return KindMethod, true
		}
	case LangJava:
		switch nodeType {
		case "class_declaration":
			return KindClass, true
		case "method_declaration", "constructor_declaration":
			return KindMethod, true
		}
	case LangPHP:
		switch nodeType {
		case "function_definition":
			return KindFunction, true
		case "class_declaration":
			return KindClass, true
		case "method_declaration":
			return KindMethod, true
		}
	case LangGo:
		switch nodeType {
		case "function_declaration":
			return KindFunction, true
		case "method_declaration":
			return KindMethod, true
		case "type_spec":
			return KindClass, true
		}
	case LangC:
		switch nodeType {
		case "function_definition":
			return KindFunction, true
		case "struct_specifier":
			return KindClass, true
		}
	case LangCPP:
		switch nodeType {
		case "function_definition":
			return KindFunction, true
		case "struct_specifier", "class_specifier":
			return KindClass, true
		}
	case LangRust:
		switch nodeType {
		case "function_item":
			return KindFunction, true
		case "struct_item", "enum_item":
			return KindClass, true
		}
	}
	return "", false
}

// nodeName reads the declared name of a definition node. Most grammars expose
// it as the "name" field; C-family function definitions bury it inside the
// declarator.
func (p *Parser) nodeName(node *sitter.Node, source []byte) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return nodeText(name, source)
	}

	if declarator := node.ChildByFieldName("declarator"); declarator != nil {
		return declaratorName(declarator, source)
	}

	// Fallback: first identifier child (anonymous structs etc. yield "").
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "identifier" || child.Type() == "type_identifier" {
			return nodeText(child, source)
		}
	}
	return ""
}

// declaratorName descends through pointer/function declarators to the
// underlying identifier.
func declaratorName(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "identifier", "field_identifier", "qualified_identifier":
		return nodeText(node, source)
	}
	if inner := node.ChildByFieldName("declarator"); inner != nil {
		return declaratorName(inner, source)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if name := declaratorName(node.Child(i), source); name != "" {
			return name
		}
	}
	return ""
}

func nodeText(node *sitter.Node, source []byte) string {
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(source) || start >= end {
		return ""
	}
	return string(source[start:end])
}

// signatureOf takes the first ~100 characters of the node's source span.
func signatureOf(node *sitter.Node, source []byte) string {
	text := nodeText(node, source)
	if len(text) > signatureLen {
		return text[:signatureLen]
	}
	return text
}
