package syntax

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Sentinel errors for parser operations.
var (
	ErrUnknownLanguage = errors.New("unknown tree-sitter language")
	ErrNoRootNode      = errors.New("no root node")
)

// Parser parses one language incrementally. Passing the previous tree to
// Parse lets tree-sitter reuse unchanged subtrees after ApplyEdit has
// shifted the old tree's position bookkeeping.
type Parser struct {
	language string
	ts       *sitter.Parser
}

// NewParser creates a parser for the named language.
func NewParser(language string) (*Parser, error) {
	lang := Language(language)
	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, language)
	}

	ts := sitter.NewParser()
	ts.SetLanguage(lang)

	return &Parser{language: language, ts: ts}, nil
}

// Language returns the parser's language name.
func (p *Parser) Language() string {
	return p.language
}

// Parse parses src into a syntax tree. oldTree may be nil for a full parse;
// a previous tree that has been edited to reflect the text change enables
// incremental reuse.
func (p *Parser) Parse(ctx context.Context, src []byte, oldTree *sitter.Tree) (*sitter.Tree, error) {
	tree, err := p.ts.ParseString(ctx, oldTree, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}

	if tree.RootNode().IsNull() {
		return nil, ErrNoRootNode
	}

	return tree, nil
}
