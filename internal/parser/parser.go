// Package parser defines the interface spec.md §1 calls an external
// collaborator: something that turns Python source text into the typed
// AST internal/pyast models. internal/parser/treesitter is the concrete
// implementation; everything upstream of parsing (resolver, itemgraph,
// semantic, and so on) depends only on this interface, never on
// tree-sitter directly.
package parser

import "github.com/gocribo/cribo/internal/pyast"

// Parser turns one file's source text into a Module. Path is used only
// for error messages; it carries no semantics for parsing itself.
type Parser interface {
	Parse(path string, source []byte) (*pyast.Module, error)
}
