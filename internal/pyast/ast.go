// Package pyast defines the typed Python AST that every later stage of the
// bundler operates on. It is the "typed AST" spec.md assumes a parser
// library hands over; internal/parser/treesitter is the concrete adapter
// that builds one of these trees from a tree-sitter CST.
package pyast

// NodeIndex is a dense, per-module-range stable identifier assigned to
// every AST node before analysis runs. See Range.
type NodeIndex int64

// Range is the width of a single module's NodeIndex space: [id*Range, (id+1)*Range).
const Range = 1_000_000

// Span is a byte range into the module's original source text.
type Span struct {
	Start int
	End   int
}

// Node is satisfied by every statement and expression type. Index is set by
// the indexer pass and is immutable thereafter.
type Node interface {
	nodeIndex() NodeIndex
	setNodeIndex(NodeIndex)
	span() Span
}

type base struct {
	Idx NodeIndex
	Pos Span
}

func (b *base) nodeIndex() NodeIndex     { return b.Idx }
func (b *base) setNodeIndex(i NodeIndex) { b.Idx = i }
func (b *base) span() Span               { return b.Pos }
func (b *base) setSpan(s Span)           { b.Pos = s }

// Index returns a node's stable index. Before indexing it returns the zero
// NodeIndex.
func Index(n Node) NodeIndex { return n.nodeIndex() }

// SetIndex assigns a node's stable index. Used only by the indexer.
func SetIndex(n Node, i NodeIndex) { n.setNodeIndex(i) }

type spanSetter interface{ setSpan(Span) }

// SetSpan assigns a node's source byte range. Used by parser
// implementations (internal/parser/treesitter) while building a tree from
// a CST; every Node embeds base, which implements this.
func SetSpan(n Node, s Span) {
	if ss, ok := n.(spanSetter); ok {
		ss.setSpan(s)
	}
}

// SpanOf returns a node's byte range.
func SpanOf(n Node) Span { return n.span() }

// Module is the root of a parsed file.
type Module struct {
	base
	Docstring string // "" if none; stripped of surrounding quotes
	Body      []Stmt
}

// Stmt is any top-level-or-nested Python statement.
type Stmt interface {
	Node
	stmtNode()
}

type exprBase struct{ base }

// Expr is any Python expression.
type Expr interface {
	Node
	exprNode()
}

func (exprBase) exprNode() {}

type stmtBase struct{ base }

func (stmtBase) stmtNode() {}

// ---- Import statements ----

// Alias is a single imported name with an optional local binding.
type Alias struct {
	Name  string // dotted name (Import) or bare name (ImportFrom)
	AsOf  string // alias; "" if none
	Local string // effective local binding name (AsOf, or Name/rightmost component)
}

type Import struct {
	stmtBase
	Names []Alias
}

type ImportFrom struct {
	stmtBase
	Module string // "" for a bare "from . import x"
	Names  []Alias
	Level  int // number of leading dots
}

// ---- Definitions ----

type Parameter struct {
	Name    string
	Default Expr // nil if none
	Kind    ParamKind
}

type ParamKind int

const (
	ParamPositional ParamKind = iota
	ParamKeywordOnly
	ParamVarArgs
	ParamKwArgs
)

type FunctionDef struct {
	stmtBase
	Name       string
	Params     []Parameter
	Decorators []Expr
	Returns    Expr // return annotation, nil if none
	Body       []Stmt
	IsAsync    bool
}

type ClassDef struct {
	stmtBase
	Name       string
	Bases      []Expr
	Keywords   []Keyword
	Decorators []Expr
	Body       []Stmt
}

type Keyword struct {
	Name  string // "" for **kwargs
	Value Expr
}

// ---- Simple statements ----

type Assign struct {
	stmtBase
	Targets []Expr
	Value   Expr
}

type AnnAssign struct {
	stmtBase
	Target     Expr
	Annotation Expr
	Value      Expr // nil if unassigned
}

type AugAssign struct {
	stmtBase
	Target Expr
	Op     string
	Value  Expr
}

type ExprStmt struct {
	stmtBase
	Value Expr
}

type Return struct {
	stmtBase
	Value Expr
}

type Pass struct{ stmtBase }

type Global struct {
	stmtBase
	Names []string
}

type Nonlocal struct {
	stmtBase
	Names []string
}

type Delete struct {
	stmtBase
	Targets []Expr
}

type Raise struct {
	stmtBase
	Exc   Expr
	Cause Expr
}

type Assert struct {
	stmtBase
	Test Expr
	Msg  Expr
}

// ---- Compound statements ----

type If struct {
	stmtBase
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

type For struct {
	stmtBase
	Target  Expr
	Iter    Expr
	Body    []Stmt
	Orelse  []Stmt
	IsAsync bool
}

type While struct {
	stmtBase
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

type WithItem struct {
	ContextExpr Expr
	OptionalVar Expr // nil if none
}

type With struct {
	stmtBase
	Items   []WithItem
	Body    []Stmt
	IsAsync bool
}

type ExceptHandler struct {
	Type Expr // nil for bare except
	Name string
	Body []Stmt
}

type Try struct {
	stmtBase
	Body     []Stmt
	Handlers []ExceptHandler
	Orelse   []Stmt
	Finally  []Stmt
}

type MatchCase struct {
	Pattern Expr
	Guard   Expr
	Body    []Stmt
}

type Match struct {
	stmtBase
	Subject Expr
	Cases   []MatchCase
}

// ---- Expressions ----

type Name struct {
	exprBase
	Id string
}

type Attribute struct {
	exprBase
	Value Expr
	Attr  string
}

type Call struct {
	exprBase
	Func     Expr
	Args     []Expr
	Keywords []Keyword
}

type Constant struct {
	exprBase
	Kind  ConstKind
	Value string // raw literal text as it appeared in source (preserves quoting/triple-quoting)
}

type ConstKind int

const (
	ConstNone ConstKind = iota
	ConstBool
	ConstInt
	ConstFloat
	ConstStr
	ConstFString
	ConstBytes
	ConstEllipsis
)

type Tuple struct {
	exprBase
	Elts []Expr
}

type ListExpr struct {
	exprBase
	Elts []Expr
}

type SetExpr struct {
	exprBase
	Elts []Expr
}

type DictExpr struct {
	exprBase
	Keys   []Expr // nil entry = **value unpacking
	Values []Expr
}

type BinOp struct {
	exprBase
	Left  Expr
	Op    string
	Right Expr
}

type BoolOp struct {
	exprBase
	Op     string // "and" | "or"
	Values []Expr
}

type UnaryOp struct {
	exprBase
	Op      string
	Operand Expr
}

type Compare struct {
	exprBase
	Left        Expr
	Ops         []string
	Comparators []Expr
}

type Lambda struct {
	exprBase
	Params []Parameter
	Body   Expr
}

type IfExp struct {
	exprBase
	Test   Expr
	Body   Expr
	Orelse Expr
}

type Subscript struct {
	exprBase
	Value Expr
	Slice Expr
}

type Starred struct {
	exprBase
	Value Expr
}

// Comprehension covers list/set/dict/generator comprehensions.
type Comprehension struct {
	Target Expr
	Iter   Expr
	Ifs    []Expr
	Async  bool
}

type ListComp struct {
	exprBase
	Elt        Expr
	Generators []Comprehension
}

type SetComp struct {
	exprBase
	Elt        Expr
	Generators []Comprehension
}

type DictComp struct {
	exprBase
	Key        Expr
	Value      Expr
	Generators []Comprehension
}

type GeneratorExp struct {
	exprBase
	Elt        Expr
	Generators []Comprehension
}

type JoinedStr struct {
	exprBase
	Values []Expr // Constant or FormattedValue
}

type FormattedValue struct {
	exprBase
	Value      Expr
	FormatSpec Expr
}
