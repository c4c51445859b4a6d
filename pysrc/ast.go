package pysrc

// Node is any element of the parsed stub tree.
type Node interface {
	node()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// ---- expressions ----

// Name is a bare identifier. Start and End are byte offsets into the parsed
// source, so identifier rewriting can splice replacements into the original
// text without re-rendering anything else.
type Name struct {
	ID    string
	Start int
	End   int
}

// Attribute is a dotted access, e.g. typing.Optional.
type Attribute struct {
	Value Expr
	Attr  string
}

// Subscript is an indexed expression, e.g. List[int] or Dict[str, int].
type Subscript struct {
	Value Expr
	Index Expr
}

// Call is a call expression appearing in default values.
type Call struct {
	Func     Expr
	Args     []Expr
	Keywords []KeywordArg
}

// KeywordArg is one name=value argument of a Call.
type KeywordArg struct {
	Name  string
	Value Expr
}

// TupleExpr is a comma-separated expression list.
type TupleExpr struct {
	Elts []Expr
}

// ListExpr is a bracketed list literal.
type ListExpr struct {
	Elts []Expr
}

// DictExpr is a dict literal; Keys[i] pairs with Values[i].
type DictExpr struct {
	Keys   []Expr
	Values []Expr
}

// StringLit is a string literal with its raw source spelling (quotes kept).
type StringLit struct {
	Raw string
}

// NumberLit is a numeric literal with its raw source spelling.
type NumberLit struct {
	Raw string
}

// EllipsisLit is the literal "...".
type EllipsisLit struct{}

// ConstLit is None, True or False.
type ConstLit struct {
	Raw string
}

// UnaryOp is a prefix operator application.
type UnaryOp struct {
	Op      string
	Operand Expr
}

// BinOp is an infix operator application (the stub grammar needs "|" for
// PEP 604 unions plus "+" and "-" in defaults).
type BinOp struct {
	Left  Expr
	Op    string
	Right Expr
}

// Starred is *expr or **expr in call arguments.
type Starred struct {
	Value  Expr
	Double bool
}

func (*Name) exprNode()        {}
func (*Attribute) exprNode()   {}
func (*Subscript) exprNode()   {}
func (*Call) exprNode()        {}
func (*TupleExpr) exprNode()   {}
func (*ListExpr) exprNode()    {}
func (*DictExpr) exprNode()    {}
func (*StringLit) exprNode()   {}
func (*NumberLit) exprNode()   {}
func (*EllipsisLit) exprNode() {}
func (*ConstLit) exprNode()    {}
func (*UnaryOp) exprNode()     {}
func (*BinOp) exprNode()       {}
func (*Starred) exprNode()     {}

func (*Name) node()        {}
func (*Attribute) node()   {}
func (*Subscript) node()   {}
func (*Call) node()        {}
func (*TupleExpr) node()   {}
func (*ListExpr) node()    {}
func (*DictExpr) node()    {}
func (*StringLit) node()   {}
func (*NumberLit) node()   {}
func (*EllipsisLit) node() {}
func (*ConstLit) node()    {}
func (*UnaryOp) node()     {}
func (*BinOp) node()       {}
func (*Starred) node()     {}

// ---- statements ----

// ModuleNode is the root of a parsed stub body.
type ModuleNode struct {
	Body []Stmt
}

// ExprStmt is a bare expression statement (docstrings, "...").
type ExprStmt struct {
	Value Expr
}

// PassStmt is the pass statement.
type PassStmt struct{}

// AnnAssign is "name: annotation" with an optional "= value" part.
type AnnAssign struct {
	Target     *Name
	Annotation Expr
	Value      Expr // nil when absent
}

// ImportStmt is "import module [as alias]".
type ImportStmt struct {
	Module string
	Alias  string
}

// ImportedName is one entry of an ImportFromStmt.
type ImportedName struct {
	Name  string
	Alias string
}

// ImportFromStmt is "from module import a [as b], c ...".
type ImportFromStmt struct {
	Module string
	Names  []ImportedName
}

// Param is one parameter of a FunctionDef.
type Param struct {
	Name       string
	Annotation Expr // nil when absent
	Default    Expr // nil when absent
	Star       ParamStar
}

// ParamStar marks the special parameter forms.
type ParamStar int

const (
	ParamPlain      ParamStar = iota
	ParamStarArgs             // *args
	ParamKwargs               // **kwargs
	ParamBareStar             // keyword-only marker "*"
	ParamSlash                // positional-only marker "/"
)

// FunctionDef is a function or method declaration.
type FunctionDef struct {
	Name    string
	Params  []*Param
	Returns Expr // nil when absent
	Body    []Stmt
}

// ClassDef is a class declaration with an indented body.
type ClassDef struct {
	Name  string
	Bases []Expr
	Body  []Stmt
}

func (*ModuleNode) node()     {}
func (*ExprStmt) node()       {}
func (*PassStmt) node()       {}
func (*AnnAssign) node()      {}
func (*ImportStmt) node()     {}
func (*ImportFromStmt) node() {}
func (*FunctionDef) node()    {}
func (*ClassDef) node()       {}

func (*ExprStmt) stmtNode()       {}
func (*PassStmt) stmtNode()       {}
func (*AnnAssign) stmtNode()      {}
func (*ImportStmt) stmtNode()     {}
func (*ImportFromStmt) stmtNode() {}
func (*FunctionDef) stmtNode()    {}
func (*ClassDef) stmtNode()       {}

// Walk traverses the tree rooted at n in depth-first pre-order, calling fn
// for every node. If fn returns false the node's children are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch v := n.(type) {
	case *ModuleNode:
		for _, s := range v.Body {
			Walk(s, fn)
		}
	case *ExprStmt:
		Walk(v.Value, fn)
	case *AnnAssign:
		Walk(v.Target, fn)
		Walk(v.Annotation, fn)
		if v.Value != nil {
			Walk(v.Value, fn)
		}
	case *FunctionDef:
		for _, p := range v.Params {
			if p.Annotation != nil {
				Walk(p.Annotation, fn)
			}
			if p.Default != nil {
				Walk(p.Default, fn)
			}
		}
		if v.Returns != nil {
			Walk(v.Returns, fn)
		}
		for _, s := range v.Body {
			Walk(s, fn)
		}
	case *ClassDef:
		for _, b := range v.Bases {
			Walk(b, fn)
		}
		for _, s := range v.Body {
			Walk(s, fn)
		}
	case *Attribute:
		Walk(v.Value, fn)
	case *Subscript:
		Walk(v.Value, fn)
		Walk(v.Index, fn)
	case *Call:
		Walk(v.Func, fn)
		for _, a := range v.Args {
			Walk(a, fn)
		}
		for _, kw := range v.Keywords {
			Walk(kw.Value, fn)
		}
	case *TupleExpr:
		for _, e := range v.Elts {
			Walk(e, fn)
		}
	case *ListExpr:
		for _, e := range v.Elts {
			Walk(e, fn)
		}
	case *DictExpr:
		for i := range v.Keys {
			Walk(v.Keys[i], fn)
			Walk(v.Values[i], fn)
		}
	case *UnaryOp:
		Walk(v.Operand, fn)
	case *BinOp:
		Walk(v.Left, fn)
		Walk(v.Right, fn)
	case *Starred:
		Walk(v.Value, fn)
	}
}

// CollectNames returns the identifiers of every Name node reachable from n,
// in traversal order, duplicates included.
func CollectNames(n Node) []string {
	var out []string
	Walk(n, func(node Node) bool {
		if name, ok := node.(*Name); ok {
			out = append(out, name.ID)
		}
		return true
	})
	return out
}
