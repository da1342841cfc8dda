// Package ast defines the Abstract Syntax Tree types for JavaScript modules.
//
// The AST is designed to be:
// - Closed: every node kind implements exactly one of the marker interfaces
//   (Stmt, Expr, Binding), so consumers use exhaustive type switches
// - Addressable: identifiers carry a stable NodeID assigned at parse time,
//   letting side tables (scopes, bindings, references) refer to nodes by id
// - Transformable: supports in-place modifications by the macro expander
//   and the dead code eliminator
package ast

import "github.com/HugoDaniel/envonly/internal/lexer"

// ----------------------------------------------------------------------------
// Source Location
// ----------------------------------------------------------------------------

// Loc represents a location in source code.
type Loc struct {
	Start int32 // Byte offset of start
}

// Range represents a range in source code.
type Range struct {
	Loc Loc
	Len int32
}

// End returns the byte offset just past the range.
func (r Range) End() int32 {
	return r.Loc.Start + r.Len
}

// NodeID identifies an identifier node. IDs are unique within a module and
// never reused, so they stay valid across tree mutations.
type NodeID uint32

// NoNode is the zero NodeID; parsed identifiers never use it.
const NoNode NodeID = 0

// ----------------------------------------------------------------------------
// Module
// ----------------------------------------------------------------------------

// Module is the root of a parsed source file.
type Module struct {
	Source   string
	Hashbang string
	Body     []Stmt

	// Leading comments attached to statements.
	Comments map[Stmt][]lexer.Comment

	// NextID is the next unused NodeID.
	NextID NodeID
}

// NewID allocates a fresh NodeID.
func (m *Module) NewID() NodeID {
	m.NextID++
	return m.NextID
}

// NewUndefined returns a reference to the global "undefined" at loc.
func (m *Module) NewUndefined(loc Loc) *IdentExpr {
	return &IdentExpr{Loc: loc, Name: "undefined", ID: m.NewID()}
}

// ----------------------------------------------------------------------------
// Marker Interfaces
// ----------------------------------------------------------------------------

// Node is implemented by every tree node.
type Node interface {
	Start() Loc
}

// Stmt is a statement or module-level declaration.
type Stmt interface {
	Node
	isStmt()
}

// Expr is an expression.
type Expr interface {
	Node
	isExpr()
}

// Binding is a binding pattern: the left-hand side of a declaration or a
// parameter.
type Binding interface {
	Node
	isBinding()
}

// ----------------------------------------------------------------------------
// Binding Patterns
// ----------------------------------------------------------------------------

// IdentBinding declares a single name.
type IdentBinding struct {
	Loc  Loc
	Name string
	ID   NodeID
}

// ObjectBinding is an object destructuring pattern.
type ObjectBinding struct {
	Loc   Loc
	Props []*BindingProp
}

// BindingProp is a property of an object pattern. A rest element has
// Rest set and only Value. Keys follow the same convention as Property.
type BindingProp struct {
	Loc       Loc
	Key       Expr
	Computed  bool
	Shorthand bool
	Rest      bool
	Value     Binding
	Default   Expr
}

// ArrayBinding is an array destructuring pattern. Nil items are holes.
type ArrayBinding struct {
	Loc   Loc
	Items []*BindingItem
}

// BindingItem is an element of an array pattern.
type BindingItem struct {
	Value   Binding
	Default Expr
	Rest    bool
}

func (b *IdentBinding) Start() Loc  { return b.Loc }
func (b *ObjectBinding) Start() Loc { return b.Loc }
func (b *ArrayBinding) Start() Loc  { return b.Loc }

func (*IdentBinding) isBinding()  {}
func (*ObjectBinding) isBinding() {}
func (*ArrayBinding) isBinding()  {}

// ----------------------------------------------------------------------------
// Functions and Classes
// ----------------------------------------------------------------------------

// Param is a function parameter.
type Param struct {
	Binding Binding
	Default Expr
	Rest    bool
}

// Function is shared by declarations, expressions, and methods.
type Function struct {
	Loc       Loc
	Name      *IdentBinding // nil for anonymous functions and methods
	Params    []*Param
	Body      []Stmt
	Async     bool
	Generator bool
	End       int32 // Byte offset of the closing brace
}

// Class is shared by class declarations and expressions.
type Class struct {
	Loc     Loc
	Name    *IdentBinding
	Extends Expr
	Members []*Property
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// VarKind is the keyword of a variable declaration.
type VarKind uint8

const (
	VarVar VarKind = iota
	VarLet
	VarConst
)

func (k VarKind) String() string {
	switch k {
	case VarLet:
		return "let"
	case VarConst:
		return "const"
	}
	return "var"
}

// Declarator is one "binding = init" entry of a variable declaration.
type Declarator struct {
	Loc     Loc
	Binding Binding
	Init    Expr
}

// VarDecl is a var, let, or const declaration.
type VarDecl struct {
	Loc   Loc
	Kind  VarKind
	Decls []*Declarator
}

// FunctionDecl is a function declaration.
type FunctionDecl struct {
	Loc Loc
	Fn  *Function
}

// ClassDecl is a class declaration.
type ClassDecl struct {
	Loc   Loc
	Class *Class
}

// ImportKind distinguishes import specifier forms.
type ImportKind uint8

const (
	ImportNamed     ImportKind = iota // import { a as b }
	ImportDefault                     // import a
	ImportNamespace                   // import * as a
)

// ImportSpec is one specifier of an import declaration.
type ImportSpec struct {
	Loc      Loc
	Kind     ImportKind
	Imported string // Only for ImportNamed
	// ImportedIsString is set for arbitrary module namespace names:
	// import { "a-b" as c }
	ImportedIsString bool
	Local            *IdentBinding
}

// ImportAttribute is a "with { type: 'json' }" entry.
type ImportAttribute struct {
	Key   string
	Value *StringLit
}

// ImportDecl is an import declaration. A declaration with no specifiers
// and no braces is a side-effect import.
type ImportDecl struct {
	Loc        Loc
	Specs      []*ImportSpec
	Source     *StringLit
	Attributes []*ImportAttribute
	// HadBraces records "import {} from 'x'", which is not a side-effect import.
	HadBraces bool
}

// ExportSpec is one entry of "export { local as exported }". Local is a
// reference for local exports and nil for re-exports.
type ExportSpec struct {
	Loc              Loc
	Local            *IdentExpr
	LocalName        string
	LocalIsString    bool
	Exported         string
	ExportedIsString bool
}

// ExportNamedDecl covers "export <declaration>", "export { ... }", and
// "export { ... } from 'x'".
type ExportNamedDecl struct {
	Loc        Loc
	Decl       Stmt // *VarDecl, *FunctionDecl, or *ClassDecl
	Specs      []*ExportSpec
	Source     *StringLit
	Attributes []*ImportAttribute
}

// ExportDefaultDecl is "export default ...". Exactly one of Decl and Expr
// is set.
type ExportDefaultDecl struct {
	Loc  Loc
	Decl Stmt // *FunctionDecl or *ClassDecl, possibly anonymous
	Expr Expr
}

// ExportAllDecl is "export * from 'x'" or "export * as ns from 'x'".
type ExportAllDecl struct {
	Loc           Loc
	Alias         string
	AliasIsString bool
	Source        *StringLit
	Attributes    []*ImportAttribute
}

type ExprStmt struct {
	Loc  Loc
	Expr Expr
}

type BlockStmt struct {
	Loc  Loc
	Body []Stmt
}

type EmptyStmt struct {
	Loc Loc
}

type IfStmt struct {
	Loc  Loc
	Test Expr
	Yes  Stmt
	No   Stmt
}

// ForStmt is a C-style for loop. Init is a *VarDecl, an *ExprStmt, or nil.
type ForStmt struct {
	Loc    Loc
	Init   Stmt
	Test   Expr
	Update Expr
	Body   Stmt
}

// ForInStmt is "for (left in right)". Left is a *VarDecl with a single
// declarator or an *ExprStmt holding the assignment target.
type ForInStmt struct {
	Loc   Loc
	Left  Stmt
	Right Expr
	Body  Stmt
}

// ForOfStmt is "for (left of right)", optionally "for await".
type ForOfStmt struct {
	Loc   Loc
	Await bool
	Left  Stmt
	Right Expr
	Body  Stmt
}

type WhileStmt struct {
	Loc  Loc
	Test Expr
	Body Stmt
}

type DoWhileStmt struct {
	Loc  Loc
	Body Stmt
	Test Expr
}

type ReturnStmt struct {
	Loc Loc
	Arg Expr
}

type ThrowStmt struct {
	Loc Loc
	Arg Expr
}

type BreakStmt struct {
	Loc   Loc
	Label string
}

type ContinueStmt struct {
	Loc   Loc
	Label string
}

// TryStmt has at least one of Catch and Finally.
type TryStmt struct {
	Loc        Loc
	Block      *BlockStmt
	CatchParam Binding // nil for "catch {"
	Catch      *BlockStmt
	Finally    *BlockStmt
}

type SwitchStmt struct {
	Loc   Loc
	Disc  Expr
	Cases []*SwitchCase
}

// SwitchCase is a case clause; Test is nil for "default".
type SwitchCase struct {
	Loc  Loc
	Test Expr
	Body []Stmt
}

type LabeledStmt struct {
	Loc   Loc
	Label string
	Body  Stmt
}

type DebuggerStmt struct {
	Loc Loc
}

func (s *VarDecl) Start() Loc           { return s.Loc }
func (s *FunctionDecl) Start() Loc      { return s.Loc }
func (s *ClassDecl) Start() Loc         { return s.Loc }
func (s *ImportDecl) Start() Loc        { return s.Loc }
func (s *ExportNamedDecl) Start() Loc   { return s.Loc }
func (s *ExportDefaultDecl) Start() Loc { return s.Loc }
func (s *ExportAllDecl) Start() Loc     { return s.Loc }
func (s *ExprStmt) Start() Loc          { return s.Loc }
func (s *BlockStmt) Start() Loc         { return s.Loc }
func (s *EmptyStmt) Start() Loc         { return s.Loc }
func (s *IfStmt) Start() Loc            { return s.Loc }
func (s *ForStmt) Start() Loc           { return s.Loc }
func (s *ForInStmt) Start() Loc         { return s.Loc }
func (s *ForOfStmt) Start() Loc         { return s.Loc }
func (s *WhileStmt) Start() Loc         { return s.Loc }
func (s *DoWhileStmt) Start() Loc       { return s.Loc }
func (s *ReturnStmt) Start() Loc        { return s.Loc }
func (s *ThrowStmt) Start() Loc         { return s.Loc }
func (s *BreakStmt) Start() Loc         { return s.Loc }
func (s *ContinueStmt) Start() Loc      { return s.Loc }
func (s *TryStmt) Start() Loc           { return s.Loc }
func (s *SwitchStmt) Start() Loc        { return s.Loc }
func (s *LabeledStmt) Start() Loc       { return s.Loc }
func (s *DebuggerStmt) Start() Loc      { return s.Loc }

func (*VarDecl) isStmt()           {}
func (*FunctionDecl) isStmt()      {}
func (*ClassDecl) isStmt()         {}
func (*ImportDecl) isStmt()        {}
func (*ExportNamedDecl) isStmt()   {}
func (*ExportDefaultDecl) isStmt() {}
func (*ExportAllDecl) isStmt()     {}
func (*ExprStmt) isStmt()          {}
func (*BlockStmt) isStmt()         {}
func (*EmptyStmt) isStmt()         {}
func (*IfStmt) isStmt()            {}
func (*ForStmt) isStmt()           {}
func (*ForInStmt) isStmt()         {}
func (*ForOfStmt) isStmt()         {}
func (*WhileStmt) isStmt()         {}
func (*DoWhileStmt) isStmt()       {}
func (*ReturnStmt) isStmt()        {}
func (*ThrowStmt) isStmt()         {}
func (*BreakStmt) isStmt()         {}
func (*ContinueStmt) isStmt()      {}
func (*TryStmt) isStmt()           {}
func (*SwitchStmt) isStmt()        {}
func (*LabeledStmt) isStmt()       {}
func (*DebuggerStmt) isStmt()      {}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// IdentExpr is an identifier in expression position.
type IdentExpr struct {
	Loc  Loc
	Name string
	ID   NodeID
}

// NumberLit keeps the raw text so the printer reproduces it exactly.
type NumberLit struct {
	Loc Loc
	Raw string
}

type BigIntLit struct {
	Loc Loc
	Raw string
}

// StringLit is a string literal. Raw includes the quotes and is empty for
// synthesized strings.
type StringLit struct {
	Loc   Loc
	Value string
	Raw   string
}

type RegExpLit struct {
	Loc Loc
	Raw string
}

type BoolLit struct {
	Loc   Loc
	Value bool
}

type NullLit struct {
	Loc Loc
}

type ThisExpr struct {
	Loc Loc
}

type SuperExpr struct {
	Loc Loc
}

// TemplateLit is a template literal, optionally tagged. Quasis holds the
// raw text pieces; len(Quasis) == len(Exprs)+1.
type TemplateLit struct {
	Loc    Loc
	Tag    Expr
	Quasis []string
	Exprs  []Expr
}

// ArrayExpr is an array literal. Nil items are holes.
type ArrayExpr struct {
	Loc   Loc
	Items []Expr
}

// SpreadExpr is "...arg" in array literals, call arguments, and objects.
type SpreadExpr struct {
	Loc Loc
	Arg Expr
}

// PropKind distinguishes object literal and class members.
type PropKind uint8

const (
	PropInit        PropKind = iota // key: value (or shorthand)
	PropMethod                      // key() {}
	PropGet                         // get key() {}
	PropSet                         // set key(v) {}
	PropSpread                      // ...value (object literals only)
	PropField                       // class field: key = value
	PropStaticBlock                 // static { ... } (class only; body in Value as *FunctionExpr)
)

// Property is an object literal member or a class member. Key is nil for
// spreads and static blocks; for non-computed keys it is an *IdentExpr
// whose ID is NoNode (a name, not a reference), a *StringLit, a
// *NumberLit, or a *PrivateName.
type Property struct {
	Loc       Loc
	Kind      PropKind
	Key       Expr
	Computed  bool
	Shorthand bool
	Static    bool
	Value     Expr // *FunctionExpr for methods and accessors
}

type ObjectExpr struct {
	Loc   Loc
	Props []*Property
}

type FunctionExpr struct {
	Loc Loc
	Fn  *Function
}

// ArrowExpr is an arrow function. Exactly one of Body and ExprBody is
// meaningful, selected by IsExprBody.
type ArrowExpr struct {
	Loc        Loc
	Params     []*Param
	Body       []Stmt
	ExprBody   Expr
	IsExprBody bool
	Async      bool
	End        int32
}

type ClassExpr struct {
	Loc   Loc
	Class *Class
}

// PrivateName is "#name" as a class key or in "#name in obj".
type PrivateName struct {
	Loc  Loc
	Name string // Includes the leading '#'
}

type UnaryExpr struct {
	Loc Loc
	Op  UnaryOp
	Arg Expr
}

// UpdateExpr is "++x", "x--", and friends.
type UpdateExpr struct {
	Loc    Loc
	Op     UpdateOp
	Prefix bool
	Arg    Expr
}

type BinaryExpr struct {
	Loc   Loc
	Op    BinaryOp
	Left  Expr
	Right Expr
}

type AssignExpr struct {
	Loc   Loc
	Op    AssignOp
	Left  Expr
	Right Expr
}

type CondExpr struct {
	Loc  Loc
	Test Expr
	Yes  Expr
	No   Expr
}

// CallExpr is a function call. Optional marks "callee?.()" and OptionalChain
// marks a call that continues an optional chain started earlier.
type CallExpr struct {
	Loc           Loc
	Callee        Expr
	Args          []Expr
	Optional      bool
	OptionalChain bool
}

type NewExpr struct {
	Loc    Loc
	Callee Expr
	Args   []Expr
}

// MemberExpr is "object.name" or "object?.name".
type MemberExpr struct {
	Loc           Loc
	Object        Expr
	Name          string // Includes '#' for private names
	NameLoc       Loc
	Optional      bool
	OptionalChain bool
}

// IndexExpr is "object[index]" or "object?.[index]".
type IndexExpr struct {
	Loc           Loc
	Object        Expr
	Index         Expr
	Optional      bool
	OptionalChain bool
}

type AwaitExpr struct {
	Loc Loc
	Arg Expr
}

type YieldExpr struct {
	Loc      Loc
	Arg      Expr
	Delegate bool
}

type SequenceExpr struct {
	Loc   Loc
	Exprs []Expr
}

// MetaProperty is "new.target" or "import.meta".
type MetaProperty struct {
	Loc  Loc
	Meta string
	Prop string
}

// ImportCallExpr is a dynamic "import(source, options)".
type ImportCallExpr struct {
	Loc     Loc
	Arg     Expr
	Options Expr
}

func (e *IdentExpr) Start() Loc      { return e.Loc }
func (e *NumberLit) Start() Loc      { return e.Loc }
func (e *BigIntLit) Start() Loc      { return e.Loc }
func (e *StringLit) Start() Loc      { return e.Loc }
func (e *RegExpLit) Start() Loc      { return e.Loc }
func (e *BoolLit) Start() Loc        { return e.Loc }
func (e *NullLit) Start() Loc        { return e.Loc }
func (e *ThisExpr) Start() Loc       { return e.Loc }
func (e *SuperExpr) Start() Loc      { return e.Loc }
func (e *TemplateLit) Start() Loc    { return e.Loc }
func (e *ArrayExpr) Start() Loc      { return e.Loc }
func (e *SpreadExpr) Start() Loc     { return e.Loc }
func (e *ObjectExpr) Start() Loc     { return e.Loc }
func (e *FunctionExpr) Start() Loc   { return e.Loc }
func (e *ArrowExpr) Start() Loc      { return e.Loc }
func (e *ClassExpr) Start() Loc      { return e.Loc }
func (e *PrivateName) Start() Loc    { return e.Loc }
func (e *UnaryExpr) Start() Loc      { return e.Loc }
func (e *UpdateExpr) Start() Loc     { return e.Loc }
func (e *BinaryExpr) Start() Loc     { return e.Loc }
func (e *AssignExpr) Start() Loc     { return e.Loc }
func (e *CondExpr) Start() Loc       { return e.Loc }
func (e *CallExpr) Start() Loc       { return e.Loc }
func (e *NewExpr) Start() Loc        { return e.Loc }
func (e *MemberExpr) Start() Loc     { return e.Loc }
func (e *IndexExpr) Start() Loc      { return e.Loc }
func (e *AwaitExpr) Start() Loc      { return e.Loc }
func (e *YieldExpr) Start() Loc      { return e.Loc }
func (e *SequenceExpr) Start() Loc   { return e.Loc }
func (e *MetaProperty) Start() Loc   { return e.Loc }
func (e *ImportCallExpr) Start() Loc { return e.Loc }

func (*IdentExpr) isExpr()      {}
func (*NumberLit) isExpr()      {}
func (*BigIntLit) isExpr()      {}
func (*StringLit) isExpr()      {}
func (*RegExpLit) isExpr()      {}
func (*BoolLit) isExpr()        {}
func (*NullLit) isExpr()        {}
func (*ThisExpr) isExpr()       {}
func (*SuperExpr) isExpr()      {}
func (*TemplateLit) isExpr()    {}
func (*ArrayExpr) isExpr()      {}
func (*SpreadExpr) isExpr()     {}
func (*ObjectExpr) isExpr()     {}
func (*FunctionExpr) isExpr()   {}
func (*ArrowExpr) isExpr()      {}
func (*ClassExpr) isExpr()      {}
func (*PrivateName) isExpr()    {}
func (*UnaryExpr) isExpr()      {}
func (*UpdateExpr) isExpr()     {}
func (*BinaryExpr) isExpr()     {}
func (*AssignExpr) isExpr()     {}
func (*CondExpr) isExpr()       {}
func (*CallExpr) isExpr()       {}
func (*NewExpr) isExpr()        {}
func (*MemberExpr) isExpr()     {}
func (*IndexExpr) isExpr()      {}
func (*AwaitExpr) isExpr()      {}
func (*YieldExpr) isExpr()      {}
func (*SequenceExpr) isExpr()   {}
func (*MetaProperty) isExpr()   {}
func (*ImportCallExpr) isExpr() {}

// ----------------------------------------------------------------------------
// Operators
// ----------------------------------------------------------------------------

// UnaryOp represents a prefix unary operator.
type UnaryOp uint8

const (
	UnaryNeg    UnaryOp = iota // -
	UnaryPos                   // +
	UnaryNot                   // !
	UnaryCpl                   // ~
	UnaryTypeof                // typeof
	UnaryVoid                  // void
	UnaryDelete                // delete
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryPos:
		return "+"
	case UnaryNot:
		return "!"
	case UnaryCpl:
		return "~"
	case UnaryTypeof:
		return "typeof"
	case UnaryVoid:
		return "void"
	case UnaryDelete:
		return "delete"
	}
	return "?"
}

// IsKeyword reports whether the operator is spelled as a word.
func (op UnaryOp) IsKeyword() bool {
	return op == UnaryTypeof || op == UnaryVoid || op == UnaryDelete
}

// UpdateOp represents ++ or --.
type UpdateOp uint8

const (
	UpdateInc UpdateOp = iota
	UpdateDec
)

func (op UpdateOp) String() string {
	if op == UpdateDec {
		return "--"
	}
	return "++"
}

// BinaryOp represents a binary operator, including logical operators.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinPow
	BinShl
	BinShr
	BinUShr
	BinBitAnd
	BinBitOr
	BinBitXor
	BinLt
	BinGt
	BinLe
	BinGe
	BinEq
	BinNe
	BinStrictEq
	BinStrictNe
	BinIn
	BinInstanceof
	BinLogicalAnd
	BinLogicalOr
	BinNullish
)

var binaryOpStrings = [...]string{
	BinAdd:        "+",
	BinSub:        "-",
	BinMul:        "*",
	BinDiv:        "/",
	BinRem:        "%",
	BinPow:        "**",
	BinShl:        "<<",
	BinShr:        ">>",
	BinUShr:       ">>>",
	BinBitAnd:     "&",
	BinBitOr:      "|",
	BinBitXor:     "^",
	BinLt:         "<",
	BinGt:         ">",
	BinLe:         "<=",
	BinGe:         ">=",
	BinEq:         "==",
	BinNe:         "!=",
	BinStrictEq:   "===",
	BinStrictNe:   "!==",
	BinIn:         "in",
	BinInstanceof: "instanceof",
	BinLogicalAnd: "&&",
	BinLogicalOr:  "||",
	BinNullish:    "??",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpStrings) {
		return binaryOpStrings[op]
	}
	return "?"
}

// AssignOp represents = and the compound assignment operators.
type AssignOp uint8

const (
	AssignSimple AssignOp = iota // =
	AssignAdd                    // +=
	AssignSub                    // -=
	AssignMul                    // *=
	AssignDiv                    // /=
	AssignRem                    // %=
	AssignPow                    // **=
	AssignShl                    // <<=
	AssignShr                    // >>=
	AssignUShr                   // >>>=
	AssignBitAnd                 // &=
	AssignBitOr                  // |=
	AssignBitXor                 // ^=
	AssignAnd                    // &&=
	AssignOr                     // ||=
	AssignNullish                // ??=
)

var assignOpStrings = [...]string{
	AssignSimple:  "=",
	AssignAdd:     "+=",
	AssignSub:     "-=",
	AssignMul:     "*=",
	AssignDiv:     "/=",
	AssignRem:     "%=",
	AssignPow:     "**=",
	AssignShl:     "<<=",
	AssignShr:     ">>=",
	AssignUShr:    ">>>=",
	AssignBitAnd:  "&=",
	AssignBitOr:   "|=",
	AssignBitXor:  "^=",
	AssignAnd:     "&&=",
	AssignOr:      "||=",
	AssignNullish: "??=",
}

func (op AssignOp) String() string {
	if int(op) < len(assignOpStrings) {
		return assignOpStrings[op]
	}
	return "?"
}

// ----------------------------------------------------------------------------
// Precedence
// ----------------------------------------------------------------------------

// Level is an operator precedence level, lowest first.
type Level uint8

const (
	LLowest Level = iota
	LComma
	LSpread
	LYield
	LAssign
	LConditional
	LNullishCoalescing
	LLogicalOr
	LLogicalAnd
	LBitwiseOr
	LBitwiseXor
	LBitwiseAnd
	LEquals
	LCompare
	LShift
	LAdd
	LMultiply
	LExponentiation
	LPrefix
	LPostfix
	LNew
	LCall
	LMember
)

// Level returns the precedence level of a binary operator.
func (op BinaryOp) Level() Level {
	switch op {
	case BinNullish:
		return LNullishCoalescing
	case BinLogicalOr:
		return LLogicalOr
	case BinLogicalAnd:
		return LLogicalAnd
	case BinBitOr:
		return LBitwiseOr
	case BinBitXor:
		return LBitwiseXor
	case BinBitAnd:
		return LBitwiseAnd
	case BinEq, BinNe, BinStrictEq, BinStrictNe:
		return LEquals
	case BinLt, BinGt, BinLe, BinGe, BinIn, BinInstanceof:
		return LCompare
	case BinShl, BinShr, BinUShr:
		return LShift
	case BinAdd, BinSub:
		return LAdd
	case BinMul, BinDiv, BinRem:
		return LMultiply
	case BinPow:
		return LExponentiation
	}
	return LLowest
}

// IsRightAssociative reports whether chains of op group to the right.
func (op BinaryOp) IsRightAssociative() bool {
	return op == BinPow
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

// BindingIdents calls fn for every identifier declared by b, in source order.
func BindingIdents(b Binding, fn func(*IdentBinding)) {
	switch b := b.(type) {
	case *IdentBinding:
		fn(b)
	case *ObjectBinding:
		for _, prop := range b.Props {
			BindingIdents(prop.Value, fn)
		}
	case *ArrayBinding:
		for _, item := range b.Items {
			if item != nil {
				BindingIdents(item.Value, fn)
			}
		}
	}
}
