// Package ast defines the abstract syntax tree for Solisp programs as produced by the parser.
// The verification engine consumes this tree read-only; it never mutates nodes.
package ast

import (
	"fmt"
	"math/big"
)

// SourceLocation describes the position of a node within its originating source file.
type SourceLocation struct {
	// File describes the path of the source file the node originated from.
	File string `json:"file"`

	// Line describes the one-indexed line number of the node.
	Line int `json:"line"`

	// Column describes the one-indexed column number of the node.
	Column int `json:"column"`
}

// String returns the location as "file:line:column".
func (l *SourceLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Node is the interface implemented by every AST node.
type Node interface {
	// Location returns the source location of the node, or nil if it is synthetic.
	Location() *SourceLocation
}

// Program describes a parsed Solisp compilation unit as an ordered list of top-level statements.
type Program struct {
	// Statements describes the top-level statements of the program, in source order.
	Statements []Statement
}

// Statement is the interface implemented by all statement nodes.
type Statement interface {
	Node
	statementNode()
}

// Expression is the interface implemented by all expression nodes.
type Expression interface {
	Node
	expressionNode()
}

// baseNode provides the shared location storage for AST nodes.
type baseNode struct {
	// Loc describes where in the source this node was parsed from. Nil for synthetic nodes.
	Loc *SourceLocation
}

// Location returns the source location of the node, or nil if it is synthetic.
func (n *baseNode) Location() *SourceLocation { return n.Loc }

// ExpressionStatement describes a statement which evaluates an expression for its effects.
type ExpressionStatement struct {
	baseNode

	// Expr describes the expression to evaluate.
	Expr Expression
}

func (s *ExpressionStatement) statementNode() {}

// LetStatement describes the binding of a new variable, e.g. (let x 5) or
// (let (x : (refined u64 v (> v 0))) amount).
type LetStatement struct {
	baseNode

	// Name describes the variable being bound.
	Name string

	// Value describes the expression producing the bound value.
	Value Expression

	// Type optionally describes a type annotation attached to the binding.
	Type *TypeAnnotation
}

func (s *LetStatement) statementNode() {}

// AssignStatement describes mutation of an existing binding, e.g. (set! x (+ x 1)).
type AssignStatement struct {
	baseNode

	// Name describes the variable being assigned.
	Name string

	// Value describes the expression producing the new value.
	Value Expression
}

func (s *AssignStatement) statementNode() {}

// IfStatement describes a two-armed conditional.
type IfStatement struct {
	baseNode

	// Condition describes the branch condition.
	Condition Expression

	// Then describes the statements executed when the condition holds.
	Then []Statement

	// Else describes the statements executed when the condition does not hold. May be empty.
	Else []Statement
}

func (s *IfStatement) statementNode() {}

// GuardStatement describes an early-exit guard, e.g. (guard (> balance amount) (abort)).
// The Else branch runs when the condition fails; when it succeeds, the condition is
// established for the remainder of the enclosing block.
type GuardStatement struct {
	baseNode

	// Condition describes the guarded condition.
	Condition Expression

	// Else describes the failure branch, executed when the condition does not hold.
	Else []Statement
}

func (s *GuardStatement) statementNode() {}

// WhileStatement describes a condition-driven loop, optionally annotated with invariants.
type WhileStatement struct {
	baseNode

	// Condition describes the loop condition.
	Condition Expression

	// Body describes the loop body.
	Body []Statement

	// Invariants describes explicitly annotated loop invariants. Absent annotations,
	// no inductive proof obligations are generated for the loop.
	Invariants []Expression
}

func (s *WhileStatement) statementNode() {}

// ForStatement describes a counted loop over the half-open range [From, To).
type ForStatement struct {
	baseNode

	// Variable describes the loop counter binding.
	Variable string

	// From describes the inclusive lower bound expression.
	From Expression

	// To describes the exclusive upper bound expression.
	To Expression

	// Body describes the loop body.
	Body []Statement

	// Invariants describes explicitly annotated loop invariants.
	Invariants []Expression
}

func (s *ForStatement) statementNode() {}

// FunctionStatement describes a named function definition.
type FunctionStatement struct {
	baseNode

	// Name describes the function name.
	Name string

	// Params describes the parameter names, in order.
	Params []string

	// Body describes the function body.
	Body []Statement
}

func (s *FunctionStatement) statementNode() {}

// ReturnStatement describes an early return, with an optional value.
type ReturnStatement struct {
	baseNode

	// Value describes the returned expression, or nil for a bare return.
	Value Expression
}

func (s *ReturnStatement) statementNode() {}

// BlockStatement describes an explicit statement grouping, e.g. (begin ...).
type BlockStatement struct {
	baseNode

	// Statements describes the grouped statements, in order.
	Statements []Statement
}

func (s *BlockStatement) statementNode() {}

// IntLiteral describes an integer literal. Values are kept as big integers so that
// literals outside the 64-bit machine word range survive parsing intact.
type IntLiteral struct {
	baseNode

	// Value describes the literal value.
	Value *big.Int
}

func (e *IntLiteral) expressionNode() {}

// NewIntLiteral returns an IntLiteral for the provided int64 value.
func NewIntLiteral(value int64) *IntLiteral {
	return &IntLiteral{Value: big.NewInt(value)}
}

// BoolLiteral describes a boolean literal.
type BoolLiteral struct {
	baseNode

	// Value describes the literal value.
	Value bool
}

func (e *BoolLiteral) expressionNode() {}

// StringLiteral describes a string literal, used for e.g. PDA seeds.
type StringLiteral struct {
	baseNode

	// Value describes the literal value.
	Value string
}

func (e *StringLiteral) expressionNode() {}

// Identifier describes a reference to a named binding.
type Identifier struct {
	baseNode

	// Name describes the referenced binding.
	Name string
}

func (e *Identifier) expressionNode() {}

// NewIdentifier returns an Identifier for the provided name.
func NewIdentifier(name string) *Identifier {
	return &Identifier{Name: name}
}

// BinaryExpr describes a binary operation.
type BinaryExpr struct {
	baseNode

	// Op describes the operator.
	Op BinaryOp

	// Left describes the left operand.
	Left Expression

	// Right describes the right operand.
	Right Expression
}

func (e *BinaryExpr) expressionNode() {}

// UnaryExpr describes a unary operation.
type UnaryExpr struct {
	baseNode

	// Op describes the operator.
	Op UnaryOp

	// Operand describes the operand.
	Operand Expression
}

func (e *UnaryExpr) expressionNode() {}

// CallExpr describes an application of a named function, builtin, or runtime syscall.
type CallExpr struct {
	baseNode

	// Callee describes the name being applied.
	Callee string

	// Args describes the argument expressions, in order.
	Args []Expression
}

func (e *CallExpr) expressionNode() {}

// IndexExpr describes an indexed access, e.g. (nth arr i) or account-table indexing.
type IndexExpr struct {
	baseNode

	// Array describes the indexed expression, typically an Identifier.
	Array Expression

	// Index describes the index expression.
	Index Expression
}

func (e *IndexExpr) expressionNode() {}

// ArrayLiteral describes an array construction with a statically known element count.
type ArrayLiteral struct {
	baseNode

	// Elements describes the element expressions, in order.
	Elements []Expression
}

func (e *ArrayLiteral) expressionNode() {}

// TypeAnnotation describes a type ascription attached to a binding. The verification
// engine treats annotations as opaque except for their refinement predicates.
type TypeAnnotation struct {
	baseNode

	// Name describes the base type name, e.g. "u64".
	Name string

	// Refinement optionally describes a refinement narrowing the base type.
	Refinement *RefinedTypeExpr
}

func (e *TypeAnnotation) expressionNode() {}

// RefinedTypeExpr describes a refinement type: a base type narrowed by a boolean
// predicate over a bound variable, e.g. (refined u64 v (> v 0)).
type RefinedTypeExpr struct {
	baseNode

	// BaseType describes the underlying type name.
	BaseType string

	// Variable describes the bound variable the predicate ranges over.
	Variable string

	// Predicate describes the refinement predicate. The verification engine treats it
	// as an opaque boolean expression produced by the type checker.
	Predicate Expression
}

func (e *RefinedTypeExpr) expressionNode() {}
