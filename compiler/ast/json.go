package ast

import (
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
)

// DecodeProgram parses the JSON tree interchange format emitted by the parser front end:
// a {"statements": [...]} object whose nodes are tagged unions discriminated by a "node"
// field.
func DecodeProgram(encoded []byte) (*Program, error) {
	var root struct {
		Statements []json.RawMessage `json:"statements"`
	}
	if err := json.Unmarshal(encoded, &root); err != nil {
		return nil, errors.Wrap(err, "could not parse program")
	}

	program := &Program{}
	for i, raw := range root.Statements {
		statement, err := decodeStatement(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse top-level statement %d", i)
		}
		program.Statements = append(program.Statements, statement)
	}
	return program, nil
}

// jsonNode is the union of every node's fields; which fields are meaningful depends on
// the "node" discriminator.
type jsonNode struct {
	Node       string            `json:"node"`
	Loc        *SourceLocation   `json:"loc"`
	Name       string            `json:"name"`
	Value      json.RawMessage   `json:"value"`
	Type       json.RawMessage   `json:"type"`
	Condition  json.RawMessage   `json:"condition"`
	Then       []json.RawMessage `json:"then"`
	Else       []json.RawMessage `json:"else"`
	Body       []json.RawMessage `json:"body"`
	Invariants []json.RawMessage `json:"invariants"`
	Variable   string            `json:"variable"`
	From       json.RawMessage   `json:"from"`
	To         json.RawMessage   `json:"to"`
	Params     []string          `json:"params"`
	Statements []json.RawMessage `json:"statements"`
	Expr       json.RawMessage   `json:"expr"`
	Op         string            `json:"op"`
	Left       json.RawMessage   `json:"left"`
	Right      json.RawMessage   `json:"right"`
	Operand    json.RawMessage   `json:"operand"`
	Callee     string            `json:"callee"`
	Args       []json.RawMessage `json:"args"`
	Array      json.RawMessage   `json:"array"`
	Index      json.RawMessage   `json:"index"`
	Elements   []json.RawMessage `json:"elements"`
	BaseType   string            `json:"base_type"`
	Predicate  json.RawMessage   `json:"predicate"`
	Refinement json.RawMessage   `json:"refinement"`
}

func decodeStatement(raw json.RawMessage) (Statement, error) {
	var node jsonNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, errors.WithStack(err)
	}
	base := baseNode{Loc: node.Loc}

	switch node.Node {
	case "expr":
		expr, err := decodeExpression(node.Expr)
		if err != nil {
			return nil, err
		}
		return &ExpressionStatement{baseNode: base, Expr: expr}, nil

	case "let":
		value, err := decodeExpression(node.Value)
		if err != nil {
			return nil, err
		}
		annotation, err := decodeTypeAnnotation(node.Type)
		if err != nil {
			return nil, err
		}
		return &LetStatement{baseNode: base, Name: node.Name, Value: value, Type: annotation}, nil

	case "assign":
		value, err := decodeExpression(node.Value)
		if err != nil {
			return nil, err
		}
		return &AssignStatement{baseNode: base, Name: node.Name, Value: value}, nil

	case "if":
		condition, err := decodeExpression(node.Condition)
		if err != nil {
			return nil, err
		}
		thenBranch, err := decodeStatements(node.Then)
		if err != nil {
			return nil, err
		}
		elseBranch, err := decodeStatements(node.Else)
		if err != nil {
			return nil, err
		}
		return &IfStatement{baseNode: base, Condition: condition, Then: thenBranch, Else: elseBranch}, nil

	case "guard":
		condition, err := decodeExpression(node.Condition)
		if err != nil {
			return nil, err
		}
		elseBranch, err := decodeStatements(node.Else)
		if err != nil {
			return nil, err
		}
		return &GuardStatement{baseNode: base, Condition: condition, Else: elseBranch}, nil

	case "while":
		condition, err := decodeExpression(node.Condition)
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(node.Body)
		if err != nil {
			return nil, err
		}
		invariants, err := decodeExpressions(node.Invariants)
		if err != nil {
			return nil, err
		}
		return &WhileStatement{baseNode: base, Condition: condition, Body: body, Invariants: invariants}, nil

	case "for":
		from, err := decodeExpression(node.From)
		if err != nil {
			return nil, err
		}
		to, err := decodeExpression(node.To)
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(node.Body)
		if err != nil {
			return nil, err
		}
		invariants, err := decodeExpressions(node.Invariants)
		if err != nil {
			return nil, err
		}
		return &ForStatement{baseNode: base, Variable: node.Variable, From: from, To: to, Body: body, Invariants: invariants}, nil

	case "function":
		body, err := decodeStatements(node.Body)
		if err != nil {
			return nil, err
		}
		return &FunctionStatement{baseNode: base, Name: node.Name, Params: node.Params, Body: body}, nil

	case "return":
		var value Expression
		if len(node.Value) > 0 {
			var err error
			if value, err = decodeExpression(node.Value); err != nil {
				return nil, err
			}
		}
		return &ReturnStatement{baseNode: base, Value: value}, nil

	case "block":
		statements, err := decodeStatements(node.Statements)
		if err != nil {
			return nil, err
		}
		return &BlockStatement{baseNode: base, Statements: statements}, nil

	default:
		return nil, errors.Errorf("unrecognized statement node %q", node.Node)
	}
}

func decodeExpression(raw json.RawMessage) (Expression, error) {
	if len(raw) == 0 {
		return nil, errors.New("missing expression")
	}
	var node jsonNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, errors.WithStack(err)
	}
	base := baseNode{Loc: node.Loc}

	switch node.Node {
	case "int":
		// Integer literals travel as JSON strings so values beyond the 64-bit machine
		// word survive the trip.
		var text string
		if err := json.Unmarshal(node.Value, &text); err != nil {
			var number int64
			if err = json.Unmarshal(node.Value, &number); err != nil {
				return nil, errors.Wrap(err, "could not parse integer literal")
			}
			return &IntLiteral{baseNode: base, Value: big.NewInt(number)}, nil
		}
		value, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return nil, errors.Errorf("invalid integer literal %q", text)
		}
		return &IntLiteral{baseNode: base, Value: value}, nil

	case "bool":
		var value bool
		if err := json.Unmarshal(node.Value, &value); err != nil {
			return nil, errors.Wrap(err, "could not parse boolean literal")
		}
		return &BoolLiteral{baseNode: base, Value: value}, nil

	case "string":
		var value string
		if err := json.Unmarshal(node.Value, &value); err != nil {
			return nil, errors.Wrap(err, "could not parse string literal")
		}
		return &StringLiteral{baseNode: base, Value: value}, nil

	case "ident":
		return &Identifier{baseNode: base, Name: node.Name}, nil

	case "binary":
		op, err := parseBinaryOp(node.Op)
		if err != nil {
			return nil, err
		}
		left, err := decodeExpression(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(node.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{baseNode: base, Op: op, Left: left, Right: right}, nil

	case "unary":
		op, err := parseUnaryOp(node.Op)
		if err != nil {
			return nil, err
		}
		operand, err := decodeExpression(node.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{baseNode: base, Op: op, Operand: operand}, nil

	case "call":
		args, err := decodeExpressions(node.Args)
		if err != nil {
			return nil, err
		}
		return &CallExpr{baseNode: base, Callee: node.Callee, Args: args}, nil

	case "index":
		array, err := decodeExpression(node.Array)
		if err != nil {
			return nil, err
		}
		index, err := decodeExpression(node.Index)
		if err != nil {
			return nil, err
		}
		return &IndexExpr{baseNode: base, Array: array, Index: index}, nil

	case "array":
		elements, err := decodeExpressions(node.Elements)
		if err != nil {
			return nil, err
		}
		return &ArrayLiteral{baseNode: base, Elements: elements}, nil

	default:
		return nil, errors.Errorf("unrecognized expression node %q", node.Node)
	}
}

func decodeTypeAnnotation(raw json.RawMessage) (*TypeAnnotation, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var node jsonNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, errors.WithStack(err)
	}

	annotation := &TypeAnnotation{baseNode: baseNode{Loc: node.Loc}, Name: node.Name}
	if len(node.Refinement) > 0 {
		var refinement jsonNode
		if err := json.Unmarshal(node.Refinement, &refinement); err != nil {
			return nil, errors.WithStack(err)
		}
		predicate, err := decodeExpression(refinement.Predicate)
		if err != nil {
			return nil, err
		}
		annotation.Refinement = &RefinedTypeExpr{
			baseNode:  baseNode{Loc: refinement.Loc},
			BaseType:  refinement.BaseType,
			Variable:  refinement.Variable,
			Predicate: predicate,
		}
	}
	return annotation, nil
}

func decodeStatements(raw []json.RawMessage) ([]Statement, error) {
	var statements []Statement
	for i, entry := range raw {
		statement, err := decodeStatement(entry)
		if err != nil {
			return nil, errors.Wrapf(err, "statement %d", i)
		}
		statements = append(statements, statement)
	}
	return statements, nil
}

func decodeExpressions(raw []json.RawMessage) ([]Expression, error) {
	var expressions []Expression
	for i, entry := range raw {
		expression, err := decodeExpression(entry)
		if err != nil {
			return nil, errors.Wrapf(err, "expression %d", i)
		}
		expressions = append(expressions, expression)
	}
	return expressions, nil
}

// parseBinaryOp maps the interchange spelling of a binary operator onto its BinaryOp.
func parseBinaryOp(spelling string) (BinaryOp, error) {
	for op := OpAdd; op <= OpShr; op++ {
		if op.String() == spelling {
			return op, nil
		}
	}
	return 0, errors.Errorf("unrecognized binary operator %q", spelling)
}

// parseUnaryOp maps the interchange spelling of a unary operator onto its UnaryOp.
func parseUnaryOp(spelling string) (UnaryOp, error) {
	switch spelling {
	case "not":
		return OpNot, nil
	case "-", "neg":
		return OpNeg, nil
	default:
		return 0, errors.Errorf("unrecognized unary operator %q", spelling)
	}
}
