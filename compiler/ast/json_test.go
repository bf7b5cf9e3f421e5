package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecodeProgram ensures a representative parser dump decodes into the expected tree.
func TestDecodeProgram(t *testing.T) {
	encoded := []byte(`{
		"statements": [
			{
				"node": "guard",
				"loc": {"file": "transfer.sol", "line": 2, "column": 1},
				"condition": {
					"node": "binary", "op": ">",
					"left": {"node": "ident", "name": "y"},
					"right": {"node": "int", "value": "0"}
				},
				"else": [{"node": "return"}]
			},
			{
				"node": "let",
				"name": "q",
				"value": {
					"node": "binary", "op": "/",
					"left": {"node": "ident", "name": "x"},
					"right": {"node": "ident", "name": "y"}
				}
			},
			{
				"node": "expr",
				"expr": {
					"node": "call", "callee": "sub-lamports",
					"args": [
						{"node": "ident", "name": "vault"},
						{"node": "ident", "name": "amount"}
					]
				}
			}
		]
	}`)

	program, err := DecodeProgram(encoded)
	require.NoError(t, err)
	require.Len(t, program.Statements, 3)

	guard, ok := program.Statements[0].(*GuardStatement)
	require.True(t, ok)
	condition, ok := guard.Condition.(*BinaryExpr)
	require.True(t, ok)
	assert.EqualValues(t, OpGt, condition.Op)
	require.Len(t, guard.Else, 1)
	assert.IsType(t, &ReturnStatement{}, guard.Else[0])
	require.NotNil(t, guard.Location())
	assert.EqualValues(t, "transfer.sol:2:1", guard.Location().String())

	let, ok := program.Statements[1].(*LetStatement)
	require.True(t, ok)
	assert.EqualValues(t, "q", let.Name)
	division, ok := let.Value.(*BinaryExpr)
	require.True(t, ok)
	assert.EqualValues(t, OpDiv, division.Op)

	call, ok := program.Statements[2].(*ExpressionStatement).Expr.(*CallExpr)
	require.True(t, ok)
	assert.EqualValues(t, "sub-lamports", call.Callee)
	assert.Len(t, call.Args, 2)
}

// TestDecodeBigIntegerLiteral ensures string-carried integer literals beyond the 64-bit
// machine word decode losslessly, while plain JSON numbers remain accepted.
func TestDecodeBigIntegerLiteral(t *testing.T) {
	encoded := []byte(`{"statements": [
		{"node": "let", "name": "huge", "value": {"node": "int", "value": "36893488147419103232"}},
		{"node": "let", "name": "small", "value": {"node": "int", "value": 42}}
	]}`)

	program, err := DecodeProgram(encoded)
	require.NoError(t, err)

	huge := program.Statements[0].(*LetStatement).Value.(*IntLiteral)
	assert.EqualValues(t, "36893488147419103232", huge.Value.String())

	small := program.Statements[1].(*LetStatement).Value.(*IntLiteral)
	assert.EqualValues(t, "42", small.Value.String())
}

// TestDecodeRefinementAnnotation ensures refinement-typed bindings decode their variable
// and predicate.
func TestDecodeRefinementAnnotation(t *testing.T) {
	encoded := []byte(`{"statements": [{
		"node": "let", "name": "fee",
		"value": {"node": "int", "value": "3"},
		"type": {
			"name": "u64",
			"refinement": {
				"base_type": "u64",
				"variable": "v",
				"predicate": {
					"node": "binary", "op": ">",
					"left": {"node": "ident", "name": "v"},
					"right": {"node": "int", "value": "0"}
				}
			}
		}
	}]}`)

	program, err := DecodeProgram(encoded)
	require.NoError(t, err)

	let := program.Statements[0].(*LetStatement)
	require.NotNil(t, let.Type)
	assert.EqualValues(t, "u64", let.Type.Name)
	require.NotNil(t, let.Type.Refinement)
	assert.EqualValues(t, "v", let.Type.Refinement.Variable)
	predicate, ok := let.Type.Refinement.Predicate.(*BinaryExpr)
	require.True(t, ok)
	assert.EqualValues(t, OpGt, predicate.Op)
}

// TestDecodeWhileWithInvariants ensures loop invariant annotations decode alongside the
// body.
func TestDecodeWhileWithInvariants(t *testing.T) {
	encoded := []byte(`{"statements": [{
		"node": "while",
		"condition": {
			"node": "binary", "op": "<",
			"left": {"node": "ident", "name": "i"},
			"right": {"node": "ident", "name": "n"}
		},
		"invariants": [{
			"node": "binary", "op": ">=",
			"left": {"node": "ident", "name": "total"},
			"right": {"node": "int", "value": "0"}
		}],
		"body": [{
			"node": "assign", "name": "i",
			"value": {
				"node": "binary", "op": "+",
				"left": {"node": "ident", "name": "i"},
				"right": {"node": "int", "value": "1"}
			}
		}]
	}]}`)

	program, err := DecodeProgram(encoded)
	require.NoError(t, err)

	loop := program.Statements[0].(*WhileStatement)
	require.Len(t, loop.Invariants, 1)
	require.Len(t, loop.Body, 1)
	invariant := loop.Invariants[0].(*BinaryExpr)
	assert.EqualValues(t, OpGeq, invariant.Op)
}

// TestDecodeRejectsUnknownNodes ensures unrecognized discriminators and operators are
// reported as errors.
func TestDecodeRejectsUnknownNodes(t *testing.T) {
	_, err := DecodeProgram([]byte(`{"statements": [{"node": "goto"}]}`))
	assert.Error(t, err)

	_, err = DecodeProgram([]byte(`{"statements": [{
		"node": "let", "name": "x",
		"value": {
			"node": "binary", "op": "**",
			"left": {"node": "int", "value": "2"},
			"right": {"node": "int", "value": "3"}
		}
	}]}`))
	assert.Error(t, err)
}
