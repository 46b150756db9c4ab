package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRPNEvaluationOrder mirrors spec §8 scenario 6: (a + b) * c encoded as
// [a, b, +, c, *] must invoke mapValue(a), mapValue(b), evalBinary(+,a,b),
// mapValue(c), evalBinary(*,(a+b),c) in that exact order.
func TestRPNEvaluationOrder(t *testing.T) {
	var trace []string

	a := &MemberName{Name: "a"}
	b := &MemberName{Name: "b"}
	c := &MemberName{Name: "c"}
	plus := &BinaryOp{Op: OpAdd}
	times := &BinaryOp{Op: OpMul}

	ev := &Evaluator[string]{
		MapValue: func(n ExprNode) string {
			name := n.(*MemberName).Name
			trace = append(trace, "map:"+name)
			return name
		},
		EvalBinary: func(op BinaryOperator, lhs, rhs string) string {
			sym := "+"
			if op == OpMul {
				sym = "*"
			}
			result := "(" + lhs + sym + rhs + ")"
			trace = append(trace, "bin:"+result)
			return result
		},
	}

	list := NewExprNodeList([]ExprNode{a, b, plus, c, times})
	result := ev.Evaluate(list)

	require.Equal(t, "((a+b)*c)", result)
	require.Equal(t, []string{"map:a", "map:b", "bin:(a+b)", "map:c", "bin:((a+b)*c)"}, trace)
}

// TestZeroArgMethodInvocation exercises the §13 Open Question decision:
// Nargs=1 for a zero-argument call (the method-name slot only).
func TestZeroArgMethodInvocation(t *testing.T) {
	var calledWith []string

	method := &MethodName{Name: "foo"}
	call := &MethodInvocation{Nargs: 1}

	ev := &Evaluator[string]{
		MapValue: func(n ExprNode) string { return n.(*MethodName).Name },
		EvalMethodCall: func(method string, args []string) string {
			calledWith = args
			return method + "()"
		},
	}

	result := ev.Evaluate(NewExprNodeList([]ExprNode{method, call}))
	require.Equal(t, "foo()", result)
	require.Empty(t, calledWith)
}

func TestMultiArgMethodInvocationOrder(t *testing.T) {
	x := &MemberName{Name: "x"}
	y := &MemberName{Name: "y"}
	method := &MethodName{Name: "sum"}
	call := &MethodInvocation{Nargs: 3} // method + 2 args

	var gotArgs []string
	ev := &Evaluator[string]{
		MapValue: func(n ExprNode) string {
			switch v := n.(type) {
			case *MemberName:
				return v.Name
			case *MethodName:
				return v.Name
			}
			return ""
		},
		EvalMethodCall: func(method string, args []string) string {
			gotArgs = args
			return method
		},
	}

	ev.Evaluate(NewExprNodeList([]ExprNode{method, x, y, call}))
	require.Equal(t, []string{"x", "y"}, gotArgs)
}

func TestStackUnderflowPanics(t *testing.T) {
	ev := &Evaluator[string]{
		EvalUnary: func(op UnaryOperator, x string) string { return x },
	}
	require.Panics(t, func() {
		ev.Evaluate(NewExprNodeList([]ExprNode{&UnaryOp{Op: OpNeg}}))
	})
}
