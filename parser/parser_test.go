package parser

import (
	"fmt"
	"strings"
	"testing"
)

func parseProgram(t *testing.T, input string) *Program {
	t.Helper()
	prog, err := NewParser(input).ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func parseExpr(t *testing.T, input string) Expr {
	t.Helper()
	expr, err := NewParser(input).ParseExpression(LOWEST)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return expr
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string // top-level operator or node shape
	}{
		{"1 + 2 * 3", "+"},
		{"1 * 2 + 3", "+"},
		{"1 + 2 == 3", "=="},
		{"1 < 2 and 3 < 4", "and"},
		{"a or b and c", "or"},
		{"1 .. 2 + 3", ".."},
		{"1 << 2 + 3", "<<"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := parseExpr(t, tt.input)
			bin, ok := expr.(*BinaryExpr)
			if !ok {
				t.Fatalf("expected binary expression, got %T", expr)
			}
			if bin.Operator.String() != tt.want {
				t.Errorf("top operator: expected %s, got %s", tt.want, bin.Operator)
			}
		})
	}
}

func TestPowIsRightAssociative(t *testing.T) {
	expr := parseExpr(t, "2 ** 3 ** 2").(*BinaryExpr)
	right, ok := expr.Right.(*BinaryExpr)
	if !ok || right.Operator != TOKEN_POW {
		t.Fatal("2 ** 3 ** 2 should parse as 2 ** (3 ** 2)")
	}
}

func TestAssignmentChains(t *testing.T) {
	expr := parseExpr(t, "a = b = 1").(*AssignExpr)
	if _, ok := expr.Value.(*AssignExpr); !ok {
		t.Fatal("a = b = 1 should nest to the right")
	}
}

func TestAssignmentTargetValidation(t *testing.T) {
	if _, err := NewParser("1 + 2 = 3").ParseExpression(LOWEST); err == nil {
		t.Error("assignment to an rvalue should fail to parse")
	}
	if _, err := NewParser("a.b.c = 3").ParseExpression(LOWEST); err != nil {
		t.Errorf("member chains are assignable: %v", err)
	}
}

func TestUnaryBinding(t *testing.T) {
	expr := parseExpr(t, "#a + 1").(*BinaryExpr)
	if expr.Operator != TOKEN_PLUS {
		t.Fatal("# should bind tighter than +")
	}
	if _, ok := expr.Left.(*UnaryExpr); !ok {
		t.Fatal("left side should be the length expression")
	}
}

func TestMemberAndCallShapes(t *testing.T) {
	expr := parseExpr(t, "obj.items[0].push(1, 2)")
	call, ok := expr.(*CallExpr)
	if !ok {
		t.Fatalf("expected call, got %T", expr)
	}
	if len(call.Args) != 2 {
		t.Errorf("expected 2 arguments, got %d", len(call.Args))
	}
	member, ok := call.Callee.(*MemberExpr)
	if !ok || member.Computed {
		t.Fatal("callee should be a dotted member expression")
	}
	index, ok := member.Object.(*MemberExpr)
	if !ok || !index.Computed {
		t.Fatal("receiver should be a computed index expression")
	}
}

func TestFunctionDeclaration(t *testing.T) {
	expr := parseExpr(t, "fn add(a, b = 1 + 2) return a + b end")
	fn, ok := expr.(*FunctionExpr)
	if !ok {
		t.Fatalf("expected function, got %T", expr)
	}
	if fn.Name != "add" {
		t.Errorf("expected name add, got %q", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.Params[0].Default != nil {
		t.Error("a has no default")
	}
	if fn.Params[1].Default == nil {
		t.Error("b should carry its default expression")
	}
}

func TestStatementShapes(t *testing.T) {
	prog := parseProgram(t, `
		x = 1
		if x then x = 2 elseif false then x = 3 else x = 4 end
		while x < 10 do x = x + 1 end
		do x = x - 1 while x > 5 end
		for i = 0, i < 3, i = i + 1 do x = x + i end
		try throw "oops" catch e do x = 0 finally x = x + 1 end
		global g = 1
		export x
	`)
	wantTypes := []string{"*parser.ExprStmt", "*parser.IfStmt", "*parser.WhileStmt",
		"*parser.DoWhileStmt", "*parser.ForStmt", "*parser.TryStmt",
		"*parser.GlobalStmt", "*parser.ExportStmt"}
	if len(prog.Stmts) != len(wantTypes) {
		t.Fatalf("expected %d statements, got %d", len(wantTypes), len(prog.Stmts))
	}
	for i, stmt := range prog.Stmts {
		got := fmt.Sprintf("%T", stmt)
		if got != wantTypes[i] {
			t.Errorf("statement %d: expected %s, got %s", i, wantTypes[i], got)
		}
	}
}

func TestElseifChainsShareOneEnd(t *testing.T) {
	prog := parseProgram(t, `if a then x = 1 elseif b then x = 2 elseif c then x = 3 else x = 4 end`)
	stmt := prog.Stmts[0].(*IfStmt)
	second, ok := stmt.Alternate.(*IfStmt)
	if !ok {
		t.Fatal("first alternate should be an if statement")
	}
	third, ok := second.Alternate.(*IfStmt)
	if !ok {
		t.Fatal("second alternate should be an if statement")
	}
	if _, ok := third.Alternate.(*BlockStmt); !ok {
		t.Fatal("final alternate should be the else block")
	}
}

func TestForClausesMayBeEmpty(t *testing.T) {
	prog := parseProgram(t, "for , , do break end")
	stmt := prog.Stmts[0].(*ForStmt)
	if stmt.Init != nil || stmt.Test != nil || stmt.Update != nil {
		t.Error("all three clauses should be nil")
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"if x then",     // unterminated block
		"fn (",          // unterminated parameters
		"a[1",           // unterminated index
		"{1: 2}",        // non-identifier key
		"global 1 + 2",  // global without assignment
		"try x = 1 end", // try without catch/finally
		"return )",      // stray token
	}
	for _, src := range bad {
		if _, err := NewParser(src).ParseProgram(); err == nil {
			t.Errorf("expected parse error for %q", src)
		}
	}
}

func TestDumpRendersTree(t *testing.T) {
	prog := parseProgram(t, "fn inc(n) return n + 1 end")
	dump := Dump(prog)
	for _, want := range []string{"Program", "Function inc", "Param n", "Return", "Binary +", "Identifier n", "Number 1"} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump missing %q:\n%s", want, dump)
		}
	}
}
