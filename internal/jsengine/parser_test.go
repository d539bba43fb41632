package jsengine_test

import (
	"testing"

	"github.com/npdhungana/gobrowser/internal/jsengine"
)

func parseProgram(t *testing.T, src string) *jsengine.Program {
	t.Helper()
	p := jsengine.NewParser(jsengine.NewLexer(src))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	return program
}

func TestParseProgram_VariableDeclaration(t *testing.T) {
	program := parseProgram(t, `let x = 5;`)
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	decl, ok := program.Statements[0].(*jsengine.VariableDeclaration)
	if !ok {
		t.Fatalf("expected *VariableDeclaration, got %T", program.Statements[0])
	}
	if decl.Name.Value != "x" {
		t.Fatalf("expected name x, got %s", decl.Name.Value)
	}
}

func TestParseProgram_FunctionDeclarationAndCall(t *testing.T) {
	program := parseProgram(t, `
function add(a, b) {
  return a + b;
}
add(1, 2);
`)
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	fn, ok := program.Statements[0].(*jsengine.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected *FunctionDeclaration, got %T", program.Statements[0])
	}
	if len(fn.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(fn.Parameters))
	}
	stmt, ok := program.Statements[1].(*jsengine.ExpressionStatement)
	if !ok {
		t.Fatalf("expected *ExpressionStatement, got %T", program.Statements[1])
	}
	if _, ok := stmt.Expression.(*jsengine.CallExpression); !ok {
		t.Fatalf("expected *CallExpression, got %T", stmt.Expression)
	}
}

func TestParseProgram_MemberAndIndexAndCall(t *testing.T) {
	program := parseProgram(t, `document.querySelectorAll(".item")[0];`)
	stmt := program.Statements[0].(*jsengine.ExpressionStatement)
	idx, ok := stmt.Expression.(*jsengine.IndexExpression)
	if !ok {
		t.Fatalf("expected *IndexExpression, got %T", stmt.Expression)
	}
	call, ok := idx.Left.(*jsengine.CallExpression)
	if !ok {
		t.Fatalf("expected *CallExpression inside index, got %T", idx.Left)
	}
	member, ok := call.Function.(*jsengine.MemberExpression)
	if !ok {
		t.Fatalf("expected *MemberExpression as call target, got %T", call.Function)
	}
	if member.Property.Value != "querySelectorAll" {
		t.Fatalf("expected property querySelectorAll, got %s", member.Property.Value)
	}
}

func TestParseProgram_NewExpressionWithArguments(t *testing.T) {
	program := parseProgram(t, `let n = new Node(handle);`)
	decl := program.Statements[0].(*jsengine.VariableDeclaration)
	newExpr, ok := decl.Value.(*jsengine.NewExpression)
	if !ok {
		t.Fatalf("expected *NewExpression, got %T", decl.Value)
	}
	if len(newExpr.Arguments) != 1 {
		t.Fatalf("expected 1 constructor argument, got %d", len(newExpr.Arguments))
	}
}

func TestParseProgram_AssignExpression(t *testing.T) {
	program := parseProgram(t, `x = x + 1;`)
	stmt := program.Statements[0].(*jsengine.ExpressionStatement)
	assign, ok := stmt.Expression.(*jsengine.AssignExpression)
	if !ok {
		t.Fatalf("expected *AssignExpression, got %T", stmt.Expression)
	}
	if _, ok := assign.Target.(*jsengine.Identifier); !ok {
		t.Fatalf("expected identifier target, got %T", assign.Target)
	}
}

func TestParseProgram_IfElseAndWhile(t *testing.T) {
	program := parseProgram(t, `
if (a && b) {
  return 1;
} else {
  return 2;
}
while (x) {
  x = 0;
}
`)
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	ifStmt, ok := program.Statements[0].(*jsengine.IfStatement)
	if !ok {
		t.Fatalf("expected *IfStatement, got %T", program.Statements[0])
	}
	if ifStmt.Alternative == nil {
		t.Fatalf("expected else branch to be present")
	}
	if _, ok := program.Statements[1].(*jsengine.WhileStatement); !ok {
		t.Fatalf("expected *WhileStatement, got %T", program.Statements[1])
	}
}

func TestParseProgram_OperatorPrecedence(t *testing.T) {
	program := parseProgram(t, `1 + 2 * 3;`)
	stmt := program.Statements[0].(*jsengine.ExpressionStatement)
	bin := stmt.Expression.(*jsengine.BinaryExpression)
	if bin.Operator != "+" {
		t.Fatalf("expected top-level + per precedence, got %s", bin.Operator)
	}
	if _, ok := bin.Right.(*jsengine.BinaryExpression); !ok {
		t.Fatalf("expected nested * on the right, got %T", bin.Right)
	}
}

func TestParseProgram_ReportsErrorOnMissingParen(t *testing.T) {
	p := jsengine.NewParser(jsengine.NewLexer(`if (x { return 1; }`))
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatalf("expected a parse error for the missing closing paren")
	}
}
