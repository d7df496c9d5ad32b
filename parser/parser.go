package parser

import (
	"fmt"
	"strconv"
)

// Operator precedence levels, lowest binds loosest.
// Assignment is right-associative and the loosest; ** is the tightest
// operator below calls and member access. `..` associates to the right.
const (
	LOWEST        = iota
	PREC_ASSIGN   // = += -= *= /= <<= >>= ..=
	PREC_OR       // or xor
	PREC_AND      // and
	PREC_EQUALITY // == !=
	PREC_COMPARE  // < <= > >=
	PREC_CONCAT   // ..
	PREC_SHIFT    // << >>
	PREC_SUM      // + -
	PREC_PRODUCT  // * / %
	PREC_UNARY    // not - #
	PREC_POW      // **
	PREC_POSTFIX  // calls, obj.p, obj[e]
)

var precedences = map[TokenType]int{
	TOKEN_ASSIGN:        PREC_ASSIGN,
	TOKEN_PLUS_ASSIGN:   PREC_ASSIGN,
	TOKEN_MINUS_ASSIGN:  PREC_ASSIGN,
	TOKEN_STAR_ASSIGN:   PREC_ASSIGN,
	TOKEN_SLASH_ASSIGN:  PREC_ASSIGN,
	TOKEN_LSHIFT_ASSIGN: PREC_ASSIGN,
	TOKEN_RSHIFT_ASSIGN: PREC_ASSIGN,
	TOKEN_CONCAT_ASSIGN: PREC_ASSIGN,
	TOKEN_OR:            PREC_OR,
	TOKEN_XOR:           PREC_OR,
	TOKEN_AND:           PREC_AND,
	TOKEN_EQ:            PREC_EQUALITY,
	TOKEN_NE:            PREC_EQUALITY,
	TOKEN_LT:            PREC_COMPARE,
	TOKEN_LE:            PREC_COMPARE,
	TOKEN_GT:            PREC_COMPARE,
	TOKEN_GE:            PREC_COMPARE,
	TOKEN_CONCAT:        PREC_CONCAT,
	TOKEN_LSHIFT:        PREC_SHIFT,
	TOKEN_RSHIFT:        PREC_SHIFT,
	TOKEN_PLUS:          PREC_SUM,
	TOKEN_MINUS:         PREC_SUM,
	TOKEN_STAR:          PREC_PRODUCT,
	TOKEN_SLASH:         PREC_PRODUCT,
	TOKEN_PERCENT:       PREC_PRODUCT,
	TOKEN_POW:           PREC_POW,
	TOKEN_LPAREN:        PREC_POSTFIX,
	TOKEN_LBRACKET:      PREC_POSTFIX,
	TOKEN_DOT:           PREC_POSTFIX,
}

// Parser parses Ore source code into an AST
type Parser struct {
	lexer   *Lexer
	current Token
	peek    Token
}

// NewParser creates a new Parser instance
func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
	}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances to the next token
func (p *Parser) nextToken() {
	p.current = p.peek
	p.peek = p.lexer.NextToken()
}

// expect consumes the current token if it matches, else fails
func (p *Parser) expect(t TokenType) error {
	if p.current.Type != t {
		return p.errorf("expected %s, got %s", t, p.current.Type)
	}
	p.nextToken()
	return nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	prefix := fmt.Sprintf("line %d: ", p.current.Position.Line)
	return fmt.Errorf(prefix+format, args...)
}

// ParseProgram parses a complete source file
func (p *Parser) ParseProgram() (*Program, error) {
	prog := &Program{Pos: p.current.Position}
	for p.current.Type != TOKEN_EOF {
		if p.current.Type == TOKEN_SEMICOLON {
			p.nextToken()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}
	return prog, nil
}

// atBlockStop reports whether the current token is one of the stops that end a block
func (p *Parser) atBlockStop(stops []TokenType) bool {
	for _, t := range stops {
		if p.current.Type == t {
			return true
		}
	}
	return false
}

// parseBlock parses statements until one of the stop keywords, which is
// left unconsumed for the caller
func (p *Parser) parseBlock(stops ...TokenType) (*BlockStmt, error) {
	block := &BlockStmt{Pos: p.current.Position}
	for !p.atBlockStop(stops) {
		if p.current.Type == TOKEN_EOF {
			return nil, p.errorf("unexpected end of input inside block")
		}
		if p.current.Type == TOKEN_SEMICOLON {
			p.nextToken()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	return block, nil
}

// parseStatement parses a single statement
func (p *Parser) parseStatement() (Stmt, error) {
	switch p.current.Type {
	case TOKEN_IF:
		return p.parseIf()
	case TOKEN_WHILE:
		return p.parseWhile()
	case TOKEN_DO:
		return p.parseDoWhile()
	case TOKEN_FOR:
		return p.parseFor()
	case TOKEN_RETURN:
		return p.parseReturn()
	case TOKEN_BREAK:
		pos := p.current.Position
		p.nextToken()
		return &BreakStmt{Pos: pos}, nil
	case TOKEN_CONTINUE:
		pos := p.current.Position
		p.nextToken()
		return &ContinueStmt{Pos: pos}, nil
	case TOKEN_THROW:
		return p.parseThrow()
	case TOKEN_TRY:
		return p.parseTry()
	case TOKEN_GLOBAL:
		return p.parseGlobal()
	case TOKEN_EXPORT:
		return p.parseExport()
	default:
		pos := p.current.Position
		expr, err := p.ParseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Pos: pos, Expr: expr}, nil
	}
}

// parseIf parses if test then ... [elseif ...] [else ...] end.
// The whole elseif chain shares a single closing end.
func (p *Parser) parseIf() (Stmt, error) {
	stmt, err := p.parseIfTail()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TOKEN_END); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseIfTail parses one if/elseif arm, leaving the closing end for the
// outermost caller
func (p *Parser) parseIfTail() (*IfStmt, error) {
	pos := p.current.Position
	p.nextToken() // consume if/elseif
	test, err := p.ParseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TOKEN_THEN); err != nil {
		return nil, err
	}
	cons, err := p.parseBlock(TOKEN_ELSEIF, TOKEN_ELSE, TOKEN_END)
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Pos: pos, Test: test, Consequent: cons}
	switch p.current.Type {
	case TOKEN_ELSEIF:
		alt, err := p.parseIfTail()
		if err != nil {
			return nil, err
		}
		stmt.Alternate = alt
	case TOKEN_ELSE:
		p.nextToken()
		alt, err := p.parseBlock(TOKEN_END)
		if err != nil {
			return nil, err
		}
		stmt.Alternate = alt
	}
	return stmt, nil
}

// parseWhile parses while test do ... end
func (p *Parser) parseWhile() (Stmt, error) {
	pos := p.current.Position
	p.nextToken()
	test, err := p.ParseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TOKEN_DO); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(TOKEN_END)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TOKEN_END); err != nil {
		return nil, err
	}
	return &WhileStmt{Pos: pos, Test: test, Body: body}, nil
}

// parseDoWhile parses do ... while test end
func (p *Parser) parseDoWhile() (Stmt, error) {
	pos := p.current.Position
	p.nextToken()
	body, err := p.parseBlock(TOKEN_WHILE)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TOKEN_WHILE); err != nil {
		return nil, err
	}
	test, err := p.ParseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TOKEN_END); err != nil {
		return nil, err
	}
	return &DoWhileStmt{Pos: pos, Body: body, Test: test}, nil
}

// parseFor parses for init, test, update do ... end; each clause may be
// left empty
func (p *Parser) parseFor() (Stmt, error) {
	pos := p.current.Position
	p.nextToken()
	stmt := &ForStmt{Pos: pos}

	var err error
	if p.current.Type != TOKEN_COMMA {
		stmt.Init, err = p.ParseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(TOKEN_COMMA); err != nil {
		return nil, err
	}
	if p.current.Type != TOKEN_COMMA {
		stmt.Test, err = p.ParseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(TOKEN_COMMA); err != nil {
		return nil, err
	}
	if p.current.Type != TOKEN_DO {
		stmt.Update, err = p.ParseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(TOKEN_DO); err != nil {
		return nil, err
	}
	stmt.Body, err = p.parseBlock(TOKEN_END)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TOKEN_END); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseReturn parses return [expr]
func (p *Parser) parseReturn() (Stmt, error) {
	pos := p.current.Position
	p.nextToken()
	stmt := &ReturnStmt{Pos: pos}
	if !p.returnIsBare() {
		value, err := p.ParseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}
	return stmt, nil
}

// returnIsBare reports whether a return statement has no argument
func (p *Parser) returnIsBare() bool {
	switch p.current.Type {
	case TOKEN_END, TOKEN_ELSE, TOKEN_ELSEIF, TOKEN_CATCH, TOKEN_FINALLY,
		TOKEN_WHILE, TOKEN_SEMICOLON, TOKEN_EOF:
		return true
	}
	return false
}

// parseThrow parses throw expr
func (p *Parser) parseThrow() (Stmt, error) {
	pos := p.current.Position
	p.nextToken()
	value, err := p.ParseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ThrowStmt{Pos: pos, Value: value}, nil
}

// parseTry parses try ... catch e do ... finally ... end
func (p *Parser) parseTry() (Stmt, error) {
	pos := p.current.Position
	p.nextToken()
	block, err := p.parseBlock(TOKEN_CATCH, TOKEN_FINALLY)
	if err != nil {
		return nil, err
	}
	stmt := &TryStmt{Pos: pos, Block: block}

	if p.current.Type == TOKEN_CATCH {
		p.nextToken()
		if p.current.Type != TOKEN_IDENTIFIER {
			return nil, p.errorf("expected catch parameter, got %s", p.current.Type)
		}
		stmt.CatchParam = p.current.Value
		p.nextToken()
		if err := p.expect(TOKEN_DO); err != nil {
			return nil, err
		}
		stmt.Handler, err = p.parseBlock(TOKEN_FINALLY, TOKEN_END)
		if err != nil {
			return nil, err
		}
	}
	if p.current.Type == TOKEN_FINALLY {
		p.nextToken()
		stmt.Finalizer, err = p.parseBlock(TOKEN_END)
		if err != nil {
			return nil, err
		}
	}
	if stmt.Handler == nil && stmt.Finalizer == nil {
		return nil, p.errorf("try needs a catch or finally clause")
	}
	if err := p.expect(TOKEN_END); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseGlobal parses global x = expr
func (p *Parser) parseGlobal() (Stmt, error) {
	pos := p.current.Position
	p.nextToken()
	expr, err := p.ParseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	assign, ok := expr.(*AssignExpr)
	if !ok {
		return nil, p.errorf("global requires an assignment")
	}
	if _, ok := assign.Target.(*IdentifierExpr); !ok {
		return nil, p.errorf("global assignment target must be an identifier")
	}
	return &GlobalStmt{Pos: pos, Assignment: assign}, nil
}

// parseExport parses export expr
func (p *Parser) parseExport() (Stmt, error) {
	pos := p.current.Position
	p.nextToken()
	value, err := p.ParseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ExportStmt{Pos: pos, Value: value}, nil
}

// ParseExpression parses an expression with the given minimum binding
// precedence (Pratt parsing)
func (p *Parser) ParseExpression(prec int) (Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for prec < precedences[p.current.Type] {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// parsePrefix parses a prefix expression or primary
func (p *Parser) parsePrefix() (Expr, error) {
	pos := p.current.Position
	switch p.current.Type {
	case TOKEN_NUMBER:
		val, err := strconv.ParseFloat(p.current.Value, 64)
		if err != nil {
			return nil, p.errorf("malformed number %q", p.current.Value)
		}
		p.nextToken()
		return &NumberLiteral{Pos: pos, Value: val}, nil
	case TOKEN_STRING:
		val := p.current.Value
		p.nextToken()
		return &StringLiteral{Pos: pos, Value: val}, nil
	case TOKEN_TRUE:
		p.nextToken()
		return &BoolLiteral{Pos: pos, Value: true}, nil
	case TOKEN_FALSE:
		p.nextToken()
		return &BoolLiteral{Pos: pos, Value: false}, nil
	case TOKEN_NIL:
		p.nextToken()
		return &NilLiteral{Pos: pos}, nil
	case TOKEN_IDENTIFIER:
		name := p.current.Value
		p.nextToken()
		return &IdentifierExpr{Pos: pos, Name: name}, nil
	case TOKEN_LPAREN:
		p.nextToken()
		expr, err := p.ParseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TOKEN_RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case TOKEN_LBRACKET:
		return p.parseArray()
	case TOKEN_LBRACE:
		return p.parseObject()
	case TOKEN_FN:
		return p.parseFunction()
	case TOKEN_NOT, TOKEN_MINUS, TOKEN_HASH:
		op := p.current.Type
		p.nextToken()
		operand, err := p.ParseExpression(PREC_UNARY)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Pos: pos, Operator: op, Operand: operand}, nil
	default:
		return nil, p.errorf("unexpected token %s in expression", p.current.Type)
	}
}

// parseInfix parses one infix/postfix construct applied to left
func (p *Parser) parseInfix(left Expr) (Expr, error) {
	pos := p.current.Position
	switch p.current.Type {
	case TOKEN_LPAREN:
		return p.parseCall(left)
	case TOKEN_DOT:
		p.nextToken()
		if p.current.Type != TOKEN_IDENTIFIER {
			return nil, p.errorf("expected property name after '.', got %s", p.current.Type)
		}
		prop := &IdentifierExpr{Pos: p.current.Position, Name: p.current.Value}
		p.nextToken()
		return &MemberExpr{Pos: pos, Object: left, Property: prop}, nil
	case TOKEN_LBRACKET:
		p.nextToken()
		key, err := p.ParseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TOKEN_RBRACKET); err != nil {
			return nil, err
		}
		return &MemberExpr{Pos: pos, Object: left, Property: key, Computed: true}, nil
	case TOKEN_ASSIGN, TOKEN_PLUS_ASSIGN, TOKEN_MINUS_ASSIGN, TOKEN_STAR_ASSIGN,
		TOKEN_SLASH_ASSIGN, TOKEN_LSHIFT_ASSIGN, TOKEN_RSHIFT_ASSIGN, TOKEN_CONCAT_ASSIGN:
		op := p.current.Type
		switch left.(type) {
		case *IdentifierExpr, *MemberExpr:
		default:
			return nil, p.errorf("invalid assignment target")
		}
		p.nextToken()
		value, err := p.ParseExpression(PREC_ASSIGN - 1) // right-associative
		if err != nil {
			return nil, err
		}
		return &AssignExpr{Pos: pos, Target: left, Operator: op, Value: value}, nil
	case TOKEN_POW:
		p.nextToken()
		right, err := p.ParseExpression(PREC_POW - 1) // right-associative
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Pos: pos, Left: left, Operator: TOKEN_POW, Right: right}, nil
	case TOKEN_CONCAT:
		p.nextToken()
		right, err := p.ParseExpression(PREC_CONCAT - 1) // right-associative
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Pos: pos, Left: left, Operator: TOKEN_CONCAT, Right: right}, nil
	default:
		op := p.current.Type
		prec, ok := precedences[op]
		if !ok {
			return nil, p.errorf("unexpected token %s in expression", op)
		}
		p.nextToken()
		right, err := p.ParseExpression(prec)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Pos: pos, Left: left, Operator: op, Right: right}, nil
	}
}

// parseCall parses callee(arg1, arg2, ...)
func (p *Parser) parseCall(callee Expr) (Expr, error) {
	pos := p.current.Position
	p.nextToken() // consume (
	call := &CallExpr{Pos: pos, Callee: callee}
	for p.current.Type != TOKEN_RPAREN {
		arg, err := p.ParseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if p.current.Type == TOKEN_COMMA {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}

// parseArray parses [e1, e2, ...]
func (p *Parser) parseArray() (Expr, error) {
	pos := p.current.Position
	p.nextToken() // consume [
	arr := &ArrayExpr{Pos: pos}
	for p.current.Type != TOKEN_RBRACKET {
		elem, err := p.ParseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, elem)
		if p.current.Type == TOKEN_COMMA {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(TOKEN_RBRACKET); err != nil {
		return nil, err
	}
	return arr, nil
}

// parseObject parses {key: value, ...}; keys are identifiers or strings
func (p *Parser) parseObject() (Expr, error) {
	pos := p.current.Position
	p.nextToken() // consume {
	obj := &ObjectExpr{Pos: pos}
	for p.current.Type != TOKEN_RBRACE {
		var key string
		switch p.current.Type {
		case TOKEN_IDENTIFIER, TOKEN_STRING:
			key = p.current.Value
		default:
			return nil, p.errorf("expected property key, got %s", p.current.Type)
		}
		p.nextToken()
		if err := p.expect(TOKEN_COLON); err != nil {
			return nil, err
		}
		value, err := p.ParseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		obj.Properties = append(obj.Properties, ObjectProperty{Key: key, Value: value})
		if p.current.Type == TOKEN_COMMA {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(TOKEN_RBRACE); err != nil {
		return nil, err
	}
	return obj, nil
}

// parseFunction parses fn [name](params) ... end
func (p *Parser) parseFunction() (Expr, error) {
	pos := p.current.Position
	p.nextToken() // consume fn
	fn := &FunctionExpr{Pos: pos}
	if p.current.Type == TOKEN_IDENTIFIER {
		fn.Name = p.current.Value
		p.nextToken()
	}
	if err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}
	for p.current.Type != TOKEN_RPAREN {
		if p.current.Type != TOKEN_IDENTIFIER {
			return nil, p.errorf("expected parameter name, got %s", p.current.Type)
		}
		param := Param{Name: p.current.Value}
		p.nextToken()
		if p.current.Type == TOKEN_ASSIGN {
			p.nextToken()
			def, err := p.ParseExpression(LOWEST)
			if err != nil {
				return nil, err
			}
			param.Default = def
		}
		fn.Params = append(fn.Params, param)
		if p.current.Type == TOKEN_COMMA {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(TOKEN_END)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TOKEN_END); err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}
