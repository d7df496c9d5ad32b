package parser

import (
	"fmt"
	"strings"
)

// Dump renders an AST as an indented tree, one node per line.
func Dump(node Node) string {
	var b strings.Builder
	dumpNode(&b, node, 0)
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func dumpNode(b *strings.Builder, node Node, depth int) {
	indent(b, depth)
	switch n := node.(type) {
	case *Program:
		b.WriteString("Program\n")
		for _, s := range n.Stmts {
			dumpNode(b, s, depth+1)
		}
	case *BlockStmt:
		b.WriteString("Block\n")
		for _, s := range n.Stmts {
			dumpNode(b, s, depth+1)
		}
	case *ExprStmt:
		b.WriteString("ExprStmt\n")
		dumpNode(b, n.Expr, depth+1)
	case *NumberLiteral:
		fmt.Fprintf(b, "Number %v\n", n.Value)
	case *BoolLiteral:
		fmt.Fprintf(b, "Bool %v\n", n.Value)
	case *StringLiteral:
		fmt.Fprintf(b, "String %q\n", n.Value)
	case *NilLiteral:
		b.WriteString("Nil\n")
	case *IdentifierExpr:
		fmt.Fprintf(b, "Identifier %s\n", n.Name)
	case *ArrayExpr:
		b.WriteString("Array\n")
		for _, e := range n.Elements {
			dumpNode(b, e, depth+1)
		}
	case *ObjectExpr:
		b.WriteString("Object\n")
		for _, prop := range n.Properties {
			indent(b, depth+1)
			fmt.Fprintf(b, "Property %s\n", prop.Key)
			dumpNode(b, prop.Value, depth+2)
		}
	case *MemberExpr:
		if n.Computed {
			b.WriteString("Member (computed)\n")
		} else {
			b.WriteString("Member\n")
		}
		dumpNode(b, n.Object, depth+1)
		dumpNode(b, n.Property, depth+1)
	case *CallExpr:
		b.WriteString("Call\n")
		dumpNode(b, n.Callee, depth+1)
		for _, a := range n.Args {
			dumpNode(b, a, depth+1)
		}
	case *UnaryExpr:
		fmt.Fprintf(b, "Unary %s\n", n.Operator)
		dumpNode(b, n.Operand, depth+1)
	case *BinaryExpr:
		fmt.Fprintf(b, "Binary %s\n", n.Operator)
		dumpNode(b, n.Left, depth+1)
		dumpNode(b, n.Right, depth+1)
	case *AssignExpr:
		fmt.Fprintf(b, "Assign %s\n", n.Operator)
		dumpNode(b, n.Target, depth+1)
		dumpNode(b, n.Value, depth+1)
	case *FunctionExpr:
		if n.Name != "" {
			fmt.Fprintf(b, "Function %s\n", n.Name)
		} else {
			b.WriteString("Function <anonymous>\n")
		}
		for _, param := range n.Params {
			indent(b, depth+1)
			fmt.Fprintf(b, "Param %s\n", param.Name)
			if param.Default != nil {
				dumpNode(b, param.Default, depth+2)
			}
		}
		dumpNode(b, n.Body, depth+1)
	case *IfStmt:
		b.WriteString("If\n")
		dumpNode(b, n.Test, depth+1)
		dumpNode(b, n.Consequent, depth+1)
		if n.Alternate != nil {
			dumpNode(b, n.Alternate, depth+1)
		}
	case *WhileStmt:
		b.WriteString("While\n")
		dumpNode(b, n.Test, depth+1)
		dumpNode(b, n.Body, depth+1)
	case *DoWhileStmt:
		b.WriteString("DoWhile\n")
		dumpNode(b, n.Body, depth+1)
		dumpNode(b, n.Test, depth+1)
	case *ForStmt:
		b.WriteString("For\n")
		if n.Init != nil {
			dumpNode(b, n.Init, depth+1)
		}
		if n.Test != nil {
			dumpNode(b, n.Test, depth+1)
		}
		if n.Update != nil {
			dumpNode(b, n.Update, depth+1)
		}
		dumpNode(b, n.Body, depth+1)
	case *ReturnStmt:
		b.WriteString("Return\n")
		if n.Value != nil {
			dumpNode(b, n.Value, depth+1)
		}
	case *BreakStmt:
		b.WriteString("Break\n")
	case *ContinueStmt:
		b.WriteString("Continue\n")
	case *ThrowStmt:
		b.WriteString("Throw\n")
		dumpNode(b, n.Value, depth+1)
	case *TryStmt:
		b.WriteString("Try\n")
		dumpNode(b, n.Block, depth+1)
		if n.Handler != nil {
			indent(b, depth+1)
			fmt.Fprintf(b, "Catch %s\n", n.CatchParam)
			dumpNode(b, n.Handler, depth+2)
		}
		if n.Finalizer != nil {
			indent(b, depth+1)
			b.WriteString("Finally\n")
			dumpNode(b, n.Finalizer, depth+2)
		}
	case *GlobalStmt:
		b.WriteString("Global\n")
		dumpNode(b, n.Assignment, depth+1)
	case *ExportStmt:
		b.WriteString("Export\n")
		dumpNode(b, n.Value, depth+1)
	default:
		fmt.Fprintf(b, "<unknown node %T>\n", node)
	}
}
