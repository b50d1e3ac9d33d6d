package ast

import (
	"fmt"
	"strings"

	"github.com/loxlang/lox/internal/token"
)

// PrintTree writes an indented, human-readable tree for node to stdout. Used
// by the driver's debug mode; not part of the language's observable
// behavior.
func PrintTree(node any) {
	printNode(node, 0)
}

func printNode(node any, indent int) {
	pad := strings.Repeat(" ", indent)
	switch n := node.(type) {
	case []Stmt:
		for _, s := range n {
			printNode(s, indent)
		}
	case *Block:
		fmt.Printf("%sBlock\n", pad)
		for _, s := range n.Stmts {
			printNode(s, indent+2)
		}
	case *Class:
		fmt.Printf("%sClass %s\n", pad, n.Name.Lexeme)
		if n.Superclass != nil {
			fmt.Printf("%s< %s\n", pad+"  ", n.Superclass.Name.Lexeme)
		}
		for _, m := range n.Methods {
			printNode(m, indent+2)
		}
	case *Expression:
		fmt.Printf("%sExprStmt\n", pad)
		printNode(n.Expr, indent+2)
	case *Function:
		fmt.Printf("%sFunction %s(%s)\n", pad, n.Name.Lexeme, paramList(n.Params))
		for _, s := range n.Body {
			printNode(s, indent+2)
		}
	case *If:
		fmt.Printf("%sIf\n", pad)
		printNode(n.Cond, indent+2)
		printNode(n.Then, indent+2)
		if n.Else != nil {
			fmt.Printf("%sElse\n", pad)
			printNode(n.Else, indent+2)
		}
	case *Print:
		fmt.Printf("%sPrint\n", pad)
		printNode(n.Expr, indent+2)
	case *Return:
		fmt.Printf("%sReturn\n", pad)
		if n.Value != nil {
			printNode(n.Value, indent+2)
		}
	case *Var:
		fmt.Printf("%sVar %s\n", pad, n.Name.Lexeme)
		if n.Initializer != nil {
			printNode(n.Initializer, indent+2)
		}
	case *While:
		fmt.Printf("%sWhile\n", pad)
		printNode(n.Cond, indent+2)
		printNode(n.Body, indent+2)

	case *Assign:
		fmt.Printf("%sAssign %s\n", pad, n.Name.Lexeme)
		printNode(n.Value, indent+2)
	case *Binary:
		fmt.Printf("%sBinary %s\n", pad, n.Op.Lexeme)
		printNode(n.Left, indent+2)
		printNode(n.Right, indent+2)
	case *Call:
		fmt.Printf("%sCall\n", pad)
		printNode(n.Callee, indent+2)
		for _, a := range n.Args {
			printNode(a, indent+2)
		}
	case *Get:
		fmt.Printf("%sGet .%s\n", pad, n.Name.Lexeme)
		printNode(n.Object, indent+2)
	case *Grouping:
		fmt.Printf("%sGrouping\n", pad)
		printNode(n.Expression, indent+2)
	case *Lambda:
		fmt.Printf("%sLambda(%s)\n", pad, paramList(n.Params))
		for _, s := range n.Body {
			printNode(s, indent+2)
		}
	case *Literal:
		fmt.Printf("%sLiteral %#v\n", pad, n.Value)
	case *Logical:
		fmt.Printf("%sLogical %s\n", pad, n.Op.Lexeme)
		printNode(n.Left, indent+2)
		printNode(n.Right, indent+2)
	case *Set:
		fmt.Printf("%sSet .%s\n", pad, n.Name.Lexeme)
		printNode(n.Object, indent+2)
		printNode(n.Value, indent+2)
	case *Super:
		fmt.Printf("%sSuper.%s\n", pad, n.Method.Lexeme)
	case *This:
		fmt.Printf("%sThis\n", pad)
	case *Unary:
		fmt.Printf("%sUnary %s\n", pad, n.Op.Lexeme)
		printNode(n.Right, indent+2)
	case *Variable:
		fmt.Printf("%sVariable %s\n", pad, n.Name.Lexeme)

	case nil:
		// omitted optional child, nothing to print
	default:
		fmt.Printf("%s<unknown node %T>\n", pad, n)
	}
}

func paramList(params []token.Token) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Lexeme
	}
	return strings.Join(names, ", ")
}
