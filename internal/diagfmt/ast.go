package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"fglsense/internal/ast"
	"fglsense/internal/source"
)

type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Name     string          `json:"name,omitempty"`
	Span     source.Span     `json:"span"`
	Complete bool            `json:"complete"`
	Exprs    []ASTExprOutput `json:"exprs,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

type ASTExprOutput struct {
	Kind string      `json:"kind"`
	Text string      `json:"text"`
	Span source.Span `json:"span"`
}

// FormatASTPretty печатает дерево узлов с выражениями каждого узла.
func FormatASTPretty(w io.Writer, tree *ast.Tree, file *source.File) error {
	root := tree.Node(tree.Root)
	if root == nil {
		return fmt.Errorf("empty tree")
	}
	fmt.Fprintf(w, "%s (span: %s)\n", file.Path, formatSpan(root.Span, file))
	printChildren(w, tree, file, root.Children, "")
	return nil
}

func printChildren(w io.Writer, tree *ast.Tree, file *source.File, children []ast.NodeID, prefix string) {
	for i, id := range children {
		n := tree.Node(id)
		if n == nil {
			continue
		}
		branch, next := "├─ ", "│  "
		if i == len(children)-1 {
			branch, next = "└─ ", "   "
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, branch, nodeLabel(tree, file, n))
		for _, e := range n.Exprs {
			if x := tree.Expr(e); x != nil {
				fmt.Fprintf(w, "%s%s· %s %q\n", prefix, next, x.Kind, tree.ExprText(file, e))
			}
		}
		printChildren(w, tree, file, n.Children, prefix+next)
	}
}

func nodeLabel(tree *ast.Tree, file *source.File, n *ast.Node) string {
	var sb strings.Builder
	sb.WriteString(n.Kind.String())
	if n.Name != "" {
		sb.WriteString(" ")
		sb.WriteString(n.Name)
	}
	if tr := typeRefOf(tree, n); tr != nil {
		sb.WriteString(": ")
		sb.WriteString(tr.Name)
	}
	fmt.Fprintf(&sb, " (span: %s)", formatSpan(n.Span, file))
	if !n.Complete {
		sb.WriteString(" [incomplete]")
	}
	return sb.String()
}

func typeRefOf(tree *ast.Tree, n *ast.Node) *ast.TypeRef {
	if !n.Type.IsValid() {
		return nil
	}
	return tree.TypeRef(n.Type)
}

// FormatASTJSON выводит дерево в JSON.
func FormatASTJSON(w io.Writer, tree *ast.Tree, file *source.File) error {
	if tree.Node(tree.Root) == nil {
		return fmt.Errorf("empty tree")
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(nodeJSON(tree, file, tree.Root))
}

func nodeJSON(tree *ast.Tree, file *source.File, id ast.NodeID) ASTNodeOutput {
	n := tree.Node(id)
	out := ASTNodeOutput{
		Type:     n.Kind.String(),
		Name:     n.Name,
		Span:     n.Span,
		Complete: n.Complete,
	}
	for _, e := range n.Exprs {
		if x := tree.Expr(e); x != nil {
			out.Exprs = append(out.Exprs, ASTExprOutput{Kind: x.Kind.String(), Text: tree.ExprText(file, e), Span: x.Span})
		}
	}
	for _, c := range n.Children {
		if tree.Node(c) != nil {
			out.Children = append(out.Children, nodeJSON(tree, file, c))
		}
	}
	return out
}

func formatSpan(span source.Span, file *source.File) string {
	if file == nil {
		return fmt.Sprintf("%d-%d", span.Start, span.End)
	}
	start, end := file.LineCol(span.Start), file.LineCol(span.End)
	return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
}
