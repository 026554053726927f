package types

import (
	"strings"

	"fglsense/internal/ast"
	"fglsense/internal/source"
)

// FromTypeRef converts a NodeTypeRef subtree into a Type. Record fields are
// the NodeVarDef children of the record node. dup is called for
// every record field whose name repeats an earlier one; the first field
// wins.
func FromTypeRef(tree *ast.Tree, f *source.File, id ast.NodeID, dup func(name string, sp source.Span)) *Type {
	tr := tree.TypeRef(id)
	if tr == nil {
		return nil
	}
	switch tr.Class {
	case ast.TypeScalar:
		t := Scalar(tr.Name)
		if len(tr.Args) > 0 {
			parts := make([]string, 0, len(tr.Args))
			for _, a := range tr.Args {
				parts = append(parts, tree.ExprText(f, a))
			}
			t.Size = strings.Join(parts, ",")
		}
		t.Qualifier = tr.Qualifier
		return t
	case ast.TypeNamed:
		return Named(tr.Name)
	case ast.TypeLike:
		return &Type{Kind: KindLike, Name: tr.LikeTable, LikeTable: tr.LikeTable, LikeColumn: tr.LikeColumn}
	case ast.TypeRecordLike:
		return &Type{Kind: KindLike, Name: tr.LikeTable, LikeTable: tr.LikeTable}
	case ast.TypeArray:
		t := &Type{Kind: KindArray, Array: tr.Array, Dims: tr.DimCount}
		if n := tree.Node(id); n != nil && len(n.Children) == 1 {
			t.Elem = FromTypeRef(tree, f, n.Children[0], dup)
		}
		return t
	case ast.TypeRecord:
		t := &Type{Kind: KindRecord}
		n := tree.Node(id)
		if n == nil {
			return t
		}
		for _, c := range n.Children {
			cn := tree.Node(c)
			if cn == nil || cn.Kind != ast.NodeVarDef {
				continue
			}
			ft := FromTypeRef(tree, f, cn.Type, dup)
			if !t.AddField(Field{Name: cn.Name, Type: ft, Span: cn.NameSpan}) && dup != nil {
				dup(cn.Name, cn.NameSpan)
			}
		}
		return t
	}
	return nil
}
