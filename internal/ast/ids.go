package ast

type (
	NodeID    uint32
	ExprID    uint32
	PayloadID uint32
)

const (
	NoNodeID    NodeID    = 0
	NoExprID    ExprID    = 0
	NoPayloadID PayloadID = 0
)

func (id NodeID) IsValid() bool    { return id != NoNodeID }
func (id ExprID) IsValid() bool    { return id != NoExprID }
func (id PayloadID) IsValid() bool { return id != NoPayloadID }
