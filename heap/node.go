package heap

import "github.com/cottand/assay/util"

// Node is a syntax tree that has not been allocated yet.
// Once allocated it remembers its owner, so allocating it again is free
// and allocating it into a different heap fails.
type Node struct {
	Op       Op
	Payload  any
	Children []*Node

	owner  *Heap
	handle Handle
}

// NewNode builds an unallocated node
func NewNode(op Op, payload any, children ...*Node) *Node {
	return &Node{Op: op, Payload: payload, Children: children, handle: Nil}
}

// Handle returns the handle the node was allocated to, and whether it was allocated at all
func (n *Node) Handle() (Handle, bool) {
	return n.handle, n.owner != nil
}

// AllocateTree allocates n and its children bottom-up
func (h *Heap) AllocateTree(n *Node) (Handle, error) {
	if n.owner == h {
		return n.handle, nil
	}
	if n.owner != nil {
		return Nil, ErrForeignNode
	}
	children := make([]Handle, len(n.Children))
	for i, child := range n.Children {
		handle, err := h.AllocateTree(child)
		if err != nil {
			return Nil, err
		}
		children[i] = handle
	}
	n.handle = h.Allocate(n.Op, n.Payload, children...)
	n.owner = h
	return n.handle, nil
}

// Tree rebuilds the unallocated form of handle, owned by h
func (h *Heap) Tree(handle Handle) *Node {
	item := h.Get(handle)
	children := make([]*Node, len(item.Children))
	for i, c := range item.Children {
		children[i] = h.Tree(c)
	}
	return &Node{Op: item.Op, Payload: item.Payload, Children: children, owner: h, handle: handle}
}

// Walk visits handle and its descendants in pre-order.
// When visit returns false the descendants of that handle are skipped.
// Shared sub-trees are visited once per occurrence.
func (h *Heap) Walk(handle Handle, visit func(Handle) bool) {
	pending := &util.Stack[Handle]{}
	pending.Push(handle)
	for {
		next, ok := pending.Pop()
		if !ok {
			return
		}
		if !visit(next) {
			continue
		}
		for c := range util.Reverse(h.Get(next).Children) {
			pending.Push(c)
		}
	}
}
