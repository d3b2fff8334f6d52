package hl7v2

// Node is one element of an XML-encoded HL7 v2 message: a segment group, a
// segment, a field or a component. A node either carries child nodes or a
// leaf text value. Empty leaves are significant and are always emitted.
type Node struct {
	Tag      string
	Text     string
	Children []*Node
}

// NewNode returns a detached node with the given tag.
func NewNode(tag string) *Node {
	return &Node{Tag: tag}
}

// Add appends an empty child and returns it so nested components can be
// filled in.
func (n *Node) Add(tag string) *Node {
	child := &Node{Tag: tag}
	n.Children = append(n.Children, child)
	return child
}

// Set appends a leaf carrying text and returns the receiver, so calls chain:
//
//	obr.Add("OBR.4").Set("CE.1", code).Set("CE.2", name).Set("CE.3", "L")
func (n *Node) Set(tag, text string) *Node {
	n.Children = append(n.Children, &Node{Tag: tag, Text: text})
	return n
}

// Empty appends one empty leaf per tag and returns the receiver.
func (n *Node) Empty(tags ...string) *Node {
	for _, tag := range tags {
		n.Children = append(n.Children, &Node{Tag: tag})
	}
	return n
}

// Append attaches an already built subtree and returns it.
func (n *Node) Append(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Child returns the first direct child with the given tag, or nil.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// Path follows a chain of direct-child tags, returning nil as soon as a step
// is missing.
func (n *Node) Path(tags ...string) *Node {
	cur := n
	for _, tag := range tags {
		if cur = cur.Child(tag); cur == nil {
			return nil
		}
	}
	return cur
}

// Find returns the first node with the given tag in depth-first order,
// including the receiver itself.
func (n *Node) Find(tag string) *Node {
	var found *Node
	n.Walk(func(node *Node) bool {
		if node.Tag == tag {
			found = node
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node with the given tag in depth-first order.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	n.Walk(func(node *Node) bool {
		if node.Tag == tag {
			out = append(out, node)
		}
		return true
	})
	return out
}

// Walk visits the tree depth-first. Returning false from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}
