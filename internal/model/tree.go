package model

// TermCodeNode is one node of the concept closure tree. Expanding a term
// code yields the codes of the whole subtree rooted at it, so a concept
// covers all of its narrower codes.
type TermCodeNode struct {
	TermCode TermCode        `json:"termCode"`
	Context  string          `json:"context"`
	Children []*TermCodeNode `json:"children,omitempty"`
}

// Expand returns the contextual term codes of the subtree rooted at the
// node matching key, in depth-first order. Returns nil when the key does
// not occur in the tree.
func (n *TermCodeNode) Expand(key ContextualTermCode) []ContextualTermCode {
	if n == nil {
		return nil
	}
	if n.Context == key.Context && n.TermCode.key() == key.TermCode.key() {
		return n.subtree()
	}
	for _, child := range n.Children {
		if expansion := child.Expand(key); expansion != nil {
			return expansion
		}
	}
	return nil
}

func (n *TermCodeNode) subtree() []ContextualTermCode {
	result := []ContextualTermCode{{Context: n.Context, TermCode: n.TermCode}}
	for _, child := range n.Children {
		result = append(result, child.subtree()...)
	}
	return result
}
