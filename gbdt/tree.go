package gbdt

import "math"

// NodeType represents the type of a tree node
type NodeType int

const (
	// LeafNode represents a terminal node with a value
	LeafNode NodeType = iota
	// NumericalNode represents a node with numerical split
	NumericalNode
)

// Node represents a single node in a decision tree
type Node struct {
	NodeID     int
	ParentID   int // -1 for root
	LeftChild  int // -1 if leaf
	RightChild int // -1 if leaf
	NodeType   NodeType

	// Split information (for non-leaf nodes)
	SplitFeature int
	Threshold    float64
	DefaultLeft  bool // direction for missing values
	Gain         float64

	// Leaf information (for leaf nodes)
	LeafValue float64
	LeafCount int
}

// IsLeaf returns true if the node is a leaf node
func (n *Node) IsLeaf() bool {
	return n.LeftChild == -1 && n.RightChild == -1
}

// Tree represents a single decision tree in the ensemble
type Tree struct {
	TreeIndex     int
	NumLeaves     int
	ShrinkageRate float64 // learning rate applied to this tree
	Nodes         []Node
}

// Predict makes a prediction for a single sample using this tree. The result
// already includes the shrinkage rate.
func (t *Tree) Predict(features []float64) float64 {
	nodeID := 0
	for nodeID >= 0 && nodeID < len(t.Nodes) {
		node := &t.Nodes[nodeID]
		if node.IsLeaf() {
			return node.LeafValue * t.ShrinkageRate
		}

		v := features[node.SplitFeature]
		switch {
		case math.IsNaN(v):
			if node.DefaultLeft {
				nodeID = node.LeftChild
			} else {
				nodeID = node.RightChild
			}
		case v <= node.Threshold:
			nodeID = node.LeftChild
		default:
			nodeID = node.RightChild
		}
	}
	return 0
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(id int) int
	walk = func(id int) int {
		n := &t.Nodes[id]
		if n.IsLeaf() {
			return 0
		}
		l, r := walk(n.LeftChild), walk(n.RightChild)
		if l > r {
			return l + 1
		}
		return r + 1
	}
	return walk(0)
}
