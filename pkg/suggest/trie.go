package suggest

import (
	"context"
	"strings"
)

// TrieSource is an in-memory Source over a fixed suggestion set, matched by
// case-folded prefix.
type TrieSource struct {
	root *node
}

type node struct {
	children map[rune]*node
	hits     []Suggestion
}

func NewTrieSource(suggestions ...Suggestion) *TrieSource {
	t := &TrieSource{root: newNode()}
	for _, s := range suggestions {
		t.Insert(s)
	}
	return t
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

func (t *TrieSource) Insert(s Suggestion) {
	n := t.root
	for _, r := range strings.ToLower(s.Value) {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
	}
	n.hits = append(n.hits, s)
}

func (t *TrieSource) Lookup(_ context.Context, prefix string) ([]Suggestion, error) {
	n := t.root
	for _, r := range strings.ToLower(prefix) {
		child, ok := n.children[r]
		if !ok {
			return nil, nil
		}
		n = child
	}
	return collect(n, nil), nil
}

func collect(n *node, acc []Suggestion) []Suggestion {
	acc = append(acc, n.hits...)
	for _, child := range n.children {
		acc = collect(child, acc)
	}
	return acc
}
