// Package lineage contains the fork/detach bookkeeping for agent and workflow definitions.
// Lineage is a tree over persisted rows: a fork always points at an existing source.
package lineage

import (
	"fmt"
	"maps"

	"github.com/example/workhub/internal/apperr"
)

// Kind distinguishes agent definitions from workflow definitions.
type Kind string

const (
	KindAgent    Kind = "agent"
	KindWorkflow Kind = "workflow"
)

// ParseKind validates a raw kind string.
func ParseKind(raw string) (Kind, error) {
	switch k := Kind(raw); k {
	case KindAgent, KindWorkflow:
		return k, nil
	default:
		return "", apperr.Validation("invalid config kind %q (expected agent or workflow)", raw)
	}
}

// Node is the lineage-relevant view of a definition.
type Node struct {
	ID            string
	Kind          Kind
	Name          string
	Version       int
	Content       map[string]any
	ParentID      string
	LineageRootID string
	Detached      bool
}

// RootOf returns the lineage root of n; a node without a recorded root is its own root.
func RootOf(n Node) string {
	if n.LineageRootID != "" {
		return n.LineageRootID
	}
	return n.ID
}

// Fork returns a new node copying source's kind and content.
// The fork's parent is source and its root is source's root.
func Fork(source Node, newID, name string) Node {
	if name == "" {
		name = fmt.Sprintf("%s (fork)", source.Name)
	}
	return Node{
		ID:            newID,
		Kind:          source.Kind,
		Name:          name,
		Version:       1,
		Content:       maps.Clone(source.Content),
		ParentID:      source.ID,
		LineageRootID: RootOf(source),
	}
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to a conflict error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return apperr.Conflict("%s", r.Reason)
}

// CanDetach evaluates whether a node can stop tracking its parent.
// Rules:
// - Node must have a parent
// - Node must not already be detached
func CanDetach(n Node) GuardResult {
	if n.ParentID == "" {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("config %s is not a fork", n.ID)}
	}
	if n.Detached {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("config %s is already detached", n.ID)}
	}
	return GuardResult{Allowed: true}
}
