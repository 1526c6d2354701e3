// Package journal records bridge invocations as a content-addressed chain of
// nodes. Each node hashes its entry together with the hash of the node
// recorded before it, so rewriting any past entry changes every later hash.
package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Entry describes one completed invocation.
type Entry struct {
	Procedure string          `json:"procedure"`
	Args      json.RawMessage `json:"args,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`

	// Error and ErrorKind are set when the invocation failed.
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Failed reports whether the invocation returned an error.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Node is a single content-addressed journal record.
type Node struct {
	// Hash is the content-addressed identifier (SHA-256, hex-encoded)
	Hash string `json:"hash"`

	// ParentHash links to the previously recorded node.
	// This will be nil for the first node of a journal.
	ParentHash *string `json:"parent_hash"`

	Entry Entry `json:"entry"`
}

// NewNode creates a new node with the computed hash for entry.
func NewNode(entry Entry, parent *Node) *Node {
	n := &Node{
		Entry: entry,
	}

	if parent != nil {
		parentHash := parent.Hash
		n.ParentHash = &parentHash
	}

	n.Hash = n.computeHash()
	return n
}

// Verify reports whether the node's hash matches its content.
func (n *Node) Verify() bool {
	return n.Hash == n.computeHash()
}

type input struct {
	Entry  Entry  `json:"entry"`
	Parent string `json:"parent,omitempty"`
}

func (n *Node) computeHash() string {
	i := &input{
		Entry: n.Entry,
	}

	if n.ParentHash != nil {
		i.Parent = *n.ParentHash
	}

	// Canonical JSON encoding for deterministic hashing
	data, err := json.Marshal(i)
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
