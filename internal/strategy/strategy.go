// Package strategy defines translation strategies (declarative DAGs of LLM
// calls, parses, and validations), a registry resolving them by ID or
// content hash, and the executor that interprets them.
package strategy

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Operation discriminates assert pipelines from query pipelines.
type Operation string

const (
	OpAssert Operation = "Assert"
	OpQuery  Operation = "Query"
)

// NodeKind tags the variant of a Node.
type NodeKind string

const (
	KindLLMCall         NodeKind = "LLMCall"
	KindParseJSON       NodeKind = "ParseJSON"
	KindSIRTransform    NodeKind = "SIRTransform"
	KindValidateClauses NodeKind = "ValidateClauses"
	KindReturn          NodeKind = "Return"
)

// Node is one step of a strategy. Exactly the fields for its Kind are set.
type Node struct {
	Kind NodeKind `json:"kind"`

	// LLMCall: prompt template name, placeholder -> context-name bindings,
	// and the context name the response text is bound to.
	PromptName    string            `json:"promptName,omitempty"`
	InputBindings map[string]string `json:"inputBindings,omitempty"`
	OutputName    string            `json:"outputName,omitempty"`

	// ParseJSON / SIRTransform / ValidateClauses / Return: the context name
	// consumed. ParseJSON and SIRTransform also bind OutputName.
	Input string `json:"input,omitempty"`

	// ParseJSON only, advisory.
	SchemaTag string `json:"schemaTag,omitempty"`
}

// Strategy is an immutable, content-addressed translation pipeline.
type Strategy struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Operation Operation `json:"operation"`
	Nodes     []Node    `json:"nodes"`
}

// hashDoc fixes the canonical field set for fingerprinting. The ID is
// excluded: two registrations of the same definition share a hash.
type hashDoc struct {
	Name      string    `json:"name"`
	Operation Operation `json:"operation"`
	Nodes     []Node    `json:"nodes"`
}

// Hash returns the hex SHA-256 fingerprint of the definition. Map keys are
// serialized in sorted order, so the fingerprint is stable.
func (s *Strategy) Hash() string {
	data, err := json.Marshal(hashDoc{Name: s.Name, Operation: s.Operation, Nodes: s.Nodes})
	if err != nil {
		// Node contains only marshallable types; this cannot happen.
		panic(fmt.Sprintf("strategy %s: %v", s.ID, err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// validate checks structural well-formedness at registration time.
func (s *Strategy) validate() error {
	if s.ID == "" {
		return fmt.Errorf("strategy id must not be empty")
	}
	if s.Operation != OpAssert && s.Operation != OpQuery {
		return fmt.Errorf("strategy %s: unknown operation %q", s.ID, s.Operation)
	}
	if len(s.Nodes) == 0 {
		return fmt.Errorf("strategy %s: no nodes", s.ID)
	}

	for i, node := range s.Nodes {
		switch node.Kind {
		case KindLLMCall:
			if node.PromptName == "" || node.OutputName == "" {
				return fmt.Errorf("strategy %s node %d: LLMCall needs promptName and outputName", s.ID, i)
			}
		case KindParseJSON, KindSIRTransform:
			if node.Input == "" || node.OutputName == "" {
				return fmt.Errorf("strategy %s node %d: %s needs input and outputName", s.ID, i, node.Kind)
			}
		case KindValidateClauses, KindReturn:
			if node.Input == "" {
				return fmt.Errorf("strategy %s node %d: %s needs input", s.ID, i, node.Kind)
			}
		default:
			return fmt.Errorf("strategy %s node %d: unknown kind %q", s.ID, i, node.Kind)
		}
	}

	last := s.Nodes[len(s.Nodes)-1]
	if last.Kind != KindReturn {
		return fmt.Errorf("strategy %s: last node must be Return, got %s", s.ID, last.Kind)
	}
	for i, node := range s.Nodes[:len(s.Nodes)-1] {
		if node.Kind == KindReturn {
			return fmt.Errorf("strategy %s node %d: Return before end of pipeline", s.ID, i)
		}
	}
	return nil
}

// Info is the externally visible description of a registered strategy.
type Info struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Hash      string    `json:"hash"`
	Operation Operation `json:"operation"`
	NodeCount int       `json:"nodeCount"`
}
