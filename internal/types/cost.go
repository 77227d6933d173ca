package types

import "sync"

// Cost is the token accounting for one or more LLM calls.
type Cost struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
	Calls            int `json:"calls"`
}

// Add merges another cost delta into c.
func (c *Cost) Add(other Cost) {
	c.PromptTokens += other.PromptTokens
	c.CompletionTokens += other.CompletionTokens
	c.TotalTokens += other.TotalTokens
	c.Calls += other.Calls
}

// IsZero reports whether no cost has been recorded.
func (c Cost) IsZero() bool {
	return c.TotalTokens == 0 && c.Calls == 0
}

// CostAccumulator collects cost deltas across a pipeline run. Every failure
// path returns whatever was accumulated up to the failure, so partial cost
// is never lost.
type CostAccumulator struct {
	mu    sync.Mutex
	total Cost
}

// NewCostAccumulator returns an empty accumulator.
func NewCostAccumulator() *CostAccumulator {
	return &CostAccumulator{}
}

// Record adds a cost delta.
func (a *CostAccumulator) Record(delta Cost) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total.Add(delta)
}

// Total returns the accumulated cost so far.
func (a *CostAccumulator) Total() Cost {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}
