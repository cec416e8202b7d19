// Package model defines the JSON shapes printed by the CLI and returned by
// the MCP tools.
package model

// ModeHints is the hint list of one mode, most recently used first. It is
// also the export/import format.
type ModeHints struct {
	Mode  string   `json:"mode"`
	Hints []string `json:"hints"`
}

// QueryResult answers a prefix query.
type QueryResult struct {
	Mode   string   `json:"mode"`
	Prefix string   `json:"prefix"`
	Hints  []string `json:"hints"`
}

// Ack confirms a mutation.
type Ack struct {
	OK    bool   `json:"ok"`
	Mode  string `json:"mode,omitempty"`
	Text  string `json:"text,omitempty"`
	Count int    `json:"count,omitempty"`
}
