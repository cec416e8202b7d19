package hints

import (
	"encoding/json"
	"fmt"
)

// EncodeSnapshot serializes an ordered, newest-first list of hints.
func EncodeSnapshot(hints []string) ([]byte, error) {
	if hints == nil {
		hints = []string{}
	}
	b, err := json.Marshal(hints)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot parses a payload written by EncodeSnapshot.
func DecodeSnapshot(data []byte) ([]string, error) {
	var hints []string
	if err := json.Unmarshal(data, &hints); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if hints == nil {
		hints = []string{}
	}
	return hints, nil
}
