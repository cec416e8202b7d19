package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string     `json:"db_path"`
	DBSizeBytes int64      `json:"db_size_bytes"`
	TotalKeys   int        `json:"total_keys"`
	TotalBytes  int64      `json:"total_bytes"`
	Keys        []KeyStats `json:"keys"`
}

// KeyStats describes one stored value.
type KeyStats struct {
	Key       string `json:"key"`
	Bytes     int    `json:"bytes"`
	WriteID   string `json:"write_id"`
	UpdatedAt string `json:"updated_at"`
}

// Stats returns database statistics for keys starting with prefix.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath, prefix string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, length(value), write_id, updated_at
		FROM kv WHERE instr(key, ?) = 1
		ORDER BY updated_at DESC`, prefix)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var k KeyStats
		if err := rows.Scan(&k.Key, &k.Bytes, &k.WriteID, &k.UpdatedAt); err != nil {
			return st, err
		}
		st.TotalKeys++
		st.TotalBytes += int64(k.Bytes)
		st.Keys = append(st.Keys, k)
	}

	return st, rows.Err()
}
