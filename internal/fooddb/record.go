package fooddb

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is a single food entry keyed by its Chinese name.
type Record struct {
	Zh  string `json:"zh"`
	En  string `json:"en"`
	Cal string `json:"cal"`
}

// UnmarshalJSON accepts files written by older tooling, where en may be null
// and cal may be a bare number instead of a string.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Zh  *string         `json:"zh"`
		En  *string         `json:"en"`
		Cal json.RawMessage `json:"cal"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Record{}
	if raw.Zh != nil {
		r.Zh = *raw.Zh
	}
	if raw.En != nil {
		r.En = *raw.En
	}

	cal := bytes.TrimSpace(raw.Cal)
	switch {
	case len(cal) == 0 || bytes.Equal(cal, []byte("null")):
		// Missing calories compare as changed on the next sync
	case cal[0] == '"':
		if err := json.Unmarshal(cal, &r.Cal); err != nil {
			return fmt.Errorf("invalid cal for %q: %w", r.Zh, err)
		}
	default:
		var n json.Number
		if err := json.Unmarshal(cal, &n); err != nil {
			return fmt.Errorf("invalid cal for %q: %w", r.Zh, err)
		}
		r.Cal = n.String()
	}

	return nil
}

// Index maps records by Chinese name. Records without a name are ignored and
// a later record wins over an earlier one with the same name.
func Index(records []Record) map[string]Record {
	index := make(map[string]Record, len(records))
	for _, rec := range records {
		if rec.Zh == "" {
			continue
		}
		index[rec.Zh] = rec
	}
	return index
}
