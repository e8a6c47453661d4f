package core

import (
	"encoding/json"
	"io"
)

// MarshalMatches pretty-prints matches as JSON for humans or pipelines.
func MarshalMatches(w io.Writer, matches []UsageMatch) error {
	if matches == nil {
		matches = []UsageMatch{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(matches)
}

// UnmarshalMatches decodes matches JSON, useful for ingestion tests.
func UnmarshalMatches(r io.Reader) ([]UsageMatch, error) {
	var ms []UsageMatch
	if err := json.NewDecoder(r).Decode(&ms); err != nil {
		return nil, err
	}
	return ms, nil
}
