package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Rule struct {
	Key  string
	Text string
}

// Rules is an ordered key -> text mapping. It travels as a JSON object whose
// member order is preserved in both directions.
type Rules []Rule

func (r Rules) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rule := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(rule.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(rule.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Rules) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("rules: expected object, got %v", tok)
	}
	out := Rules{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("rules: expected key, got %v", tok)
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("rules: value of %q: %w", key, err)
		}
		out = append(out, Rule{Key: key, Text: text})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}

// Clone copies the rules so a snapshot never aliases the template's slice.
func (r Rules) Clone() Rules {
	if r == nil {
		return nil
	}
	out := make(Rules, len(r))
	copy(out, r)
	return out
}
