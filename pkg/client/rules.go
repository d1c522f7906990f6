package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Rule struct {
	Key  string
	Text string
}

// Rules keeps the coupon rules in the order the store wrote them. The API
// sends them as a JSON object, so decoding walks the tokens instead of going
// through a map.
type Rules []Rule

// Get returns the text of the rule with the given key.
func (r Rules) Get(key string) (string, bool) {
	for _, rule := range r {
		if rule.Key == key {
			return rule.Text, true
		}
	}
	return "", false
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
		return fmt.Errorf("regras: expected object, got %v", tok)
	}
	out := Rules{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("regras: expected key, got %v", tok)
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("regras: value of %q: %w", key, err)
		}
		out = append(out, Rule{Key: key, Text: text})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}
