package sdr

import "strings"

// KV is one key/value pair from a SoapySDR kwargs string.
type KV struct {
	Key   string
	Value string
}

// Kwargs is an ordered list of key/value pairs.
type Kwargs []KV

// ParseKwargs splits a SoapySDR kwargs string of the form
// "name1=value1,name2=value2". Order is preserved. Entries without an '='
// or with an empty key are dropped; surrounding whitespace is trimmed.
func ParseKwargs(s string) Kwargs {
	var out Kwargs
	for _, part := range strings.Split(s, ",") {
		eq := strings.Index(part, "=")
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(part[:eq])
		if key == "" {
			continue
		}
		out = append(out, KV{Key: key, Value: strings.TrimSpace(part[eq+1:])})
	}
	return out
}

// Map flattens the pairs into a map. Later duplicates win.
func (k Kwargs) Map() map[string]string {
	m := make(map[string]string, len(k))
	for _, kv := range k {
		m[kv.Key] = kv.Value
	}
	return m
}

// String renders the pairs back into kwargs form.
func (k Kwargs) String() string {
	parts := make([]string, 0, len(k))
	for _, kv := range k {
		parts = append(parts, kv.Key+"="+kv.Value)
	}
	return strings.Join(parts, ",")
}
