package shape

import "strings"

// Nullability is a tri-state nullability flag. Yes means nullable.
type Nullability int8

const (
	Unknown Nullability = iota
	Yes
	No
)

func (n Nullability) String() string {
	switch n {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unknown"
	}
}

// Known reports whether the flag carries an explicit decision.
func (n Nullability) Known() bool {
	return n == Yes || n == No
}

// Or returns n when known, otherwise fallback.
func (n Nullability) Or(fallback Nullability) Nullability {
	if n.Known() {
		return n
	}
	return fallback
}

// FromBool converts a nullable flag to Yes or No.
func FromBool(nullable bool) Nullability {
	if nullable {
		return Yes
	}
	return No
}

// ParseNullability parses annotation text. Accepted spellings are
// yes/nullable/true/?, no/nonnull/non-null/false/!, and unknown/empty.
// ok is false for anything else.
func ParseNullability(s string) (n Nullability, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "nullable", "true", "?":
		return Yes, true
	case "no", "nonnull", "non-null", "false", "!":
		return No, true
	case "", "unknown", "_":
		return Unknown, true
	default:
		return Unknown, false
	}
}

// ParseVector parses a comma separated nullability list such as "no,yes,_".
// A single malformed entry rejects the whole list.
func ParseVector(s string) ([]Nullability, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	parts := strings.Split(s, ",")
	out := make([]Nullability, 0, len(parts))
	for _, p := range parts {
		n, ok := ParseNullability(p)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// VectorFromBools converts collected nullability into an explicit vector.
func VectorFromBools(flags []bool) []Nullability {
	out := make([]Nullability, len(flags))
	for i, f := range flags {
		out[i] = FromBool(f)
	}
	return out
}
