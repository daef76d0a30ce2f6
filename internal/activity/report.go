package activity

import (
	"encoding/json"
	"strconv"
	"strings"
)

// MatchReport is the end-of-match submission, one per finished match.
type MatchReport struct {
	Duration        float64            `json:"duration"`
	PercentComplete float64            `json:"percentComplete"`
	Extracted       bool               `json:"extracted"`
	Modifiers       []ModifierSelected `json:"modifiers"`
	MatchID         string             `json:"matchId"`
	Players         []PlayerReport     `json:"players"`
}

// ModifierSelected is one active (name, value) modifier pair.
type ModifierSelected struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PlayerReport is one participant's block inside a report.
type PlayerReport struct {
	PlayerID     uint32             `json:"playerId"`
	Activities   []Activity         `json:"activities"`
	Stats        map[string]float64 `json:"stats"`
	WavesInMatch uint32             `json:"wavesInMatch"`
	PresentAtEnd bool               `json:"presentAtEnd"`
}

// Activity is one typed event with a loosely typed attribute bag; numbers
// and strings both occur on the wire.
type Activity struct {
	Name       string                     `json:"name"`
	Attributes map[string]json.RawMessage `json:"attributes"`
}

// Attr returns the attribute normalized to a string: quoted strings are
// unquoted, numbers are rendered in decimal.
func (a *Activity) Attr(key string) (string, bool) {
	raw, ok := a.Attributes[key]
	if !ok {
		return "", false
	}
	s := strings.TrimSpace(string(raw))
	if len(s) >= 2 && s[0] == '"' {
		var out string
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", false
		}
		return out, true
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return s, true
	}
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10), true
	}
	return strconv.FormatFloat(n, 'f', -1, 64), true
}

// AttrMap flattens the attribute bag into normalized strings for
// descriptor matching.
func (a *Activity) AttrMap() map[string]string {
	out := make(map[string]string, len(a.Attributes))
	for key := range a.Attributes {
		if v, ok := a.Attr(key); ok {
			out[key] = v
		}
	}
	return out
}

// Score returns the activity's score attribute, zero when absent.
func (a *Activity) Score() uint32 {
	v, ok := a.Attr("score")
	if !ok {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}
