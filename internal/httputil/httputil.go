package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// WriteJSON encodes data with the given status. A nil data writes no body.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(data)
}

// WriteError writes {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// ServerTiming adds a Server-Timing header entry per named duration.
func ServerTiming(w http.ResponseWriter, kv ...Timing) {
	if len(kv) == 0 {
		return
	}
	parts := make([]string, 0, len(kv))
	for _, p := range kv {
		parts = append(parts, fmt.Sprintf("%s;dur=%.1f", p.Name, float64(p.Dur.Microseconds())/1000))
	}
	w.Header().Add("Server-Timing", strings.Join(parts, ", "))
}

type Timing struct {
	Name string
	Dur  time.Duration
}

// ParseQueryList handles both repeated and comma-separated query params.
//
//	?department=GARD,LOT            → ["GARD","LOT"]
//	?department=GARD&department=LOT → ["GARD","LOT"]
func ParseQueryList(q map[string][]string, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// OptionalInt parses an optional integer query value. ok is false when the
// value is present but not an integer.
func OptionalInt(s string) (n *int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// OptionalString returns nil for an empty value.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
