package cybersource

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Body is a decoded processor response. Values keep the shapes produced by
// encoding/json: map[string]any, []any, string, float64, bool and nil.
type Body map[string]any

// Envelope is the normalized result of a single processor call.
//
// OK is true iff Status is in [200,300). Status is 0 when no HTTP response
// was received, in which case Body carries {"message": <transport error>}.
// When the response body is not a JSON object Body carries {"raw": <body>}.
type Envelope struct {
	OK     bool
	Status int
	Body   Body
}

// NewEnvelope classifies status and parses raw as a JSON object.
func NewEnvelope(status int, raw []byte) Envelope {
	return Envelope{
		OK:     status >= 200 && status < 300,
		Status: status,
		Body:   ParseBody(raw),
	}
}

// TransportFailure builds the envelope for a call that never got a response.
func TransportFailure(err error) Envelope {
	return Envelope{
		OK:     false,
		Status: 0,
		Body:   Body{"message": err.Error()},
	}
}

// ParseBody decodes raw as a JSON object, falling back to {"raw": raw}.
func ParseBody(raw []byte) Body {
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed == nil {
		return Body{"raw": string(raw)}
	}
	return Body(parsed)
}

// Lookup walks nested objects and arrays. Numeric path elements index into
// arrays. It reports false when any step is missing or has the wrong shape.
func (b Body) Lookup(path ...string) (any, bool) {
	var cur any = map[string]any(b)
	for _, p := range path {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[p]
			if !ok {
				return nil, false
			}
			cur = v
		case Body:
			v, ok := node[p]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(p)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// String returns the value at path when it is a non-empty string. Numbers
// and booleans are rendered in their JSON form so that identifiers the
// processor sometimes sends unquoted are still usable.
func (b Body) String(path ...string) (string, bool) {
	v, ok := b.Lookup(path...)
	if !ok {
		return "", false
	}

	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return "", false
	}

	if s == "" {
		return "", false
	}
	return s, true
}

// StringOr returns the string at path or def.
func (b Body) StringOr(def string, path ...string) string {
	if s, ok := b.String(path...); ok {
		return s
	}
	return def
}

// Object returns the nested object at path.
func (b Body) Object(path ...string) (Body, bool) {
	v, ok := b.Lookup(path...)
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case map[string]any:
		return Body(t), true
	case Body:
		return t, true
	}
	return nil, false
}

// JSON re-encodes the body for persistence.
func (b Body) JSON() []byte {
	raw, err := json.Marshal(b)
	if err != nil {
		return []byte("{}")
	}
	return raw
}

// FailureReason extracts a human-readable reason from the known processor
// error shapes: body.message, then body.details[0].reason.
func (e Envelope) FailureReason() string {
	if msg, ok := e.Body.String("message"); ok {
		return msg
	}
	if reason, ok := e.Body.String("details", "0", "reason"); ok {
		return reason
	}
	return ""
}

func (e Envelope) String() string {
	return fmt.Sprintf("envelope(ok=%t status=%d %s)", e.OK, e.Status, strings.TrimSpace(e.FailureReason()))
}
