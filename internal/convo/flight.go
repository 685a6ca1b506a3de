package convo

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// The share page streams its loader data through the React Router flight
// protocol: a flat JSON array where objects hold interned keys ("_N" points
// at payload[N]) and integer values are references into the same array.
// The sentinel -5 encodes null.
var flightRe = regexp.MustCompile(`(?s)window\.__reactRouterContext\.streamController\.enqueue\("(\[.*?\])\\n"\)`)

const nullRef = -5

// flightPayload locates the flight payload inside the page's script
// elements and returns its still-escaped JSON text.
func flightPayload(body string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(body))
	if err == nil {
		var found string
		var walk func(n *html.Node) bool
		walk = func(n *html.Node) bool {
			if n.Type == html.ElementNode && n.Data == "script" {
				var sb strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						sb.WriteString(c.Data)
					}
				}
				if m := flightRe.FindStringSubmatch(sb.String()); m != nil {
					found = m[1]
					return true
				}
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if walk(c) {
					return true
				}
			}
			return false
		}
		if walk(doc) {
			return found, true
		}
	}
	// The payload occasionally survives html re-serialization boundaries
	// oddly; scan the raw document before giving up.
	if m := flightRe.FindStringSubmatch(body); m != nil {
		return m[1], true
	}
	return "", false
}

// decodePayload unescapes the captured JS string and decodes the flight
// array it contains.
func decodePayload(escaped string) ([]any, error) {
	var raw string
	if err := json.Unmarshal([]byte(`"`+escaped+`"`), &raw); err != nil {
		return nil, errMalformed("payload_string_decode_failed")
	}
	var payload []any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, errMalformed("payload_json_decode_failed")
	}
	return payload, nil
}

type resolver struct {
	payload []any
	memo    map[int]any
	active  map[int]bool
}

func newResolver(payload []any) *resolver {
	return &resolver{
		payload: payload,
		memo:    make(map[int]any),
		active:  make(map[int]bool),
	}
}

// index materializes payload[i], resolving interned keys and references.
func (r *resolver) index(i int) (any, error) {
	if v, ok := r.memo[i]; ok {
		return v, nil
	}
	if r.active[i] {
		return nil, errMalformed("payload_reference_cycle")
	}
	r.active[i] = true
	defer delete(r.active, i)

	var out any
	switch val := r.payload[i].(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for key, ref := range val {
			rv, err := r.ref(ref)
			if err != nil {
				return nil, err
			}
			m[r.key(key)] = rv
		}
		out = m
	case []any:
		l := make([]any, len(val))
		for j, item := range val {
			rv, err := r.ref(item)
			if err != nil {
				return nil, err
			}
			l[j] = rv
		}
		out = l
	default:
		out = val
	}

	r.memo[i] = out
	return out, nil
}

// ref resolves a single value: -5 is null, an in-range integer is a
// reference, everything else is a literal.
func (r *resolver) ref(v any) (any, error) {
	f, ok := v.(float64)
	if !ok {
		return v, nil
	}
	if f == nullRef {
		return nil, nil
	}
	i := int(f)
	if float64(i) == f && i >= 0 && i < len(r.payload) {
		return r.index(i)
	}
	return v, nil
}

// key resolves an interned object key ("_N") back to its string form.
func (r *resolver) key(k string) string {
	if !strings.HasPrefix(k, "_") {
		return k
	}
	i, err := strconv.Atoi(k[1:])
	if err != nil || i < 0 || i >= len(r.payload) {
		return k
	}
	switch real := r.payload[i].(type) {
	case string:
		return real
	case float64, bool:
		return fmt.Sprint(real)
	default:
		return k
	}
}

// findConversation locates and resolves the conversation object: the
// payload entry whose interned keys cover mapping, current_node and
// conversation_id.
func findConversation(payload []any) (map[string]any, error) {
	idxMapping := indexOfString(payload, "mapping")
	idxCurrent := indexOfString(payload, "current_node")
	idxConvID := indexOfString(payload, "conversation_id")
	if idxMapping < 0 || idxCurrent < 0 || idxConvID < 0 {
		return nil, errMissing("conversation_keys_missing")
	}

	mappingKey := "_" + strconv.Itoa(idxMapping)
	currentKey := "_" + strconv.Itoa(idxCurrent)
	convIDKey := "_" + strconv.Itoa(idxConvID)

	convIndex := -1
	for i, v := range payload {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := m[mappingKey]; !ok {
			continue
		}
		if _, ok := m[currentKey]; !ok {
			continue
		}
		if _, ok := m[convIDKey]; !ok {
			continue
		}
		convIndex = i
		break
	}
	if convIndex < 0 {
		return nil, errMissing("conversation_object_missing")
	}

	resolved, err := newResolver(payload).index(convIndex)
	if err != nil {
		return nil, err
	}
	conv, ok := resolved.(map[string]any)
	if !ok {
		return nil, errUnsupported("conversation_resolve_failed")
	}
	return conv, nil
}

func indexOfString(payload []any, want string) int {
	for i, v := range payload {
		if s, ok := v.(string); ok && s == want {
			return i
		}
	}
	return -1
}
