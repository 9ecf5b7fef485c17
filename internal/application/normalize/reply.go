// Package normalize folds the heterogeneous reply shapes produced by the
// model-serving endpoint (plain text, content-block lists, nested agent
// payloads, streamed event sequences) into one uniform recommendation
// record. It is deliberately forgiving: a malformed reply degrades to an
// empty-but-well-formed result, never an error.
package normalize

import "encoding/json"

// Kind identifies the resolved shape of a raw reply. The shape decision is
// made exactly once, at Resolve; every later step dispatches on it.
type Kind int

const (
	// KindAbsent means the endpoint produced no reply at all.
	KindAbsent Kind = iota
	// KindText is a bare string reply.
	KindText
	// KindBlockList is an ordered list of typed content blocks.
	KindBlockList
	// KindMapping is a single JSON object reply.
	KindMapping
)

// Reply is the tagged union over raw reply shapes.
type Reply struct {
	kind    Kind
	text    string
	blocks  []interface{}
	mapping map[string]interface{}
}

// Kind returns the resolved shape.
func (r Reply) Kind() Kind { return r.kind }

// Absent returns the empty reply.
func Absent() Reply { return Reply{kind: KindAbsent} }

// Text wraps a bare string reply.
func Text(s string) Reply { return Reply{kind: KindText, text: s} }

// Blocks wraps a content-block list reply.
func Blocks(blocks []interface{}) Reply { return Reply{kind: KindBlockList, blocks: blocks} }

// Mapping wraps a JSON object reply.
func Mapping(m map[string]interface{}) Reply { return Reply{kind: KindMapping, mapping: m} }

// Resolve classifies an already-decoded value into the tagged union.
func Resolve(raw interface{}) Reply {
	switch v := raw.(type) {
	case nil:
		return Absent()
	case string:
		return Text(v)
	case []interface{}:
		return Blocks(v)
	case map[string]interface{}:
		return Mapping(v)
	default:
		// Numbers, booleans and anything else degrade to their JSON
		// rendering so the caller still gets printable content.
		data, err := json.Marshal(v)
		if err != nil {
			return Absent()
		}
		return Text(string(data))
	}
}

// ResolveJSON decodes a raw JSON document and classifies it. Invalid JSON is
// treated as verbatim text rather than rejected.
func ResolveJSON(data []byte) Reply {
	if len(data) == 0 {
		return Absent()
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Text(string(data))
	}
	return Resolve(raw)
}
