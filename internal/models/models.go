// Package models holds the in-memory JSON value tree built by the parser and
// consumed by the XML generator.
package models

import (
	"strings"

	"github.com/valyala/fastjson/fastfloat"
)

// Kind identifies the type of a JSON value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

var kindNames = [...]string{"null", "boolean", "number", "string", "array", "object"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// NumberValue keeps the source text of a JSON number next to its parsed form,
// so integers and floats are emitted exactly as they were written.
type NumberValue struct {
	Text    string
	Float   float64
	Integer int64
	IsInt   bool
}

func newNumberValue(text string) NumberValue {
	n := NumberValue{Text: text}
	if !strings.ContainsAny(text, ".eE") {
		if i, err := fastfloat.ParseInt64(text); err == nil {
			n.Integer = i
			n.IsInt = true
			n.Float = float64(i)
			return n
		}
	}
	n.Float = fastfloat.ParseBestEffort(text)
	return n
}

// Member is a key/value pair in an object.
type Member struct {
	Key   string
	Value *Value
}

// Value is a JSON value. Only the fields matching Kind are meaningful.
type Value struct {
	Kind  Kind
	Bool  bool
	Num   NumberValue
	Str   string
	Items []*Value

	// Accumulated marks an array that was created by appending a second value
	// under an existing object key rather than written as an array literal.
	Accumulated bool

	members []Member
	index   map[string]int
}

// NewNull returns a JSON null.
func NewNull() *Value {
	return &Value{Kind: Null}
}

// NewBool returns a JSON boolean.
func NewBool(b bool) *Value {
	return &Value{Kind: Bool, Bool: b}
}

// NewNumber returns a JSON number from its literal text. The caller is
// responsible for the text matching the JSON number grammar.
func NewNumber(text string) *Value {
	return &Value{Kind: Number, Num: newNumberValue(text)}
}

// NewString returns a JSON string with escapes already resolved.
func NewString(s string) *Value {
	return &Value{Kind: String, Str: s}
}

// NewArray returns a JSON array holding items in order.
func NewArray(items ...*Value) *Value {
	if items == nil {
		items = []*Value{}
	}
	return &Value{Kind: Array, Items: items}
}

// NewObject returns an empty JSON object.
func NewObject() *Value {
	return &Value{Kind: Object, index: make(map[string]int)}
}

// Append inserts v under key. A new key is added at the end of the object.
// Appending to an existing key keeps its position and turns the slot into an
// accumulating array: the first duplicate yields [old, v], further duplicates
// are pushed onto that array.
func (v *Value) Append(key string, val *Value) {
	if v.Kind != Object {
		panic("models: Append on " + v.Kind.String())
	}
	if v.index == nil {
		v.index = make(map[string]int)
	}
	i, ok := v.index[key]
	if !ok {
		v.index[key] = len(v.members)
		v.members = append(v.members, Member{Key: key, Value: val})
		return
	}
	slot := v.members[i].Value
	if slot.Kind == Array && slot.Accumulated {
		slot.Items = append(slot.Items, val)
		return
	}
	v.members[i].Value = &Value{
		Kind:        Array,
		Items:       []*Value{slot, val},
		Accumulated: true,
	}
}

// Get returns the value stored under key.
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind != Object {
		return nil, false
	}
	i, ok := v.index[key]
	if !ok {
		return nil, false
	}
	return v.members[i].Value, true
}

// Members returns the object's members in first-insertion order.
func (v *Value) Members() []Member {
	return v.members
}

// Keys returns the object's keys in first-insertion order.
func (v *Value) Keys() []string {
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// Len returns the number of members of an object or items of an array.
func (v *Value) Len() int {
	switch v.Kind {
	case Object:
		return len(v.members)
	case Array:
		return len(v.Items)
	default:
		return 0
	}
}

// Text returns the literal XML-facing text of a scalar: the source text of a
// number, "true"/"false" for booleans, the string itself, and "" for null.
func (v *Value) Text() string {
	switch v.Kind {
	case Bool:
		if v.Bool {
			return "true"
		}
		return "false"
	case Number:
		return v.Num.Text
	case String:
		return v.Str
	default:
		return ""
	}
}

// IsScalar reports whether v is neither an object nor an array.
func (v *Value) IsScalar() bool {
	return v.Kind != Object && v.Kind != Array
}

// Wrap returns a fresh object holding doc under rootKey, the shape the XML
// generator expects.
func Wrap(rootKey string, doc *Value) *Value {
	wrapper := NewObject()
	wrapper.Append(rootKey, doc)
	return wrapper
}
