package analyzer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/json2xml/internal/config"
	"github.com/mcncl/json2xml/internal/generator"
	"github.com/mcncl/json2xml/internal/models"
)

// InvalidName is a key that cannot be written as an XML element.
type InvalidName struct {
	// Path locates the member, e.g. $.items[2].name
	Path string
	Key  string
	// Name is the key after the naming style was applied.
	Name string
}

// Result holds structural statistics of a parsed document.
type Result struct {
	// MaxDepth counts nested object/array boundaries; a scalar document is 0.
	MaxDepth         int
	Objects          int
	Arrays           int
	Scalars          int
	Nulls            int
	Members          int
	AccumulatedSlots int
	InvalidNames     []InvalidName
}

// Valid reports whether every key maps to a valid element name.
func (r Result) Valid() bool {
	return len(r.InvalidNames) == 0
}

// Summary is a one-line description for diagnostics.
func (r Result) Summary() string {
	return fmt.Sprintf("depth=%d objects=%d arrays=%d scalars=%d nulls=%d members=%d accumulated=%d invalid_names=%d",
		r.MaxDepth, r.Objects, r.Arrays, r.Scalars, r.Nulls, r.Members, r.AccumulatedSlots, len(r.InvalidNames))
}

// Analyzer walks a parsed document and collects statistics
type Analyzer struct {
	naming generator.NamingStyle
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{naming: generator.NamingKeep}
}

// NewAnalyzerWithConfig creates an Analyzer that checks names as they will be
// written under cfg's naming style.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	style, err := generator.ParseNamingStyle(cfg.Naming.Style)
	if err != nil {
		style = generator.NamingKeep
	}
	return &Analyzer{naming: style}
}

// Analyze walks v once.
func (a *Analyzer) Analyze(v *models.Value) Result {
	var r Result
	if v != nil {
		a.walk(&r, v, "$", 0)
	}
	return r
}

// Analyze runs a default Analyzer over v.
func Analyze(v *models.Value) Result {
	return NewAnalyzer().Analyze(v)
}

func (a *Analyzer) walk(r *Result, v *models.Value, path string, depth int) {
	switch v.Kind {
	case models.Object:
		depth++
		r.Objects++
		for _, m := range v.Members() {
			r.Members++
			child := memberPath(path, m.Key)
			if name := generator.ApplyNaming(a.naming, m.Key); !generator.IsValidName(name) {
				r.InvalidNames = append(r.InvalidNames, InvalidName{Path: child, Key: m.Key, Name: name})
			}
			if m.Value.Accumulated {
				// Repeated keys are not a nesting level of their own.
				r.AccumulatedSlots++
				for _, item := range m.Value.Items {
					a.walk(r, item, child, depth)
				}
				continue
			}
			a.walk(r, m.Value, child, depth)
		}
	case models.Array:
		depth++
		r.Arrays++
		for i, item := range v.Items {
			a.walk(r, item, path+"["+strconv.Itoa(i)+"]", depth)
		}
	case models.Null:
		r.Nulls++
	default:
		r.Scalars++
	}
	if depth > r.MaxDepth {
		r.MaxDepth = depth
	}
}

func memberPath(parent, key string) string {
	if key != "" && !strings.ContainsAny(key, ".[]'\" \t\r\n") {
		return parent + "." + key
	}
	return parent + "[" + strconv.Quote(key) + "]"
}
