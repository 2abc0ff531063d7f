package meal

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed day.cue
var daySchemaSrc string

// ErrDocument is returned for day documents that fail to parse or validate.
var ErrDocument = errors.New("invalid day document")

// Format is the encoding of a day document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format by file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

// Document is a hand-written or exported day: an optional canonical date and
// any subset of the seven slots.
type Document struct {
	Date  string `json:"date,omitempty"`
	Meals Meals  `json:"meals"`
}

// Validator checks day documents against the embedded CUE schema.
//
// Thread-safety: a cue.Context is not safe for concurrent use, so Validate
// serializes callers.
type Validator struct {
	mu  sync.Mutex
	ctx *cue.Context
	day cue.Value
}

// NewValidator compiles the schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(daySchemaSrc, cue.Filename("day.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile day schema: %w", err)
	}
	day := schema.LookupPath(cue.ParsePath("#Day"))
	if !day.Exists() {
		return nil, errors.New("compile day schema: #Day not defined")
	}
	return &Validator{ctx: ctx, day: day}, nil
}

// Validate checks a JSON document against #Day.
func (v *Validator) Validate(data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	doc := v.ctx.CompileBytes(data, cue.Filename("document.json"))
	if err := doc.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDocument, err)
	}
	if err := v.day.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrDocument, err)
	}
	return nil
}

// Decode parses a day document, checks it against the schema, gives items
// without an id a fresh one from ids, and returns it with all seven slots
// present.
func (v *Validator) Decode(data []byte, format Format, ids IDGenerator) (Document, error) {
	jsonData, err := toJSON(data, format)
	if err != nil {
		return Document{}, err
	}
	if err := v.Validate(jsonData); err != nil {
		return Document{}, err
	}

	var doc Document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrDocument, err)
	}

	for slot, r := range doc.Meals {
		for i := range r.Items {
			if r.Items[i].ID == "" {
				r.Items[i].ID = ids.Generate()
			}
		}
		doc.Meals[slot] = r
	}
	doc.Meals = doc.Meals.Normalize()

	if err := Validate(doc.Meals); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrDocument, err)
	}
	return doc, nil
}

func toJSON(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return data, nil
	case FormatYAML:
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: yaml: %v", ErrDocument, err)
		}
		out, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: yaml to json: %v", ErrDocument, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrDocument, format)
	}
}
