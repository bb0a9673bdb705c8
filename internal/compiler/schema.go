package compiler

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/choreo/internal/ir"
)

//go:embed schema.cue
var schemaSource string

// Schema is the compiled CUE schema for script documents.
type Schema struct {
	ctx    *cue.Context
	root   cue.Value
	script cue.Value
}

// NewSchema compiles the embedded schema in a fresh CUE context.
func NewSchema() (*Schema, error) {
	return newSchema(cuecontext.New())
}

func newSchema(ctx *cue.Context) (*Schema, error) {
	root := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", formatCUEError(err))
	}
	return &Schema{
		ctx:    ctx,
		root:   root,
		script: root.LookupPath(cue.ParsePath("#Script")),
	}, nil
}

// Context returns the CUE context the schema was compiled in. Values
// checked against the schema must come from the same context.
func (s *Schema) Context() *cue.Context {
	return s.ctx
}

// Check unifies an already-decoded script with #Script.
//
// The script goes through its JSON form so that omitted optional fields
// stay absent instead of becoming zero values.
func (s *Schema) Check(script ir.Script) error {
	data, err := json.Marshal(script)
	if err != nil {
		return fmt.Errorf("encode script: %w", err)
	}
	v := s.ctx.CompileBytes(data, cue.Filename(script.Name+".json"))
	if err := v.Err(); err != nil {
		return formatCUEError(err)
	}
	return s.validate(s.script.Unify(v))
}

// Decode unifies v with #Script, checks that it is concrete, and decodes
// it into a Script.
func (s *Schema) Decode(v cue.Value) (ir.Script, error) {
	var script ir.Script
	unified := s.script.Unify(v)
	if err := s.validate(unified); err != nil {
		return script, err
	}
	if err := unified.Decode(&script); err != nil {
		return script, formatCUEError(err)
	}
	return script, nil
}

// DecodeAll decodes every script declared under the `script` field of a
// CUE package value, in label order.
func (s *Schema) DecodeAll(v cue.Value) ([]ir.Script, error) {
	unified := s.root.Unify(v)
	if err := unified.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	scriptsVal := unified.LookupPath(cue.ParsePath("script"))
	if !scriptsVal.Exists() {
		return nil, nil
	}

	iter, err := scriptsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var scripts []ir.Script
	for iter.Next() {
		script, err := s.Decode(iter.Value())
		if err != nil {
			return scripts, fmt.Errorf("script.%s: %w", iter.Selector(), err)
		}
		scripts = append(scripts, script)
	}
	return scripts, nil
}

func (s *Schema) validate(v cue.Value) error {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// CheckSchema validates a script against the embedded CUE schema.
func CheckSchema(script ir.Script) error {
	schema, err := NewSchema()
	if err != nil {
		return err
	}
	return schema.Check(script)
}
