package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"gopkg.in/yaml.v3"

	"github.com/roach88/choreo/internal/ir"
)

// ErrUnsupportedFormat is returned by LoadFile for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported script format")

// Script file extensions understood by LoadFile.
var scriptExts = map[string]bool{
	".yaml":  true,
	".yml":   true,
	".cue":   true,
	".tbl":   true,
	".table": true,
}

// IsScriptFile reports whether path has a script extension.
func IsScriptFile(path string) bool {
	return scriptExts[strings.ToLower(filepath.Ext(path))]
}

// LoadFile reads a script from disk. The format is chosen by extension:
//
//	.yaml, .yml   YAML document (unknown fields are errors)
//	.cue          CUE struct, unified with #Script
//	.tbl, .table  bare step table
//
// A script without a name is named after the file.
func LoadFile(path string) (ir.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ir.Script{}, err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var script ir.Script
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		script, err = ParseYAML(data)
	case ".cue":
		script, err = ParseCUE(data, path)
	case ".tbl", ".table":
		script = ir.Script{Table: string(data)}
	default:
		return ir.Script{}, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return ir.Script{}, fmt.Errorf("%s: %w", path, err)
	}

	if script.Name == "" {
		script.Name = base
	}
	return script, nil
}

// ParseYAML decodes a single YAML script document.
func ParseYAML(data []byte) (ir.Script, error) {
	var script ir.Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&script); err != nil {
		if errors.Is(err, io.EOF) {
			return script, fmt.Errorf("empty script document")
		}
		return script, fmt.Errorf("parse yaml: %w", err)
	}
	return script, nil
}

// ParseCUE compiles a CUE script and decodes it through #Script.
//
// Unlike YAML, a CUE script needs no name: the schema requires one, so
// a missing name is filled with a placeholder that LoadFile replaces.
func ParseCUE(data []byte, filename string) (ir.Script, error) {
	schema, err := NewSchema()
	if err != nil {
		return ir.Script{}, err
	}

	v := schema.Context().CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return ir.Script{}, formatCUEError(err)
	}
	if !v.LookupPath(cue.ParsePath("name")).Exists() {
		v = v.FillPath(cue.ParsePath("name"), strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	}
	return schema.Decode(v)
}
