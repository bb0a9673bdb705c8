package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/choreo/internal/compiler"
	"github.com/roach88/choreo/internal/ir"
)

// LoadMode controls how errors are handled during script loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadedScript is a script together with the file it came from.
type LoadedScript struct {
	Path   string
	Script ir.Script
}

// LoadResult contains the scripts found at a path.
type LoadResult struct {
	Scripts   []LoadedScript
	FileCount int // Number of script files found
}

// LoadError represents an error that occurred during script loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadScripts loads scripts from a file or a directory.
//
// A file is read with compiler.LoadFile. In a directory, every YAML and
// table file is one script, and the .cue files together form one CUE
// package whose `script` struct may declare any number of scripts.
//
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadScripts(path string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing path: %v", err)}}
	}

	if !info.IsDir() {
		script, err := compiler.LoadFile(path)
		if err != nil {
			return nil, []error{convertLoadError(err)}
		}
		return &LoadResult{
			Scripts:   []LoadedScript{{Path: path, Script: script}},
			FileCount: 1,
		}, nil
	}

	return loadDir(path, mode)
}

func loadDir(dir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	files, err := FindScriptFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(files) == 0 && len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no script files found in %s", dir)}}
	}

	result := &LoadResult{FileCount: len(files) + len(cueFiles)}

	for _, f := range files {
		script, err := compiler.LoadFile(f)
		if err != nil {
			errs = append(errs, convertLoadError(err))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Scripts = append(result.Scripts, LoadedScript{Path: f, Script: script})
	}

	if len(cueFiles) > 0 {
		scripts, err := loadCUEPackage(dir)
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return result, errs
			}
		}
		for _, s := range scripts {
			result.Scripts = append(result.Scripts, LoadedScript{Path: dir, Script: s})
		}
	}

	seen := make(map[string]string)
	for _, ls := range result.Scripts {
		if prev, ok := seen[ls.Script.Name]; ok {
			errs = append(errs, &LoadError{
				Code:    ErrCodeDuplicate,
				Message: fmt.Sprintf("duplicate script name %q in %s and %s", ls.Script.Name, prev, ls.Path),
			})
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		seen[ls.Script.Name] = ls.Path
	}

	if len(result.Scripts) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no scripts found in " + dir})
	}

	return result, errs
}

// loadCUEPackage loads the CUE package in dir and decodes its scripts.
func loadCUEPackage(dir string) ([]ir.Script, error) {
	schema, err := compiler.NewSchema()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("loading schema: %v", err)}
	}

	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := schema.Context().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	scripts, err := schema.DecodeAll(value)
	if err != nil {
		return scripts, convertLoadError(err)
	}
	return scripts, nil
}

// FindScriptFiles walks the directory and returns the YAML and table
// script files, sorted. CUE files are loaded as a package instead.
func FindScriptFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && compiler.IsScriptFile(path) && filepath.Ext(path) != ".cue" {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// FindCUEFiles returns the .cue files directly in dir. Subdirectories
// are not part of the package.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// convertLoadError converts a compiler error to a LoadError with position info.
func convertLoadError(err error) *LoadError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeSchema,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	var tableErr *compiler.TableError
	if errors.As(err, &tableErr) {
		return &LoadError{Code: compiler.ErrTableParse, Message: err.Error()}
	}
	if errors.Is(err, compiler.ErrUnsupportedFormat) {
		return &LoadError{Code: ErrCodeUnsupported, Message: err.Error()}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
// Script validation codes (E2xx) come from the compiler package.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No script files found
	ErrCodeLoadFailed  = "E004" // Script read or parse failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeDuplicate   = "E008" // Two scripts share a name
	ErrCodeUnsupported = "E009" // Unknown file extension
	ErrCodeSchema      = "E010" // Document does not match the script schema
	ErrCodeNoScript    = "E012" // Named script not found
)
