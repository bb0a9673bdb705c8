package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/choreo/internal/compiler"
	"github.com/roach88/choreo/internal/ir"
	"github.com/roach88/choreo/internal/trace"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// ProgramSummary describes one compiled script.
type ProgramSummary struct {
	Name              string                  `json:"name"`
	Hash              string                  `json:"hash"`
	Capacity          int                     `json:"capacity"`
	Behavior          string                  `json:"behavior"`
	Steps             int                     `json:"steps"`
	NominalDurationMS uint32                  `json:"nominal_duration_ms"`
	Warnings          []compiler.ReachWarning `json:"warnings,omitempty"`
}

// CompilationResult holds the compiled programs.
type CompilationResult struct {
	Programs []ProgramSummary `json:"programs"`
	Scripts  []ir.Script      `json:"-"` // Expanded scripts, written by --output
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <script-or-dir>",
		Short: "Compile scripts and report reachability",
		Long: `Compile choreo scripts into sequence programs.

Table shorthand is expanded into steps, every script is hashed, and the
step graph is analyzed for unreachable steps and zero-duration loops.
With --output the expanded scripts are written as JSON.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadScripts(path, LoadModeCollectAll)

	// Handle load errors (path not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputCompileError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d script file(s) in %s", loadResult.FileCount, path)

	result := &CompilationResult{}
	errs := loadErrors
	for _, ls := range loadResult.Scripts {
		formatter.VerboseLog("Compiling script: %s", ls.Script.Name)

		prog, err := compiler.Compile(ls.Script)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		result.Programs = append(result.Programs, summarize(prog))
		result.Scripts = append(result.Scripts, prog.Script)
	}

	if len(errs) > 0 {
		return outputCompileErrors(formatter, errs)
	}

	if opts.Output != "" {
		if err := writeScriptsToFile(result.Scripts, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

func summarize(prog *compiler.Program) ProgramSummary {
	return ProgramSummary{
		Name:              prog.Name,
		Hash:              prog.Hash,
		Capacity:          prog.Capacity,
		Behavior:          prog.Behavior.String(),
		Steps:             len(prog.Steps),
		NominalDurationMS: trace.NominalDuration(prog),
		Warnings:          compiler.AnalyzeReachability(prog.Steps, prog.Behavior),
	}
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d script(s)\n\n", len(result.Programs))

	for _, p := range result.Programs {
		fmt.Fprintf(formatter.Writer, "  %s: %d step(s), %s, %dms, hash %s\n",
			p.Name, p.Steps, p.Behavior, p.NominalDurationMS, p.Hash[:12])
		for _, w := range p.Warnings {
			fmt.Fprintf(formatter.Writer, "    %s: %s\n", w.Level, w.Message)
		}
	}
	fmt.Fprintln(formatter.Writer)

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote expanded scripts to %s\n", outputFile)
	}

	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	var cliErrors []CLIError
	for _, err := range errs {
		cliErrors = append(cliErrors, parseCompileErrors(err)...)
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}
		if err := formatter.JSON(response); err != nil {
			return err
		}

		// Compilation errors are validation failures (exit code 1)
		return NewExitError(ExitFailure, fmt.Sprintf("compilation failed with %d error(s)", len(cliErrors)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		for _, ce := range parseCompileErrors(err) {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", ce.Code, ce.Message)
		}
		fmt.Fprintln(formatter.Writer)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("compilation failed with %d error(s)", len(cliErrors)))
}

// parseCompileErrors extracts error codes and messages from an error.
// Validation errors expand to one entry each.
func parseCompileErrors(err error) []CLIError {
	var verrs compiler.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]CLIError, len(verrs))
		for i, ve := range verrs {
			out[i] = CLIError{Code: ve.Code, Message: fmt.Sprintf("%s: %s", ve.Field, ve.Message)}
		}
		return out
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return []CLIError{{Code: loadErr.Code, Message: loadErr.Message}}
	}
	return []CLIError{{Code: ErrCodeGeneric, Message: err.Error()}}
}

// writeScriptsToFile writes the expanded scripts as indented JSON.
func writeScriptsToFile(scripts []ir.Script, filename string) error {
	// Use standard JSON with indentation for readability
	// (canonical JSON without indentation is used only for hashing)
	data, err := json.MarshalIndent(scripts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling scripts: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
