package applescript

import (
	"context"
	"fmt"
	"strings"
)

// CommandParameter binds one named parameter of a scripting-dictionary
// command to a key in the command's argument map.
type CommandParameter struct {
	// Name is the parameter label as it appears in generated script text.
	Name string
	// Key is the argument map key the value is read from.
	Key string
	// Optional parameters are skipped when the argument is absent or nil.
	Optional bool
}

// CommandSpec describes one command from an application's scripting
// dictionary: its name, the owning application's bundle id, and its
// parameter layout. Specs are typically produced from SDEF data; the
// builder accepts any spec shape regardless of how it was produced.
type CommandSpec struct {
	Name            string
	BundleID        string
	DirectParameter bool
	DirectOptional  bool
	Parameters      []CommandParameter
}

// Command pairs a spec with concrete argument values.
type Command struct {
	Spec      CommandSpec
	Direct    any
	Arguments map[string]any
}

// BuildScript renders the tell-block that invokes the command, embedding
// every argument value through Dumps:
//
//	tell application id "com.google.Chrome"
//	    open location "https://example.com"
//	end tell
func BuildScript(command Command) (string, error) {
	spec := command.Spec
	if spec.Name == "" {
		return "", fmt.Errorf("command name required")
	}
	if spec.BundleID == "" {
		return "", fmt.Errorf("command %q: bundle id required", spec.Name)
	}

	parts := []string{spec.Name}

	if spec.DirectParameter {
		if command.Direct == nil {
			if !spec.DirectOptional {
				return "", fmt.Errorf("command %q requires a direct parameter, but value is missing", spec.Name)
			}
		} else {
			expression, err := Dumps(command.Direct)
			if err != nil {
				return "", fmt.Errorf("command %q: direct parameter: %w", spec.Name, err)
			}
			parts = append(parts, expression)
		}
	}

	for _, parameter := range spec.Parameters {
		value, ok := command.Arguments[parameter.Key]
		if !ok || value == nil {
			if parameter.Optional {
				continue
			}
			return "", fmt.Errorf("command %q requires parameter %q (key %q), but value is missing",
				spec.Name, parameter.Name, parameter.Key)
		}
		expression, err := Dumps(value)
		if err != nil {
			return "", fmt.Errorf("command %q: parameter %q: %w", spec.Name, parameter.Name, err)
		}
		parts = append(parts, parameter.Name+" "+expression)
	}

	bundle, err := Dumps(spec.BundleID)
	if err != nil {
		return "", err
	}
	lines := []string{
		"tell application id " + bundle,
		"    " + strings.Join(parts, " "),
		"end tell",
	}
	return strings.Join(lines, "\n"), nil
}

// Runner executes AppleScript source and returns the interpreter's output.
// *Executor is the production implementation.
type Runner interface {
	Execute(ctx context.Context, script string) (string, error)
}

// CommandRunner builds and executes scripting-dictionary commands, returning
// the interpreter's raw stdout for the caller to decode with Loads.
type CommandRunner struct {
	runner Runner
}

// NewCommandRunner returns a runner backed by the given script runner.
func NewCommandRunner(runner Runner) *CommandRunner {
	return &CommandRunner{runner: runner}
}

// Run renders the command into script source and executes it.
func (r *CommandRunner) Run(ctx context.Context, command Command) (string, error) {
	script, err := BuildScript(command)
	if err != nil {
		return "", err
	}
	return r.runner.Execute(ctx, script)
}
