package errors

import (
	"fmt"
	"strings"
)

// MissingProjectArg is returned when a command needs a PEP and got none.
func MissingProjectArg(command string) *CLIError {
	return NewArgumentErrorWithUsage(
		"PEP configuration file is required",
		fmt.Sprintf("eido %s <project_config.yaml>", command),
		"Pass the path to the project configuration file",
	)
}

// ProjectNotFound is returned when the PEP file does not exist.
func ProjectNotFound(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("project configuration not found: %s", path),
		"Check the path to the project configuration file",
	)
}

// ProjectLoadError wraps a failure to read or parse a PEP.
func ProjectLoadError(path string, err error) *CLIError {
	return WrapWithMessage(err, Prerequisite,
		fmt.Sprintf("failed to load project %s", path),
		"Check that the configuration is valid YAML",
		"Check that sample_table and subsample_table point to readable CSV files",
	)
}

// MissingSchema is returned when no schema was given and none is configured.
func MissingSchema() *CLIError {
	return NewArgumentErrorWithUsage(
		"a schema is required",
		"eido validate <project_config.yaml> -s <schema.yaml|URL>",
		"Pass --schema with a path or URL",
		"Or set default_schema in the config file",
	)
}

// SchemaLoadError wraps a failure to read or expand a schema.
func SchemaLoadError(source string, err error) *CLIError {
	return WrapWithMessage(err, Prerequisite,
		fmt.Sprintf("failed to read schema %s", source),
		"Check that the schema path or URL is reachable",
		"Check that every entry of 'imports' is a path, URL or mapping",
	)
}

// SampleNotFound is returned when a sample name matches nothing.
func SampleNotFound(name string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("sample not found: %s", name),
		"Run 'eido inspect <project_config.yaml>' to list sample names",
	)
}

// SampleIndexOutOfRange is returned for a sample position outside the project.
func SampleIndexOutOfRange(index, count int) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("sample index %d out of range: project has %d samples", index, count),
		fmt.Sprintf("Use an index between 0 and %d, or a sample name", count-1),
	)
}

// MissingInputFiles is returned when required input files of a sample do
// not exist.
func MissingInputFiles(sample string, paths []string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("sample %s is missing %d required input files: %s", sample, len(paths), strings.Join(paths, ", ")),
		"Check the paths in the sample table and any derive templates",
	)
}

// ValidationFailed reports a project that does not match its schema.
func ValidationFailed(err error) *CLIError {
	return Wrap(err, Validation)
}

// FilterNotFound is returned for an unknown conversion filter.
func FilterNotFound(name string, available []string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("'%s' filter not found. Available filters: %s", name, strings.Join(available, ", ")),
		"Run 'eido filters' to list the available filters",
	)
}

// InvalidFlagCombination is returned for flags that cannot be used together.
func InvalidFlagCombination(flags, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination %s: %s", flags, reason),
		"Run the command with --help to see valid flags",
	)
}

// InvalidKeyValue is returned for a key=value argument without '='.
func InvalidKeyValue(flag, value string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid %s value %q: expected key=value", flag, value),
		fmt.Sprintf("%s key=value", flag),
	)
}

// ConfigFileNotFound is returned when an explicit config file is missing.
func ConfigFileNotFound(path string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("config file not found: %s", path),
		"Check the --config path",
	)
}

// ConfigParseError wraps a config file that cannot be loaded.
func ConfigParseError(path string, err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		fmt.Sprintf("failed to load config %s", path),
		"Check that the file is valid JSON",
		"Check EIDO_* environment variables",
	)
}

// FileNotWritable is returned when a conversion result cannot be saved.
func FileNotWritable(path string) *CLIError {
	return NewRuntimeError(
		fmt.Sprintf("cannot write file: %s", path),
		"Check that the directory exists and is writable",
	)
}
