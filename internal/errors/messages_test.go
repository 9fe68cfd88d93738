// Package errors_test tests structured CLI error message generation and remediation steps.
// Related: internal/errors/messages.go
// Tags: errors, cli-errors, messages, remediation, error-categories
package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessages(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	tests := map[string]struct {
		err             *CLIError
		wantCategory    ErrorCategory
		wantInMessage   string
		wantRemediation bool
		wantUsage       bool
	}{
		"missing project arg": {
			err: MissingProjectArg("validate"), wantCategory: Argument,
			wantRemediation: true, wantUsage: true,
		},
		"project not found": {
			err: ProjectNotFound("/pep/cfg.yaml"), wantCategory: Prerequisite,
			wantInMessage: "/pep/cfg.yaml", wantRemediation: true,
		},
		"project load error": {
			err: ProjectLoadError("/pep/cfg.yaml", cause), wantCategory: Prerequisite,
			wantInMessage: "boom", wantRemediation: true,
		},
		"missing schema": {
			err: MissingSchema(), wantCategory: Argument,
			wantRemediation: true, wantUsage: true,
		},
		"schema load error": {
			err: SchemaLoadError("http://schema.databio.org/pep/2.0.0.yaml", cause), wantCategory: Prerequisite,
			wantInMessage: "2.0.0.yaml", wantRemediation: true,
		},
		"sample not found": {
			err: SampleNotFound("frog_9"), wantCategory: Argument,
			wantInMessage: "frog_9", wantRemediation: true,
		},
		"sample index": {
			err: SampleIndexOutOfRange(7, 2), wantCategory: Argument,
			wantInMessage: "index 7", wantRemediation: true,
		},
		"missing inputs": {
			err: MissingInputFiles("frog_1", []string{"a.txt", "b.txt"}), wantCategory: Prerequisite,
			wantInMessage: "a.txt, b.txt", wantRemediation: true,
		},
		"validation failed": {
			err: ValidationFailed(cause), wantCategory: Validation,
			wantInMessage: "boom",
		},
		"filter not found": {
			err: FilterNotFound("xml", []string{"basic", "csv"}), wantCategory: Argument,
			wantInMessage: "basic, csv", wantRemediation: true,
		},
		"invalid flags": {
			err: InvalidFlagCombination("-n -c", "pick one"), wantCategory: Argument,
			wantInMessage: "-n -c", wantRemediation: true,
		},
		"invalid key value": {
			err: InvalidKeyValue("--paths", "samples"), wantCategory: Argument,
			wantInMessage: "samples", wantUsage: true,
		},
		"config not found": {
			err: ConfigFileNotFound("/etc/eido.json"), wantCategory: Configuration,
			wantInMessage: "/etc/eido.json", wantRemediation: true,
		},
		"config parse": {
			err: ConfigParseError("/etc/eido.json", cause), wantCategory: Configuration,
			wantInMessage: "boom", wantRemediation: true,
		},
		"file not writable": {
			err: FileNotWritable("/out/x.csv"), wantCategory: Runtime,
			wantInMessage: "/out/x.csv", wantRemediation: true,
		},
	}

	for name, tc := range tests {

		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.wantCategory, tc.err.Category)
			assert.Contains(t, tc.err.Message, tc.wantInMessage)
			assert.Equal(t, tc.wantRemediation, len(tc.err.Remediation) > 0)
			assert.Equal(t, tc.wantUsage, tc.err.Usage != "")
		})
	}
}
