// Package health runs the environment checks behind 'eido doctor': the
// configuration loads and validates, the default schema can be read, and the
// server address is usable.
package health

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/pepkit/eido/internal/config"
	"github.com/pepkit/eido/internal/schema"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult
	Passed bool
}

func (r *HealthReport) add(c CheckResult) {
	r.Checks = append(r.Checks, c)
	if !c.Passed {
		r.Passed = false
	}
}

// Options configures RunHealthChecks.
type Options struct {
	// ConfigPath is the local configuration file.
	ConfigPath string
	// Loader reads the default schema. Nil uses a fresh schema.Loader.
	Loader *schema.Loader
}

// RunHealthChecks runs all health checks and returns a report. The schema and
// address checks are skipped when the configuration cannot be loaded.
func RunHealthChecks(opts Options) *HealthReport {
	report := &HealthReport{
		Checks: make([]CheckResult, 0, 3),
		Passed: true,
	}

	cfg, check := CheckConfig(opts.ConfigPath)
	report.add(check)
	if cfg == nil {
		return report
	}

	loader := opts.Loader
	if loader == nil {
		loader = schema.NewLoader()
	}
	report.add(CheckDefaultSchema(loader, cfg.DefaultSchema))
	report.add(CheckServerAddr(cfg.ServerAddr))
	return report
}

// CheckConfig loads the configuration the same way every command does.
func CheckConfig(path string) (*config.Configuration, CheckResult) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, CheckResult{
			Name:    "Configuration",
			Passed:  false,
			Message: err.Error(),
		}
	}
	return cfg, CheckResult{
		Name:    "Configuration",
		Passed:  true,
		Message: "configuration loaded",
	}
}

// CheckDefaultSchema reads the configured default schema, imports included.
func CheckDefaultSchema(loader *schema.Loader, ref string) CheckResult {
	if ref == "" {
		return CheckResult{
			Name:    "Default schema",
			Passed:  true,
			Message: "no default schema configured",
		}
	}

	docs, err := loader.Read(schema.Ref(ref))
	if err != nil {
		return CheckResult{
			Name:    "Default schema",
			Passed:  false,
			Message: err.Error(),
		}
	}
	return CheckResult{
		Name:    "Default schema",
		Passed:  true,
		Message: fmt.Sprintf("%s readable (%d documents)", ref, len(docs)),
	}
}

// CheckServerAddr checks that addr is a host:port pair with a valid port.
func CheckServerAddr(addr string) CheckResult {
	_, port, err := net.SplitHostPort(addr)
	if err == nil {
		var n int
		n, err = strconv.Atoi(port)
		if err == nil && (n < 0 || n > 65535) {
			err = fmt.Errorf("port %d out of range", n)
		}
	}
	if err != nil {
		return CheckResult{
			Name:    "Server address",
			Passed:  false,
			Message: fmt.Sprintf("invalid server_addr %q: %v", addr, err),
		}
	}
	return CheckResult{
		Name:    "Server address",
		Passed:  true,
		Message: addr,
	}
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	var sb strings.Builder
	for _, check := range report.Checks {
		if check.Passed {
			fmt.Fprintf(&sb, "✓ %s: %s\n", check.Name, check.Message)
		} else {
			fmt.Fprintf(&sb, "✗ Error: %s: %s\n", check.Name, check.Message)
		}
	}
	return sb.String()
}
