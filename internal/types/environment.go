package types

import (
	"strconv"
	"strings"
)

// EnvironmentFacts are the build-environment probes a classification is
// derived from. Absent numeric facts are nil.
type EnvironmentFacts struct {
	TumbleweedVersion *int `yaml:"tumbleweed_version,omitempty"`
	EnterpriseVersion *int `yaml:"enterprise_version,omitempty"`

	// Interpreter is the MAJOR.MINOR version of the target interpreter.
	// Empty when unknown.
	Interpreter string `yaml:"interpreter,omitempty"`
}

// HasVersionNumber reports whether any distribution version fact is present.
func (f EnvironmentFacts) HasVersionNumber() bool {
	return f.TumbleweedVersion != nil || f.EnterpriseVersion != nil
}

type InterpreterVersion struct {
	Major int
	Minor int
}

// Dotted returns "3.11".
func (v InterpreterVersion) Dotted() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
}

// NoDots returns "311".
func (v InterpreterVersion) NoDots() string {
	return strconv.Itoa(v.Major) + strconv.Itoa(v.Minor)
}

// ParseInterpreter parses a MAJOR.MINOR string. Patch components are
// ignored; anything else reports false.
func ParseInterpreter(value string) (InterpreterVersion, bool) {
	parts := strings.Split(strings.TrimSpace(value), ".")
	if len(parts) < 2 {
		return InterpreterVersion{}, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil || major <= 0 {
		return InterpreterVersion{}, false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return InterpreterVersion{}, false
	}
	return InterpreterVersion{Major: major, Minor: minor}, true
}

// IntPtr is a helper for building facts in code and tests.
func IntPtr(value int) *int {
	return &value
}
