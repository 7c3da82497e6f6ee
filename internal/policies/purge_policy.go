package policies

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// DefaultPurgePatterns removes interpreter bytecode caches.
var DefaultPurgePatterns = []string{"__pycache__/", "*.pyc", "*.pyo"}

// PurgePolicy decides which installed entries are disallowed build
// artifacts. Patterns ending in "/" match directory names; "*suffix" and
// "prefix*" match by base name; anything else is an exact base name.
type PurgePolicy struct {
	Patterns []string
	dirs     map[string]struct{}
	exact    map[string]struct{}
	suffixes []string
	prefixes []string
}

func NewPurgePolicy(patterns []string) PurgePolicy {
	if len(patterns) == 0 {
		patterns = DefaultPurgePatterns
	}
	policy := PurgePolicy{Patterns: append([]string(nil), patterns...)}
	policy.compile()
	return policy
}

// MatchDir reports whether a directory with the given base name is to be
// removed along with everything below it.
func (p PurgePolicy) MatchDir(name string) bool {
	_, ok := p.dirs[name]
	return ok
}

// MatchFile reports whether a non-directory entry is to be removed.
func (p PurgePolicy) MatchFile(name string) bool {
	if _, ok := p.exact[name]; ok {
		return true
	}
	for _, suffix := range p.suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

type patternKind int

const (
	patternExact patternKind = iota
	patternDir
	patternSuffix
	patternPrefix
	patternInvalid
)

func (p *PurgePolicy) compile() {
	p.dirs = map[string]struct{}{}
	p.exact = map[string]struct{}{}
	p.suffixes = nil
	p.prefixes = nil
	for _, pattern := range p.Patterns {
		name, kind := parsePattern(pattern)
		switch kind {
		case patternDir:
			p.dirs[name] = struct{}{}
		case patternExact:
			p.exact[name] = struct{}{}
		case patternSuffix:
			p.suffixes = append(p.suffixes, name)
		case patternPrefix:
			p.prefixes = append(p.prefixes, name)
		}
	}
}

func parsePattern(value string) (string, patternKind) {
	pattern := strings.TrimSpace(value)
	if pattern == "" || pattern == "*" || pattern == "/" {
		return "", patternInvalid
	}
	if strings.HasSuffix(pattern, "/") {
		name := strings.TrimSuffix(pattern, "/")
		if strings.ContainsAny(name, "/*") {
			return "", patternInvalid
		}
		return name, patternDir
	}
	if strings.Contains(pattern, "/") {
		return "", patternInvalid
	}
	if strings.HasPrefix(pattern, "*") {
		return strings.TrimPrefix(pattern, "*"), patternSuffix
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.TrimSuffix(pattern, "*"), patternPrefix
	}
	return pattern, patternExact
}

// ValidatePatterns reports the first pattern NewPurgePolicy would ignore.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if _, kind := parsePattern(pattern); kind == patternInvalid {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid purge pattern %q", pattern))
		}
	}
	return nil
}
