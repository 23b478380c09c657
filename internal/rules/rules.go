// Package rules classifies a visited URL against a user's project rules and
// edits rule lists. Nothing here touches storage.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/runnerr0/dwell/internal/storage"
)

var (
	// ErrInvalidRule is returned for a rule with an unknown type or an empty value.
	ErrInvalidRule = errors.New("invalid rule")
	// ErrIndexOutOfRange is returned by RemoveAt for an index with no rule.
	ErrIndexOutOfRange = errors.New("rule index out of range")
)

// Match returns the ID of the first project with a rule that fires for the
// visit. Projects are tried in the given order and rules in stored order, so
// an earlier project wins even when a later one has a more specific rule.
func Match(projects []storage.Project, url, domain string) (string, bool) {
	for _, p := range projects {
		for _, r := range p.Rules {
			if matches(r, url, domain) {
				return p.ID, true
			}
		}
	}
	return "", false
}

func matches(r storage.ProjectRule, url, domain string) bool {
	switch r.Type {
	case storage.RuleDomain:
		return domain == r.Value
	case storage.RuleURLContains:
		return strings.Contains(url, r.Value)
	case storage.RuleManualURL:
		return url == r.Value
	default:
		return false
	}
}

// Validate reports whether r can be stored.
func Validate(r storage.ProjectRule) error {
	switch r.Type {
	case storage.RuleDomain, storage.RuleURLContains, storage.RuleManualURL:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRule, r.Type)
	}
	if strings.TrimSpace(r.Value) == "" {
		return fmt.Errorf("%w: empty value", ErrInvalidRule)
	}
	return nil
}

// Normalize trims rule values and silently drops rules that fail Validate.
// The result is never nil.
func Normalize(in []storage.ProjectRule) []storage.ProjectRule {
	out := make([]storage.ProjectRule, 0, len(in))
	for _, r := range in {
		r.Value = strings.TrimSpace(r.Value)
		if Validate(r) != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Append returns a copy of list with r added at the end.
func Append(list []storage.ProjectRule, r storage.ProjectRule) ([]storage.ProjectRule, error) {
	r.Value = strings.TrimSpace(r.Value)
	if err := Validate(r); err != nil {
		return nil, err
	}
	out := make([]storage.ProjectRule, 0, len(list)+1)
	out = append(out, list...)
	return append(out, r), nil
}

// RemoveAt returns a copy of list without the rule at index i.
func RemoveAt(list []storage.ProjectRule, i int) ([]storage.ProjectRule, error) {
	if i < 0 || i >= len(list) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(list))
	}
	out := make([]storage.ProjectRule, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), nil
}
