package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/dwell/internal/storage"
)

func project(id string, rs ...storage.ProjectRule) storage.Project {
	return storage.Project{ID: id, Rules: rs}
}

func domain(v string) storage.ProjectRule {
	return storage.ProjectRule{Type: storage.RuleDomain, Value: v}
}

func contains(v string) storage.ProjectRule {
	return storage.ProjectRule{Type: storage.RuleURLContains, Value: v}
}

func manual(v string) storage.ProjectRule {
	return storage.ProjectRule{Type: storage.RuleManualURL, Value: v}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		projects []storage.Project
		url      string
		domain   string
		want     string
		wantOK   bool
	}{
		{
			name:     "project order beats specificity",
			projects: []storage.Project{project("A", domain("x.com")), project("B", contains("x.com/special"))},
			url:      "https://x.com/special",
			domain:   "x.com",
			want:     "A",
			wantOK:   true,
		},
		{
			name:     "reversed order picks the other project",
			projects: []storage.Project{project("B", contains("x.com/special")), project("A", domain("x.com"))},
			url:      "https://x.com/special",
			domain:   "x.com",
			want:     "B",
			wantOK:   true,
		},
		{
			name:     "domain must be equal, not a suffix",
			projects: []storage.Project{project("A", domain("x.com"))},
			url:      "https://docs.x.com/",
			domain:   "docs.x.com",
		},
		{
			name:     "url substring",
			projects: []storage.Project{project("A", contains("/pull/"))},
			url:      "https://github.com/o/r/pull/1",
			domain:   "github.com",
			want:     "A",
			wantOK:   true,
		},
		{
			name:     "manual url needs the full url",
			projects: []storage.Project{project("A", manual("https://a.com/x"))},
			url:      "https://a.com/x?utm=1",
			domain:   "a.com",
		},
		{
			name:     "manual url exact",
			projects: []storage.Project{project("A", manual("https://a.com/x"))},
			url:      "https://a.com/x",
			domain:   "a.com",
			want:     "A",
			wantOK:   true,
		},
		{
			name:     "zero-rule project never matches",
			projects: []storage.Project{project("empty"), project("B", domain("a.com"))},
			url:      "https://a.com",
			domain:   "a.com",
			want:     "B",
			wantOK:   true,
		},
		{
			name:     "unknown rule type is ignored",
			projects: []storage.Project{project("A", storage.ProjectRule{Type: "regex", Value: ".*"})},
			url:      "https://a.com",
			domain:   "a.com",
		},
		{
			name:   "no projects",
			url:    "https://a.com",
			domain: "a.com",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Match(tc.projects, tc.url, tc.domain)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(domain("a.com")))
	assert.NoError(t, Validate(manual("https://a.com")))
	assert.ErrorIs(t, Validate(domain("  ")), ErrInvalidRule)
	assert.ErrorIs(t, Validate(storage.ProjectRule{Type: "regex", Value: "x"}), ErrInvalidRule)
}

func TestNormalize(t *testing.T) {
	got := Normalize([]storage.ProjectRule{
		domain(" a.com "),
		{Type: "bogus", Value: "x"},
		contains(""),
		manual("https://b.com"),
	})
	assert.Equal(t, []storage.ProjectRule{domain("a.com"), manual("https://b.com")}, got)

	assert.NotNil(t, Normalize(nil))
}

func TestAppend(t *testing.T) {
	orig := []storage.ProjectRule{domain("a.com")}

	got, err := Append(orig, contains("/docs"))
	require.NoError(t, err)
	assert.Equal(t, []storage.ProjectRule{domain("a.com"), contains("/docs")}, got)
	assert.Len(t, orig, 1, "input is not modified")

	_, err = Append(orig, contains(""))
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestRemoveAt(t *testing.T) {
	orig := []storage.ProjectRule{domain("a.com"), domain("b.com"), domain("c.com")}

	got, err := RemoveAt(orig, 1)
	require.NoError(t, err)
	assert.Equal(t, []storage.ProjectRule{domain("a.com"), domain("c.com")}, got)
	assert.Equal(t, domain("b.com"), orig[1], "input is not modified")

	_, err = RemoveAt(orig, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = RemoveAt(orig, -1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}
