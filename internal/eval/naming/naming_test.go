package naming

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withGit(n *Namer, branch string, err error) *Namer {
	n.git = func(context.Context) (string, error) { return branch, err }
	return n
}

func TestNamer_ExperimentName(t *testing.T) {
	tests := []struct {
		name    string
		branch  string
		git     string
		want    string
		wantErr bool
	}{
		{name: "ci branch", branch: "main", want: "search_main"},
		{name: "nested ci branch", branch: "feature/better_chunks", want: "search_better_chunks"},
		{name: "git fallback", git: "users/dev/tuning", want: "search_tuning"},
		{name: "trailing slash", branch: "feature/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := withGit(New(tt.branch, ""), tt.git, nil)
			got, err := n.ExperimentName(context.Background(), "search")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNamer_GitFailure(t *testing.T) {
	n := withGit(New("", ""), "", errors.New("not a git repository"))
	_, err := n.ExperimentName(context.Background(), "search")
	assert.ErrorContains(t, err, "not a git repository")
}

func TestNamer_RunName(t *testing.T) {
	assert.Equal(t, "run_20240611.3", New("main", "20240611.3").RunName())

	local := New("main", "").RunName()
	assert.Regexp(t, regexp.MustCompile(`^run_local_[0-9a-f]{32}$`), local)
	assert.NotEqual(t, local, New("main", "").RunName())
}

func TestNamer_ResourceName(t *testing.T) {
	n := New("feature/my_branch", "")

	tests := []struct {
		suffix string
		want   string
	}{
		{"", "my-branch"},
		{"index", "my-branch-index"},
		{"indexer", "my-branch-indexer"},
		{"data", "my-branch-data"},
		{"skillset", "my-branch-skillset"},
	}
	for _, tt := range tests {
		got, err := n.ResourceName(context.Background(), tt.suffix)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvBranch, "release/v2")
	t.Setenv(EnvBuildID, "77")

	n := FromEnv()
	name, err := n.ExperimentName(context.Background(), "manuals")
	require.NoError(t, err)
	assert.Equal(t, "manuals_v2", name)
	assert.Equal(t, "run_77", n.RunName())
}
