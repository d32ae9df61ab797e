package naming

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
)

const (
	EnvBranch  = "BUILD_SOURCEBRANCHNAME"
	EnvBuildID = "BUILD_BUILDID"
)

// Namer derives experiment, run and resource names from the CI build or the local git checkout.
type Namer struct {
	branch  string
	buildID string
	git     func(ctx context.Context) (string, error)
	newID   func() string
}

// New uses branch and buildID when they are set and falls back to git and a random id otherwise.
func New(branch, buildID string) *Namer {
	return &Namer{
		branch:  branch,
		buildID: buildID,
		git:     currentGitBranch,
		newID:   func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

func FromEnv() *Namer {
	return New(os.Getenv(EnvBranch), os.Getenv(EnvBuildID))
}

func currentGitBranch(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD").Output()
	if err != nil {
		return "", fmt.Errorf("resolve git branch: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Branch returns the last path segment of the branch name, so "refs/heads/feature/x" becomes "x".
func (n *Namer) Branch(ctx context.Context) (string, error) {
	branch := n.branch
	if branch == "" {
		var err error
		if branch, err = n.git(ctx); err != nil {
			return "", err
		}
	}
	parts := strings.Split(branch, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return "", fmt.Errorf("empty branch name %q", branch)
	}
	return last, nil
}

// ExperimentName is "<experimentType>_<branch>".
func (n *Namer) ExperimentName(ctx context.Context, experimentType string) (string, error) {
	branch, err := n.Branch(ctx)
	if err != nil {
		return "", err
	}
	return experimentType + "_" + branch, nil
}

// RunName is "run_<build id>", or "run_local_<random hex>" outside CI.
func (n *Namer) RunName() string {
	if n.buildID != "" {
		return "run_" + n.buildID
	}
	return "run_local_" + n.newID()
}

// ResourceName names branch-scoped search resources: the branch with "_" replaced by "-",
// followed by "-<suffix>" when suffix is set (index, indexer, data, skillset).
func (n *Namer) ResourceName(ctx context.Context, suffix string) (string, error) {
	branch, err := n.Branch(ctx)
	if err != nil {
		return "", err
	}
	name := strings.ReplaceAll(branch, "_", "-")
	if suffix != "" {
		name += "-" + suffix
	}
	return name, nil
}
