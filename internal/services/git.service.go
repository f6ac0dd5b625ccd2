package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitRepo runs git against one working tree by shelling out to the
// git CLI. The backup store is a plain git repository on purpose:
// operators can clone, inspect, and roll it back with ordinary
// tooling, and no git library dependency is carried for it.
type GitRepo struct {
	Dir string

	// Redact lists secrets (the access token, the authenticated
	// remote URL) stripped from command lines and stderr before they
	// reach errors or logs.
	Redact []string
}

// Run executes one git command in the repository directory and returns
// trimmed stdout. Failures wrap the command line, exit error, and
// stderr, with secrets scrubbed.
func (g *GitRepo) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", g.Dir}, args...)...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s (in %s): %w: %s",
			g.scrub(strings.Join(args, " ")), g.Dir, err,
			g.scrub(strings.TrimSpace(stderr.String())))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// IsRepo reports whether the directory is a git working tree.
func (g *GitRepo) IsRepo() bool {
	info, err := os.Stat(filepath.Join(g.Dir, ".git"))
	return err == nil && info.IsDir()
}

// HasCommits reports whether the repository has any commit yet.
func (g *GitRepo) HasCommits(ctx context.Context) bool {
	_, err := g.Run(ctx, "rev-parse", "--verify", "HEAD")
	return err == nil
}

// Fsck checks object store integrity.
func (g *GitRepo) Fsck(ctx context.Context) error {
	_, err := g.Run(ctx, "fsck", "--no-progress")
	return err
}

func (g *GitRepo) scrub(s string) string {
	for _, secret := range g.Redact {
		if secret != "" {
			s = strings.ReplaceAll(s, secret, "***")
		}
	}
	return s
}
