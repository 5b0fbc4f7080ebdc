package corpus

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitRunner executes git commands.
type GitRunner interface {
	Run(ctx context.Context, args []string) ([]byte, error)
}

type execGitRunner struct{}

func (execGitRunner) Run(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// DefaultGitRunner runs the git binary on PATH.
var DefaultGitRunner GitRunner = execGitRunner{}

// Checkout describes one repository to make available locally.
type Checkout struct {
	Repository string
	CommitSHA  string
	// Root, when absolute, is used as-is and git is never invoked.
	Root string
}

// Cloner fetches repositories into a working directory.
type Cloner struct {
	Dir    string
	Runner GitRunner
}

func (c *Cloner) runner() GitRunner {
	if c.Runner == nil {
		return DefaultGitRunner
	}
	return c.Runner
}

// Fetch makes the checkout available locally and returns its root
// directory. Unpinned repositories are shallow-cloned at depth 1; pinned
// ones are fetched at the given commit and checked out detached.
func (c *Cloner) Fetch(ctx context.Context, co Checkout) (string, error) {
	root := strings.TrimSpace(co.Root)
	if root != "" && filepath.IsAbs(root) {
		return validateLocalRoot(co.Repository, root)
	}
	if strings.TrimSpace(c.Dir) == "" {
		return "", errors.New("clone directory is required")
	}

	remote, err := normalizeRepository(co.Repository)
	if err != nil {
		return "", fmt.Errorf("repository %q: %w", co.Repository, err)
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create clone directory %s: %w", c.Dir, err)
	}

	repoDir := filepath.Join(c.Dir, cacheKey(remote))
	if co.CommitSHA == "" {
		if err := c.shallowClone(ctx, remote, repoDir); err != nil {
			return "", err
		}
	} else if err := c.pinnedCheckout(ctx, remote, repoDir, co.CommitSHA); err != nil {
		return "", err
	}

	if root == "" {
		return repoDir, nil
	}
	resolved := filepath.Join(repoDir, filepath.FromSlash(root))
	if _, err := os.Stat(resolved); err != nil {
		return "", fmt.Errorf("root %q not found in %s: %w", root, co.Repository, err)
	}
	return filepath.Clean(resolved), nil
}

// Remove deletes a directory created by Fetch. Local roots are left alone.
func (c *Cloner) Remove(dir string) error {
	if c.Dir == "" || !strings.HasPrefix(filepath.Clean(dir), filepath.Clean(c.Dir)+string(filepath.Separator)) {
		return nil
	}
	return os.RemoveAll(dir)
}

func (c *Cloner) shallowClone(ctx context.Context, remote, repoDir string) error {
	if _, err := os.Stat(filepath.Join(repoDir, ".git")); err == nil {
		return nil
	}
	if _, err := c.runner().Run(ctx, []string{
		"clone", "--depth", "1", remote, repoDir,
	}); err != nil {
		return fmt.Errorf("clone %s: %w", remote, classifyGitError(err, remote, ""))
	}
	return nil
}

func (c *Cloner) pinnedCheckout(ctx context.Context, remote, repoDir, commit string) error {
	run := c.runner()
	if _, err := os.Stat(filepath.Join(repoDir, ".git")); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("stat cached repo %s: %w", repoDir, err)
		}
		if _, err := run.Run(ctx, []string{
			"clone", "--no-checkout", remote, repoDir,
		}); err != nil {
			return fmt.Errorf("clone %s: %w", remote, classifyGitError(err, remote, commit))
		}
	}
	if _, err := run.Run(ctx, []string{
		"-C", repoDir, "cat-file", "-e", commit + "^{commit}",
	}); err != nil {
		if _, err := run.Run(ctx, []string{
			"-C", repoDir, "fetch", "--depth", "1", "origin", commit,
		}); err != nil {
			return fmt.Errorf("fetch %s commit %s: %w", remote, commit, classifyGitError(err, remote, commit))
		}
	}
	if _, err := run.Run(ctx, []string{
		"-C", repoDir, "checkout", "--detach", "--force", commit,
	}); err != nil {
		return fmt.Errorf("checkout %s commit %s: %w", remote, commit, err)
	}
	return nil
}

func validateLocalRoot(name, root string) (string, error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s local root does not exist: %s", name, root)
		}
		return "", fmt.Errorf("stat %s local root: %w", name, err)
	}
	return filepath.Clean(root), nil
}

func cacheKey(remote string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(remote))))
	return hex.EncodeToString(sum[:8])
}

func normalizeRepository(repository string) (string, error) {
	repo := strings.TrimSpace(repository)
	if repo == "" {
		return "", errors.New("repository is required")
	}

	switch {
	case strings.HasPrefix(repo, "git@"), strings.HasPrefix(repo, "ssh://"):
		return repo, nil
	case strings.HasPrefix(repo, "http://"), strings.HasPrefix(repo, "https://"):
		trimmed := strings.TrimRight(repo, "/")
		if strings.HasSuffix(trimmed, ".git") {
			return trimmed, nil
		}
		return trimmed + ".git", nil
	case strings.HasPrefix(repo, "github.com/"):
		return "https://" + strings.TrimRight(repo, "/") + ".git", nil
	default:
		if strings.Contains(repo, "/") && !filepath.IsAbs(repo) && !strings.HasPrefix(repo, ".") {
			return "https://github.com/" + strings.Trim(repo, "/") + ".git", nil
		}
		return repo, nil
	}
}

func classifyGitError(err error, remote, commit string) error {
	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "repository not found"),
		strings.Contains(text, "could not read from remote repository"):
		return fmt.Errorf("repository not found or inaccessible: %s", remote)
	case commit != "" && (strings.Contains(text, "couldn't find remote ref") ||
		strings.Contains(text, "not our ref")):
		return fmt.Errorf("commit not found: %s", commit)
	case strings.Contains(text, "failed to connect"),
		strings.Contains(text, "timed out"),
		strings.Contains(text, "could not resolve host"):
		return fmt.Errorf("network error while accessing %s", remote)
	default:
		return err
	}
}
