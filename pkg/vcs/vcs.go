// Package vcs wraps go-git behind named clone/add/commit/push operations so
// publishing failures are distinguishable and testable without a shell.
package vcs

import (
	"context"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/pkg/errors"

	"github.com/tunelab/tune/pkg/logging"
)

// Signature identifies the author of a commit.
type Signature struct {
	Name  string
	Email string
}

// Repo is a local work tree with a remote to push to.
type Repo interface {
	// Dir returns the work tree directory.
	Dir() string
	// AddAll stages every change in the work tree.
	AddAll() error
	// Commit records the staged changes and returns the commit hash.
	Commit(message string, sig Signature) (string, error)
	// Push publishes local branches to the remote. Pushing an up-to-date
	// branch is not an error.
	Push(ctx context.Context) error
}

// Cloner materializes a remote repository into a local work tree.
type Cloner interface {
	Clone(ctx context.Context, url, dir string) (Repo, error)
}

// Client implements Cloner against real git remotes.
type Client struct {
	auth   transport.AuthMethod
	logger logging.Interface
}

var _ Cloner = (*Client)(nil)

// NewClient creates a git client. A non-empty token is used as basic-auth
// credentials, the convention hub remotes expect.
func NewClient(token string, logger logging.Interface) *Client {
	var auth transport.AuthMethod
	if token != "" {
		auth = &githttp.BasicAuth{Username: "git", Password: token}
	}
	return &Client{auth: auth, logger: logger}
}

// Clone clones url into dir. A freshly created (empty) remote is handled by
// initializing dir locally and attaching the remote, so the first publish of
// a new repository works the same as later ones.
func (c *Client) Clone(ctx context.Context, url, dir string) (Repo, error) {
	c.logger.WithField("url", url).WithField("dir", dir).Info("Cloning repository")

	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:  url,
		Auth: c.auth,
	})
	if err == nil {
		return &localRepo{repo: repo, dir: dir, auth: c.auth}, nil
	}

	if !errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return nil, errors.Wrapf(err, "vcs: clone %s", url)
	}

	repo, err = git.PlainInit(dir, false)
	if err != nil {
		return nil, errors.Wrapf(err, "vcs: init %s", dir)
	}
	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{url},
	}); err != nil {
		return nil, errors.Wrapf(err, "vcs: attach remote %s", url)
	}

	return &localRepo{repo: repo, dir: dir, auth: c.auth}, nil
}

type localRepo struct {
	repo *git.Repository
	dir  string
	auth transport.AuthMethod
}

func (r *localRepo) Dir() string { return r.dir }

func (r *localRepo) AddAll() error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return errors.Wrap(err, "vcs: worktree")
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return errors.Wrap(err, "vcs: add")
	}
	return nil
}

func (r *localRepo) Commit(message string, sig Signature) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", errors.Wrap(err, "vcs: worktree")
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  sig.Name,
			Email: sig.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "vcs: commit")
	}

	return hash.String(), nil
}

func (r *localRepo) Push(ctx context.Context) error {
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: git.DefaultRemoteName,
		RefSpecs:   []gitconfig.RefSpec{"refs/heads/*:refs/heads/*"},
		Auth:       r.auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return errors.Wrap(err, "vcs: push")
	}
	return nil
}
