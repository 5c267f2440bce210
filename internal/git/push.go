package git

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	gogit "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// PushTarget describes where ForcePush sends the target branch. RemoteURL,
// when set, overrides the named remote and may embed a credential; Token adds
// basic auth for pushes against the named remote.
type PushTarget struct {
	RemoteName string
	RemoteURL  string
	Token      string
}

// Destination returns a loggable description of the push target with any
// embedded credential removed.
func (t PushTarget) Destination() string {
	if t.RemoteURL != "" {
		return RedactURL(t.RemoteURL)
	}
	return t.RemoteName
}

// ForcePush force-updates refs/heads/<branch> on the push target. The target
// branch's history is disposable and fully regenerated on every publish, so
// the refspec always forces; an already-up-to-date remote is success.
func (c *Client) ForcePush(ctx context.Context, branch string, target PushTarget) error {
	repo, err := gogit.PlainOpen(c.repoDir)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	refspec := gitcfg.RefSpec("+refs/heads/" + branch + ":refs/heads/" + branch)
	opts := &gogit.PushOptions{
		RefSpecs: []gitcfg.RefSpec{refspec},
		Progress: os.Stderr,
	}

	remote, err := repo.Remote(target.RemoteName)
	switch {
	case err == nil:
		opts.RemoteName = target.RemoteName
		opts.RemoteURL = target.RemoteURL
	case errors.Is(err, gogit.ErrRemoteNotFound) && target.RemoteURL != "":
		// No configured remote; push straight to the override URL.
		remote, err = repo.CreateRemoteAnonymous(&gitcfg.RemoteConfig{
			Name: "anonymous",
			URLs: []string{target.RemoteURL},
		})
		if err != nil {
			return fmt.Errorf("failed to create anonymous remote: %w", err)
		}
		opts.RemoteName = "anonymous"
		opts.RemoteURL = target.RemoteURL
	default:
		return &NotFoundError{Op: "push", URL: target.RemoteName, Err: err}
	}

	if target.Token != "" {
		opts.Auth = &http.BasicAuth{
			Username: "x-access-token", // Generic token auth convention
			Password: target.Token,
		}
	}

	if err := remote.PushContext(ctx, opts); err != nil {
		if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			return nil
		}
		return classifyPushError(target.Destination(), err)
	}
	return nil
}

// RedactURL strips userinfo (and therefore any embedded credential) from a
// URL so it can be logged or embedded in error text.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparseable url)"
	}
	u.User = nil
	return u.String()
}
