// Package git provides the version-control backend for blogpub's publish
// procedure.
//
// This package handles Git operations including:
//   - Working-tree cleanliness checks with path exclusions
//   - Linked worktree lifecycle (prune, registration cleanup, attach)
//   - Staging and committing inside the worktree with a scoped identity
//   - Authenticated force-push of the target branch
//   - Typed errors for structured error handling
//
// Repository inspection and the network push use go-git; worktree
// management and in-worktree commits shell out to the system git binary,
// which is the only reliable implementation of linked-worktree semantics
// and keeps compatibility with user git configuration.
package git
