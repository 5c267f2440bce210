package errors

import "fmt"

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *BlogPubError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *BlogPubError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *BlogPubError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Publish pipeline errors

func DirtyWorkingTree(summary string) *BlogPubError {
	return New(CategoryValidation, SeverityFatal, "working tree has uncommitted changes").
		WithContext("status", summary)
}

func TargetBranchCheckedOut(branch string) *BlogPubError {
	return New(CategoryValidation, SeverityFatal,
		fmt.Sprintf("target branch %s is checked out in the authoring tree", branch)).
		WithContext("branch", branch)
}

func GenerationFailed(cause error) *BlogPubError {
	return Wrap(cause, CategoryGenerator, SeverityFatal, "site generation failed")
}

func VersionControlFailed(operation string, cause error) *BlogPubError {
	return Wrap(cause, CategoryGit, SeverityFatal, "git operation failed").
		WithContext("operation", operation)
}

func GitAuthError(remote string, cause error) *BlogPubError {
	return Wrap(cause, CategoryAuth, SeverityFatal, "git authentication failed").
		WithContext("remote", remote)
}

// Infrastructure errors

func DaemonError(message string) *BlogPubError {
	return New(CategoryDaemon, SeverityError, message)
}

func InternalError(message string, cause error) *BlogPubError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
