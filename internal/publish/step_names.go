package publish

// StepName is a strongly-typed identifier for a publish step. All canonical
// steps are declared as constants here for compile-time safety.
type StepName string

// Canonical step names, in execution order.
const (
	StepVerifyClean     StepName = "verify_clean"
	StepPrepareWorktree StepName = "prepare_worktree"
	StepClearOutput     StepName = "clear_output"
	StepGenerate        StepName = "generate"
	StepCommit          StepName = "commit"
	StepPush            StepName = "push"
)

// StepDef pairs a step name with its executing function (internal wiring helper).
type StepDef struct {
	Name StepName
	Fn   Step
}
