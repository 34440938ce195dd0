package domain

// TaskState is the lifecycle state of a task. Tasks are always created in
// TaskOpen and only ever leave a state through the workflow machine.
type TaskState string

const (
	TaskOpen   TaskState = "open"
	TaskTodo   TaskState = "todo"
	TaskDoing  TaskState = "doing"
	TaskDone   TaskState = "done"
	TaskClosed TaskState = "closed"
)

// ValidTaskStates is the canonical set of accepted task state strings.
var ValidTaskStates = map[string]bool{
	"open": true, "todo": true, "doing": true, "done": true, "closed": true,
}

// Stage is one of the five workflow phases an application assigns a permit
// group to. StageCreate gates task creation; the remaining stages share
// their names with the task state they gate.
type Stage string

const (
	StageCreate Stage = "create"
	StageOpen   Stage = "open"
	StageTodo   Stage = "todo"
	StageDoing  Stage = "doing"
	StageDone   Stage = "done"
)

// Stages lists all five stages in workflow order.
var Stages = []Stage{StageCreate, StageOpen, StageTodo, StageDoing, StageDone}

// StageForState maps a task's current state to the stage whose permit group
// gates actions on it while it is in that state. Closed tasks have no stage:
// no role-gated action exists once a task is closed.
func StageForState(s TaskState) (Stage, bool) {
	switch s {
	case TaskOpen:
		return StageOpen, true
	case TaskTodo:
		return StageTodo, true
	case TaskDoing:
		return StageDoing, true
	case TaskDone:
		return StageDone, true
	default:
		return "", false
	}
}
