package domain

type ProjectStatus string

const (
	ProjectDraft      ProjectStatus = "draft"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectSubmitted  ProjectStatus = "submitted"
)

// ValidProjectStatuses is the canonical set of accepted project status strings.
var ValidProjectStatuses = map[ProjectStatus]bool{
	ProjectDraft: true, ProjectInProgress: true, ProjectCompleted: true, ProjectSubmitted: true,
}

type TaskStatus string

const (
	TaskUnset     TaskStatus = ""
	TaskToDo      TaskStatus = "to-do"
	TaskCompleted TaskStatus = "completed"
)

// ValidTaskStatuses is the canonical set of accepted task status strings.
var ValidTaskStatuses = map[TaskStatus]bool{
	TaskUnset: true, TaskToDo: true, TaskCompleted: true,
}

type TaskType string

const (
	TaskPlain         TaskType = "plain"
	TaskFile          TaskType = "file"
	TaskObservation   TaskType = "observation"
	TaskProject       TaskType = "project"
	TaskProfileUpdate TaskType = "profile-update"
)

// ValidTaskTypes is the canonical set of accepted task type strings.
// The empty type is tolerated and treated as plain.
var ValidTaskTypes = map[TaskType]bool{
	"": true, TaskPlain: true, TaskFile: true, TaskObservation: true,
	TaskProject: true, TaskProfileUpdate: true,
}

type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadUploading UploadStatus = "uploading"
	UploadUploaded  UploadStatus = "uploaded"
	UploadFailed    UploadStatus = "failed"
)

// ChildField records which wire field carried a node's children.
type ChildField string

const (
	ChildFieldNone     ChildField = ""
	ChildFieldChildren ChildField = "children"
	ChildFieldTasks    ChildField = "tasks"
)

// NodeKind separates grouping nodes from actionable ones.
type NodeKind string

const (
	NodePillar NodeKind = "pillar"
	NodeLeaf   NodeKind = "leaf"
)
