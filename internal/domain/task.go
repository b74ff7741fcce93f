package domain

import "encoding/json"

// MetaAddedToPlan is the metadata key a reviewer decision is written under.
const MetaAddedToPlan = "addedToPlan"

// Task is a node of the plan tree. A node is owned by exactly one parent
// (the Project or another Task). Nodes are treated as immutable values once
// they are part of a tree: mutations produce copies along the changed path.
type Task struct {
	ID              string
	Name            string
	Description     string
	Type            TaskType
	Status          TaskStatus
	IsRequired      bool
	IsCustomTask    bool
	IsDeletable     bool
	IsDeleted       bool
	ServiceProvider string
	Attachments     []Attachment
	Metadata        map[string]any

	// ChildField is the wire field the children arrived under. Siblings at
	// the same depth share it.
	ChildField ChildField
	Children   []*Task
}

// Kind reports whether the node is a pillar (grouping node) or a leaf task.
func (t *Task) Kind() NodeKind {
	if t.Type == TaskProject {
		return NodePillar
	}
	return NodeLeaf
}

// HasChildren reports whether the node carries a child collection with
// at least one entry.
func (t *Task) HasChildren() bool {
	return len(t.Children) > 0
}

// AddedToPlan reports whether the metadata carries addedToPlan == true.
func (t *Task) AddedToPlan() bool {
	v, ok := t.Metadata[MetaAddedToPlan].(bool)
	return ok && v
}

// Fields returns the wire representation of the node's own fields, without
// id and children.
func (t *Task) Fields() map[string]any {
	f := map[string]any{
		"name":         t.Name,
		"isRequired":   t.IsRequired,
		"isCustomTask": t.IsCustomTask,
		"isDeletable":  t.IsDeletable,
	}
	if t.Description != "" {
		f["description"] = t.Description
	}
	if t.Type != "" {
		f["type"] = string(t.Type)
	}
	if t.Status != TaskUnset {
		f["status"] = string(t.Status)
	}
	if t.ServiceProvider != "" {
		f["serviceProvider"] = t.ServiceProvider
	}
	if len(t.Attachments) > 0 {
		f["attachments"] = t.Attachments
	}
	if t.Metadata != nil {
		f["metadata"] = t.Metadata
	}
	return f
}

type taskWire struct {
	ID              string         `json:"_id"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	Type            TaskType       `json:"type,omitempty"`
	Status          TaskStatus     `json:"status,omitempty"`
	IsRequired      bool           `json:"isRequired"`
	IsCustomTask    bool           `json:"isCustomTask"`
	IsDeletable     bool           `json:"isDeletable"`
	IsDeleted       bool           `json:"isDeleted,omitempty"`
	ServiceProvider string         `json:"serviceProvider,omitempty"`
	Attachments     []Attachment   `json:"attachments,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	Children        *[]*Task       `json:"children,omitempty"`
	Tasks           *[]*Task       `json:"tasks,omitempty"`
}

// MarshalJSON writes children back under the field they were read from.
func (t *Task) MarshalJSON() ([]byte, error) {
	w := taskWire{
		ID:              t.ID,
		Name:            t.Name,
		Description:     t.Description,
		Type:            t.Type,
		Status:          t.Status,
		IsRequired:      t.IsRequired,
		IsCustomTask:    t.IsCustomTask,
		IsDeletable:     t.IsDeletable,
		IsDeleted:       t.IsDeleted,
		ServiceProvider: t.ServiceProvider,
		Attachments:     t.Attachments,
		Metadata:        t.Metadata,
	}
	children := t.Children
	if children == nil {
		children = []*Task{}
	}
	switch t.ChildField {
	case ChildFieldChildren:
		w.Children = &children
	case ChildFieldTasks:
		w.Tasks = &children
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts either "children" or "tasks" as the child field.
// When both are present "children" wins.
func (t *Task) UnmarshalJSON(data []byte) error {
	var w taskWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Task{
		ID:              w.ID,
		Name:            w.Name,
		Description:     w.Description,
		Type:            w.Type,
		Status:          w.Status,
		IsRequired:      w.IsRequired,
		IsCustomTask:    w.IsCustomTask,
		IsDeletable:     w.IsDeletable,
		IsDeleted:       w.IsDeleted,
		ServiceProvider: w.ServiceProvider,
		Attachments:     w.Attachments,
		Metadata:        w.Metadata,
	}
	switch {
	case w.Children != nil:
		t.ChildField = ChildFieldChildren
		t.Children = *w.Children
	case w.Tasks != nil:
		t.ChildField = ChildFieldTasks
		t.Children = *w.Tasks
	}
	return nil
}
