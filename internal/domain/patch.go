package domain

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// TaskPatch is a partial update. Nil fields are left untouched; a non-nil
// Metadata map replaces the node's metadata wholesale (shallow merge).
type TaskPatch struct {
	Name            *string
	Description     *string
	Type            *TaskType
	Status          *TaskStatus
	IsRequired      *bool
	IsCustomTask    *bool
	IsDeletable     *bool
	ServiceProvider *string
	Attachments     *[]Attachment
	Metadata        map[string]any
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Apply returns a copy of t with every set field of p overwritten.
// Children are shared with t.
func (p TaskPatch) Apply(t *Task) *Task {
	cp := *t
	if p.Name != nil {
		cp.Name = *p.Name
	}
	if p.Description != nil {
		cp.Description = *p.Description
	}
	if p.Type != nil {
		cp.Type = *p.Type
	}
	if p.Status != nil {
		cp.Status = *p.Status
	}
	if p.IsRequired != nil {
		cp.IsRequired = *p.IsRequired
	}
	if p.IsCustomTask != nil {
		cp.IsCustomTask = *p.IsCustomTask
	}
	if p.IsDeletable != nil {
		cp.IsDeletable = *p.IsDeletable
	}
	if p.ServiceProvider != nil {
		cp.ServiceProvider = *p.ServiceProvider
	}
	if p.Attachments != nil {
		cp.Attachments = *p.Attachments
	}
	if p.Metadata != nil {
		cp.Metadata = p.Metadata
	}
	return &cp
}

// Fields returns the changed fields keyed by their wire names.
func (p TaskPatch) Fields() map[string]any {
	f := make(map[string]any)
	if p.Name != nil {
		f["name"] = *p.Name
	}
	if p.Description != nil {
		f["description"] = *p.Description
	}
	if p.Type != nil {
		f["type"] = string(*p.Type)
	}
	if p.Status != nil {
		f["status"] = string(*p.Status)
	}
	if p.IsRequired != nil {
		f["isRequired"] = *p.IsRequired
	}
	if p.IsCustomTask != nil {
		f["isCustomTask"] = *p.IsCustomTask
	}
	if p.IsDeletable != nil {
		f["isDeletable"] = *p.IsDeletable
	}
	if p.ServiceProvider != nil {
		f["serviceProvider"] = *p.ServiceProvider
	}
	if p.Attachments != nil {
		f["attachments"] = *p.Attachments
	}
	if p.Metadata != nil {
		f["metadata"] = p.Metadata
	}
	return f
}

// WithMetadataValue returns a copy of meta with key set to value.
// The input map is never modified.
func WithMetadataValue(meta map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	out[key] = value
	return out
}
