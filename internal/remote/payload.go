package remote

import (
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/tasktree/internal/domain"
)

// Body is the partial-update document accepted by
// PATCH {endpoint}/projects/{id}.
type Body struct {
	Tasks []Node `json:"tasks"`
}

// Node is one entry of a partial update. ID addresses the node; Name is
// carried on ancestors so the service can label what it is merging into.
// Fields holds the changed fields only.
type Node struct {
	ID        string
	Name      string
	Fields    map[string]any
	Children  []Node
	IsDeleted bool
}

// MarshalJSON flattens Fields next to the addressing keys. A key in Fields
// overrides Name.
func (n Node) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.Fields)+4)
	m["_id"] = n.ID
	if n.Name != "" {
		m["name"] = n.Name
	}
	for k, v := range n.Fields {
		m[k] = v
	}
	if n.Children != nil {
		m["children"] = n.Children
	}
	if n.IsDeleted {
		m["isDeleted"] = true
	}
	return json.Marshal(m)
}

// UnmarshalJSON splits the addressing keys from the changed fields.
// "tasks" is accepted as a synonym for "children".
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Node{}
	for k, v := range raw {
		var err error
		switch k {
		case "_id":
			err = json.Unmarshal(v, &n.ID)
		case "name":
			err = json.Unmarshal(v, &n.Name)
		case "isDeleted":
			err = json.Unmarshal(v, &n.IsDeleted)
		case "children", "tasks":
			if n.Children != nil && k == "tasks" {
				continue
			}
			var kids []Node
			err = json.Unmarshal(v, &kids)
			if kids == nil {
				kids = []Node{}
			}
			n.Children = kids
		default:
			var val any
			err = json.Unmarshal(v, &val)
			if n.Fields == nil {
				n.Fields = make(map[string]any)
			}
			n.Fields[k] = val
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
	}
	return nil
}

// Op names the kind of mutation a command mirrors.
type Op string

const (
	OpUpdate Op = "update"
	OpAdd    Op = "add"
	OpDelete Op = "delete"
)

// Command is a fully built remote call. It is a value: once built it no
// longer refers to the tree it was derived from.
type Command struct {
	Op        Op
	ProjectID string
	TaskID    string
	Body      Body
}

// UpdateCommand nests the changed fields of the node under its ancestor
// chain, outermost first. Ancestors carry only their id and name.
func UpdateCommand(projectID string, ancestors []*domain.Task, taskID string, fields map[string]any) Command {
	node := Node{ID: taskID, Fields: copyFields(fields)}
	for i := len(ancestors) - 1; i >= 0; i-- {
		a := ancestors[i]
		node = Node{ID: a.ID, Name: a.Name, Children: []Node{node}}
	}
	return Command{Op: OpUpdate, ProjectID: projectID, TaskID: taskID, Body: Body{Tasks: []Node{node}}}
}

// AddCommand carries the whole new child under its parent. A nil parent
// adds the child at the top level.
func AddCommand(projectID string, parent *domain.Task, child *domain.Task) Command {
	node := FromTask(child)
	if parent != nil {
		node = Node{ID: parent.ID, Name: parent.Name, Children: []Node{node}}
	}
	return Command{Op: OpAdd, ProjectID: projectID, TaskID: child.ID, Body: Body{Tasks: []Node{node}}}
}

// DeleteCommand soft-deletes only the direct node. Descendants are left for
// the service to hide with their parent.
func DeleteCommand(projectID string, parent *domain.Task, taskID string) Command {
	node := Node{ID: taskID, IsDeleted: true}
	if parent != nil {
		node = Node{ID: parent.ID, Name: parent.Name, Children: []Node{node}}
	}
	return Command{Op: OpDelete, ProjectID: projectID, TaskID: taskID, Body: Body{Tasks: []Node{node}}}
}

// FromTask converts a whole subtree to payload nodes.
func FromTask(t *domain.Task) Node {
	n := Node{ID: t.ID, Fields: t.Fields(), IsDeleted: t.IsDeleted}
	if t.ChildField != domain.ChildFieldNone || len(t.Children) > 0 {
		n.Children = make([]Node, 0, len(t.Children))
		for _, c := range t.Children {
			n.Children = append(n.Children, FromTask(c))
		}
	}
	return n
}

func copyFields(f map[string]any) map[string]any {
	out := make(map[string]any, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
