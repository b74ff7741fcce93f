package template

import (
	"encoding/json"
	"fmt"
	"os"
)

// Schema is the JSON form of a plan template.
type Schema struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Version     string           `json:"version,omitempty"`
	Variables   []VariableConfig `json:"variables,omitempty"`
	Pillars     []PillarConfig   `json:"pillars"`
}

// VariableConfig declares a template variable. Int variables may bound
// repeats and appear in arithmetic; string variables only substitute.
type VariableConfig struct {
	Key      string          `json:"key"`
	Type     string          `json:"type"` // "int", "string"
	Required bool            `json:"required"`
	Default  json.RawMessage `json:"default,omitempty"`
	Min      *int            `json:"min,omitempty"`
	Max      *int            `json:"max,omitempty"`
}

type PillarConfig struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// ChildField is the wire field the pillar's tasks are stored under:
	// "children" (default) or "tasks".
	ChildField string       `json:"child_field,omitempty"`
	Tasks      []TaskConfig `json:"tasks"`
}

type TaskConfig struct {
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Type            string          `json:"type,omitempty"`
	Optional        bool            `json:"optional,omitempty"`
	ServiceProvider string          `json:"service_provider,omitempty"`
	Repeat          json.RawMessage `json:"repeat,omitempty"` // object or array
	Subtasks        []TaskConfig    `json:"subtasks,omitempty"`
}

// RepeatConfig expands a task once per value of Var in [From, To].
// In JSON, "repeat" can be an object (single) or an array (nested).
type RepeatConfig struct {
	Var   string `json:"var"`
	From  int    `json:"from"`
	To    *int   `json:"to,omitempty"`
	ToVar string `json:"to_var,omitempty"`
}

// LoadSchema reads and parses a template JSON file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSchema(data)
}

func ParseSchema(data []byte) (*Schema, error) {
	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return &schema, nil
}

// ParseRepeats parses the repeat field which can be a single object or an array.
func ParseRepeats(raw json.RawMessage) ([]RepeatConfig, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var arr []RepeatConfig
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, nil
	}

	var single RepeatConfig
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return []RepeatConfig{single}, nil
}
