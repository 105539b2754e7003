package models

import "time"

// Milestone is a roadmap milestone.
type Milestone struct {
	Name        string     `json:"name" yaml:"name"`
	Due         *time.Time `json:"-" yaml:"-"`
	Completed   bool       `json:"completed" yaml:"completed"`
	Description string     `json:"description" yaml:"description,omitempty"`
}

// Component groups tickets by product area.
type Component struct {
	Name        string `json:"name" yaml:"name"`
	Owner       string `json:"owner,omitempty" yaml:"owner,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}
