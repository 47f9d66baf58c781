// elCortex: a colored de Bruijn graph store and traversal engine.
// Copyright (c) 2026 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elcortex/blob/master/LICENSE.txt>.


// Package traversal walks and explores colored de Bruijn graphs.
//
// An Engine extends a seed k-mer one base at a time. At every step the
// candidate bases come from the edge bytes of the primary and joining
// colors, combined with And or Or. Link files can collapse a branch to
// a single base, and a StoppingRule decides for every candidate vertex
// whether to continue, prune the branch, accept, or abort.
package traversal

import (
	"fmt"

	"github.com/exascience/elcortex/links"
)

// Combination is the operator that combines the candidate bases of
// the individual colors.
type Combination uint8

const (
	// And keeps the bases present in every color.
	And Combination = iota
	// Or keeps the bases present in at least one color.
	Or
)

func (c Combination) String() string {
	if c == Or {
		return "or"
	}
	return "and"
}

// Direction selects which way the engine extends from a vertex.
type Direction uint8

const (
	// Forward extends downstream, appending bases.
	Forward Direction = iota
	// Reverse extends upstream, prepending bases.
	Reverse
	// Both extends both ways.
	Both
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "forward":
		return Forward, nil
	case "reverse":
		return Reverse, nil
	case "both":
		return Both, nil
	}
	return 0, fmt.Errorf("invalid traversal direction %q", s)
}

// ParseCombination is the inverse of Combination.String.
func ParseCombination(s string) (Combination, error) {
	switch s {
	case "and":
		return And, nil
	case "or":
		return Or, nil
	}
	return 0, fmt.Errorf("invalid color combination %q", s)
}

// Config describes one kind of traversal. It is immutable once
// created with NewConfig and can be shared by several engines.
type Config struct {
	primary       int
	joining       []int
	recruitment   []int
	combination   Combination
	direction     Direction
	links         *links.Model
	rule          StoppingRule
	requireAccept bool
}

// Option modifies a Config under construction.
type Option func(*Config)

// WithJoiningColors adds colors whose edges are combined with those of
// the primary color.
func WithJoiningColors(colors ...int) Option {
	return func(cfg *Config) {
		cfg.joining = append(cfg.joining, colors...)
	}
}

// WithRecruitmentColors adds colors that tag neighboring vertices
// without ever being followed.
func WithRecruitmentColors(colors ...int) Option {
	return func(cfg *Config) {
		cfg.recruitment = append(cfg.recruitment, colors...)
	}
}

// WithCombination sets the operator for joining colors. The default
// is And.
func WithCombination(c Combination) Option {
	return func(cfg *Config) {
		cfg.combination = c
	}
}

// WithDirection sets the extension direction. The default is Both.
func WithDirection(d Direction) Option {
	return func(cfg *Config) {
		cfg.direction = d
	}
}

// WithLinks attaches a links model that collapses branches.
func WithLinks(m *links.Model) Option {
	return func(cfg *Config) {
		cfg.links = m
	}
}

// WithStoppingRule sets the rule consulted for every candidate
// vertex. Without a rule, traversals continue until the graph is
// exhausted.
func WithStoppingRule(rule StoppingRule) Option {
	return func(cfg *Config) {
		cfg.rule = rule
	}
}

// WithRequireAccept makes Explore return no subgraph unless the
// stopping rule accepted a vertex.
func WithRequireAccept() Option {
	return func(cfg *Config) {
		cfg.requireAccept = true
	}
}

// NewConfig returns a configuration that is driven by the given
// primary color.
func NewConfig(primary int, opts ...Option) Config {
	cfg := Config{primary: primary, direction: Both}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.joining = append([]int(nil), cfg.joining...)
	cfg.recruitment = append([]int(nil), cfg.recruitment...)
	return cfg
}

// Primary returns the color that drives the traversal.
func (cfg Config) Primary() int { return cfg.primary }

// JoiningColors returns a copy of the joining colors.
func (cfg Config) JoiningColors() []int { return append([]int(nil), cfg.joining...) }

// RecruitmentColors returns a copy of the recruitment colors.
func (cfg Config) RecruitmentColors() []int { return append([]int(nil), cfg.recruitment...) }

// Combination returns the operator for joining colors.
func (cfg Config) Combination() Combination { return cfg.combination }

// Direction returns the extension direction.
func (cfg Config) Direction() Direction { return cfg.direction }

// Links returns the attached links model, or nil.
func (cfg Config) Links() *links.Model { return cfg.links }

// StoppingRule returns the configured rule, or nil.
func (cfg Config) StoppingRule() StoppingRule { return cfg.rule }

// RequireAccept reports whether Explore only succeeds on acceptance.
func (cfg Config) RequireAccept() bool { return cfg.requireAccept }

// followed returns the primary color followed by the joining colors,
// without duplicates.
func (cfg Config) followed() []int {
	result := []int{cfg.primary}
	for _, c := range cfg.joining {
		if !contains(result, c) {
			result = append(result, c)
		}
	}
	return result
}

// recruiting returns the recruitment colors that are not followed.
func (cfg Config) recruiting() []int {
	followed := cfg.followed()
	var result []int
	for _, c := range cfg.recruitment {
		if !contains(followed, c) && !contains(result, c) {
			result = append(result, c)
		}
	}
	return result
}

func contains(colors []int, color int) bool {
	for _, c := range colors {
		if c == color {
			return true
		}
	}
	return false
}
