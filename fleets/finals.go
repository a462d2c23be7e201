package fleets

import (
	"fmt"
	"strings"

	"github.com/ZeMendes2393/sailscore/apperr"
)

// Group is a requested finals group. Size 0 on the last group takes every
// remaining boat.
type Group struct {
	Name  string `json:"name" validate:"required,max=40"`
	Size  int    `json:"size" validate:"gte=0"`
	Color string `json:"color,omitempty"`
}

var finalsColors = map[string]string{
	"gold":    "#FFD700",
	"silver":  "#C0C0C0",
	"bronze":  "#CD7F32",
	"emerald": "#50C878",
}

const defaultFinalsColor = "#9E9E9E"

// Finals slices ranked entries (best first) into groups in order. Sizes are
// targets: the last group absorbs whatever the earlier groups did not take,
// and groups past the end of the ranking come out short or empty.
func Finals(ranked []int64, groups []Group) ([]Fleet, error) {
	if err := validateGroups(groups); err != nil {
		return nil, err
	}

	out := make([]Fleet, len(groups))
	start := 0
	for i, g := range groups {
		end := start + g.Size
		if i == len(groups)-1 || end > len(ranked) {
			end = len(ranked)
		}
		color := g.Color
		if color == "" {
			color = colorFor(g.Name)
		}
		out[i] = Fleet{
			Name:    strings.TrimSpace(g.Name),
			Color:   color,
			Order:   i + 1,
			Members: append([]int64{}, ranked[start:end]...),
		}
		start = end
	}
	return out, nil
}

func validateGroups(groups []Group) error {
	invalid := func(format string, args ...any) *apperr.Error {
		return apperr.Validation(apperr.CodeInvalidFinalsGroups, format, args...)
	}
	if len(groups) == 0 {
		return invalid("at least one finals group is required")
	}

	seen := make(map[string]bool, len(groups))
	for i, g := range groups {
		name := strings.ToLower(strings.TrimSpace(g.Name))
		if name == "" {
			return invalid("group %d has no name", i+1).With("index", i+1)
		}
		if seen[name] {
			return invalid("group name %q is used twice", g.Name).With("name", g.Name)
		}
		seen[name] = true
		if g.Size < 0 {
			return invalid("group %s has a negative size", g.Name).With("name", g.Name)
		}
		if g.Size == 0 && i != len(groups)-1 {
			return invalid("only the last group may leave its size open").With("name", g.Name)
		}
	}
	return nil
}

func colorFor(name string) string {
	if c, ok := finalsColors[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return defaultFinalsColor
}

// UniqueLabel returns label, or label with the lowest free numeric suffix
// (" 2", " 3", ...) when it is already taken. Comparison ignores case.
func UniqueLabel(existing []string, label string) string {
	label = strings.TrimSpace(label)
	taken := make(map[string]bool, len(existing))
	for _, e := range existing {
		taken[strings.ToLower(strings.TrimSpace(e))] = true
	}
	if !taken[strings.ToLower(label)] {
		return label
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s %d", label, n)
		if !taken[strings.ToLower(candidate)] {
			return candidate
		}
	}
}
