// Package cpuset parses the compact CPU list notation used by the
// Jailhouse cell listing ("0-3,7") into an explicit slice of CPU numbers.
package cpuset

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError describes a malformed CPU set field.
type ParseError struct {
	Field string // the raw field content
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cpuset %q: %s", e.Field, e.Msg)
}

// Parse expands a CPU set field into the explicit list of CPUs it names.
//
// The field is either blank (no CPUs assigned, returns an empty slice) or a
// comma-separated sequence of single CPUs and inclusive ranges ("a-b").
// Groups are expanded left to right, each range ascending; the result is not
// globally sorted because the tool's own group order is preserved.
func Parse(field string) ([]int, error) {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		return []int{}, nil
	}

	cpus := []int{}
	for _, group := range strings.Split(trimmed, ",") {
		if group == "" {
			return nil, &ParseError{Field: field, Msg: "empty group"}
		}
		lo, hi, err := parseGroup(field, group)
		if err != nil {
			return nil, err
		}
		for cpu := lo; cpu <= hi; cpu++ {
			cpus = append(cpus, cpu)
		}
	}
	return cpus, nil
}

// parseGroup parses one comma-separated group: either "n" or "a-b".
func parseGroup(field, group string) (lo, hi int, err error) {
	if a, b, ok := strings.Cut(group, "-"); ok {
		lo, err = parseCPU(field, a)
		if err != nil {
			return 0, 0, err
		}
		hi, err = parseCPU(field, b)
		if err != nil {
			return 0, 0, err
		}
		if hi < lo {
			return 0, 0, &ParseError{Field: field, Msg: fmt.Sprintf("reversed range %q", group)}
		}
		return lo, hi, nil
	}
	lo, err = parseCPU(field, group)
	if err != nil {
		return 0, 0, err
	}
	return lo, lo, nil
}

func parseCPU(field, token string) (int, error) {
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, &ParseError{Field: field, Msg: fmt.Sprintf("invalid CPU number %q", token)}
	}
	if n < 0 {
		return 0, &ParseError{Field: field, Msg: fmt.Sprintf("negative CPU number %d", n)}
	}
	return n, nil
}

// String renders a CPU list back into the compact notation, collapsing
// consecutive runs into ranges. A nil or empty list renders as "".
func String(cpus []int) string {
	if len(cpus) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(cpus); {
		j := i
		for j+1 < len(cpus) && cpus[j+1] == cpus[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		if j == i {
			fmt.Fprintf(&b, "%d", cpus[i])
		} else {
			fmt.Fprintf(&b, "%d-%d", cpus[i], cpus[j])
		}
		i = j + 1
	}
	return b.String()
}
