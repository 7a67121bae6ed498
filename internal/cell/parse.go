package cell

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cellctl/internal/cpuset"
)

// ParseError describes a malformed row in the tool's cell listing. A single
// bad row invalidates the whole listing: an inconsistent result is worse
// than keeping the previous one.
type ParseError struct {
	Line int // 1-based line number within the tool output
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cell list line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("cell list line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// rowRegexp splits a listing row into slot id, name and the remainder
// (state token plus CPU fields). The remainder needs token-wise handling
// because state tokens may contain a space ("shut down").
var rowRegexp = regexp.MustCompile(`^\s*(\d+)\s+(\S+)\s+(.*)$`)

// Column widths of the reference tool's listing: the state column is 16
// characters wide, each CPU column 24. The CPU columns must be read at
// their positions, not split on whitespace, so a blank assigned column
// followed by a non-blank failed column stays unambiguous.
const (
	stateWidth = 16
	cpuWidth   = 24
)

// ParseList parses the full stdout of one "cell list" invocation into cells
// in row order. The first line is the table header and is skipped. Cell
// UUIDs are left zero; identity assignment happens during reconciliation.
func ParseList(output string) ([]Cell, error) {
	lines := strings.Split(output, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, &ParseError{Line: 1, Msg: "missing table header"}
	}

	cells := []Cell{}
	for i, line := range lines[1:] {
		lineNo := i + 2
		if strings.TrimSpace(line) == "" {
			continue
		}
		c, err := parseRow(line, lineNo)
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, nil
}

func parseRow(line string, lineNo int) (Cell, error) {
	idx := rowRegexp.FindStringSubmatchIndex(line)
	if idx == nil {
		return Cell{}, &ParseError{Line: lineNo, Msg: "row does not match id/name/state layout"}
	}

	idField := line[idx[2]:idx[3]]
	id, err := strconv.Atoi(idField)
	if err != nil {
		return Cell{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("invalid cell id %q", idField), Err: err}
	}

	name := line[idx[4]:idx[5]]
	if len(name) > MaxNameLength {
		return Cell{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("cell name %q exceeds %d characters", name, MaxNameLength)}
	}

	stateStart := idx[6]
	state, stateLen := parseState(line[stateStart:])

	assignedField, failedField, err := cpuColumns(line, stateStart, stateLen, lineNo)
	if err != nil {
		return Cell{}, err
	}
	assigned, err := cpuset.Parse(assignedField)
	if err != nil {
		return Cell{}, &ParseError{Line: lineNo, Msg: "bad assigned CPU field", Err: err}
	}
	failed, err := cpuset.Parse(failedField)
	if err != nil {
		return Cell{}, &ParseError{Line: lineNo, Msg: "bad failed CPU field", Err: err}
	}

	return Cell{
		ID:           id,
		Name:         name,
		State:        state,
		AssignedCPUs: assigned,
		FailedCPUs:   failed,
	}, nil
}

// parseState reads the state token at the start of rest and returns the
// token's length. Known tokens are tried longest first so "running/locked"
// wins over "running". Anything else is treated as a failed cell rather
// than dropped: an unknown state must not be mistaken for a healthy one.
func parseState(rest string) (State, int) {
	for _, st := range stateTokens {
		if hasToken(rest, st.token) {
			return st.state, len(st.token)
		}
	}
	if idx := strings.IndexAny(rest, " \t"); idx >= 0 {
		return StateFailed, idx
	}
	return StateFailed, len(rest)
}

// hasToken reports whether s starts with token followed by whitespace or
// the end of the row.
func hasToken(s, token string) bool {
	if !strings.HasPrefix(s, token) {
		return false
	}
	after := s[len(token):]
	return after == "" || after[0] == ' ' || after[0] == '\t'
}

// cpuColumns extracts the assigned and failed CPU fields following the
// state token. When the state column's 16-character padding is blank the
// row follows the tool's fixed layout and both CPU fields are sliced at
// their column offsets, so either may be independently empty. A row too
// narrow for the fixed layout (the next field starts inside the state
// padding) is split on whitespace instead.
func cpuColumns(line string, stateStart, stateLen, lineNo int) (assigned, failed string, err error) {
	padding := clip(line, stateStart+stateLen, stateStart+stateWidth)
	if strings.TrimSpace(padding) == "" {
		assignedStart := stateStart + stateWidth
		assigned = clip(line, assignedStart, assignedStart+cpuWidth)
		failed = clip(line, assignedStart+cpuWidth, assignedStart+2*cpuWidth)
		tail := strings.TrimSpace(clip(line, assignedStart+2*cpuWidth, len(line)))
		if tail != "" {
			return "", "", &ParseError{Line: lineNo, Msg: fmt.Sprintf("unexpected trailing fields %q", tail)}
		}
		return assigned, failed, nil
	}

	fields := strings.Fields(line[stateStart+stateLen:])
	if len(fields) > 2 {
		return "", "", &ParseError{Line: lineNo, Msg: fmt.Sprintf("unexpected trailing fields %q", strings.TrimSpace(line[stateStart+stateLen:]))}
	}
	if len(fields) > 0 {
		assigned = fields[0]
	}
	if len(fields) > 1 {
		failed = fields[1]
	}
	return assigned, failed, nil
}

// clip returns s[lo:hi] with both bounds clamped to the string.
func clip(s string, lo, hi int) string {
	if lo > len(s) {
		lo = len(s)
	}
	if hi > len(s) {
		hi = len(s)
	}
	if hi < lo {
		hi = lo
	}
	return s[lo:hi]
}

// IsParseError reports whether err originated in listing or CPU set parsing.
func IsParseError(err error) bool {
	var pe *ParseError
	var ce *cpuset.ParseError
	return errors.As(err, &pe) || errors.As(err, &ce)
}
