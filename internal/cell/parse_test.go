package cell

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
)

const listHeader = "ID      Name                    State            Assigned CPUs           Failed CPUs\n"

func TestParseList_TwoRows(t *testing.T) {
	output := listHeader +
		"0  vm-a  running  0-1  \n" +
		"1  vm-b  shut down      \n"

	cells, err := ParseList(output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}

	a := cells[0]
	if a.ID != 0 || a.Name != "vm-a" || a.State != StateRunning {
		t.Errorf("cells[0] = %+v, want id 0, name vm-a, running", a)
	}
	if !reflect.DeepEqual(a.AssignedCPUs, []int{0, 1}) {
		t.Errorf("cells[0].AssignedCPUs = %v, want [0 1]", a.AssignedCPUs)
	}
	if len(a.FailedCPUs) != 0 {
		t.Errorf("cells[0].FailedCPUs = %v, want empty", a.FailedCPUs)
	}

	b := cells[1]
	if b.ID != 1 || b.Name != "vm-b" || b.State != StateShutDown {
		t.Errorf("cells[1] = %+v, want id 1, name vm-b, shut down", b)
	}
	if len(b.AssignedCPUs) != 0 || len(b.FailedCPUs) != 0 {
		t.Errorf("cells[1] CPU sets = %v/%v, want empty", b.AssignedCPUs, b.FailedCPUs)
	}

	for i, c := range cells {
		if c.UUID != uuid.Nil {
			t.Errorf("cells[%d].UUID = %v, want zero before reconciliation", i, c.UUID)
		}
	}
}

func TestParseList_FixedWidthColumns(t *testing.T) {
	// The reference tool pads every column to a fixed width.
	output := listHeader +
		"0               root-cell               running          0-3                     \n" +
		"1               inmate-demo             running/locked   4,6-7                   5\n"

	cells, err := ParseList(output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}
	if cells[0].Name != "root-cell" || cells[0].State != StateRunning {
		t.Errorf("cells[0] = %+v", cells[0])
	}
	if !reflect.DeepEqual(cells[0].AssignedCPUs, []int{0, 1, 2, 3}) {
		t.Errorf("cells[0].AssignedCPUs = %v, want [0 1 2 3]", cells[0].AssignedCPUs)
	}
	if cells[1].State != StateRunningLocked {
		t.Errorf("cells[1].State = %v, want running/locked", cells[1].State)
	}
	if !reflect.DeepEqual(cells[1].AssignedCPUs, []int{4, 6, 7}) {
		t.Errorf("cells[1].AssignedCPUs = %v, want [4 6 7]", cells[1].AssignedCPUs)
	}
	if !reflect.DeepEqual(cells[1].FailedCPUs, []int{5}) {
		t.Errorf("cells[1].FailedCPUs = %v, want [5]", cells[1].FailedCPUs)
	}
}

func TestParseList_CPUFieldsKeepTheirColumns(t *testing.T) {
	// In the tool's fixed layout each CPU set sits in its own 24-wide
	// column, and either may be blank independently. A blank assigned
	// column must never swallow the failed column's content.
	row := func(id int, name, state, assigned, failed string) string {
		return fmt.Sprintf("%-8d%-24s%-16s%-24s%s\n", id, name, state, assigned, failed)
	}

	output := listHeader +
		row(0, "failing-cell", "failed", "", "5") +
		row(1, "half-dead", "running", "0-1", "2,4") +
		row(2, "idle", "shut down", "", "")

	cells, err := ParseList(output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cells) != 3 {
		t.Fatalf("got %d cells, want 3", len(cells))
	}

	if len(cells[0].AssignedCPUs) != 0 {
		t.Errorf("cells[0].AssignedCPUs = %v, want empty", cells[0].AssignedCPUs)
	}
	if !reflect.DeepEqual(cells[0].FailedCPUs, []int{5}) {
		t.Errorf("cells[0].FailedCPUs = %v, want [5]", cells[0].FailedCPUs)
	}

	if !reflect.DeepEqual(cells[1].AssignedCPUs, []int{0, 1}) {
		t.Errorf("cells[1].AssignedCPUs = %v, want [0 1]", cells[1].AssignedCPUs)
	}
	if !reflect.DeepEqual(cells[1].FailedCPUs, []int{2, 4}) {
		t.Errorf("cells[1].FailedCPUs = %v, want [2 4]", cells[1].FailedCPUs)
	}

	if len(cells[2].AssignedCPUs) != 0 || len(cells[2].FailedCPUs) != 0 {
		t.Errorf("cells[2] CPU sets = %v/%v, want empty", cells[2].AssignedCPUs, cells[2].FailedCPUs)
	}
}

func TestParseList_StateTokens(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  State
	}{
		{name: "running", token: "running", want: StateRunning},
		{name: "running locked", token: "running/locked", want: StateRunningLocked},
		{name: "shut down", token: "shut down", want: StateShutDown},
		{name: "failed", token: "failed", want: StateFailed},
		{name: "unknown defaults to failed", token: "paused", want: StateFailed},
		{name: "empty state defaults to failed", token: "", want: StateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := listHeader + "3  cell-x  " + tt.token + "  \n"
			cells, err := ParseList(output)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(cells) != 1 {
				t.Fatalf("got %d cells, want 1", len(cells))
			}
			if cells[0].State != tt.want {
				t.Errorf("state = %v, want %v", cells[0].State, tt.want)
			}
		})
	}
}

func TestParseList_RowOrderAndCount(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(listHeader)
	sb.WriteString("4  cell-d  running  \n")
	sb.WriteString("2  cell-b  failed   \n")
	sb.WriteString("9  cell-z  running  \n")

	cells, err := ParseList(sb.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantIDs := []int{4, 2, 9}
	for i, id := range wantIDs {
		if cells[i].ID != id {
			t.Errorf("cells[%d].ID = %d, want %d (tool row order must be preserved)", i, cells[i].ID, id)
		}
	}
}

func TestParseList_EmptyListing(t *testing.T) {
	cells, err := ParseList(listHeader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cells) != 0 {
		t.Errorf("got %d cells, want 0", len(cells))
	}
}

func TestParseList_Errors(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{
			name:   "empty output",
			output: "",
		},
		{
			name:   "non numeric id",
			output: listHeader + "x  vm-a  running  \n",
		},
		{
			name:   "name too long",
			output: listHeader + "0  " + strings.Repeat("n", MaxNameLength+1) + "  running  \n",
		},
		{
			name:   "bad assigned cpu set",
			output: listHeader + "0  vm-a  running  0-3,  \n",
		},
		{
			name:   "bad failed cpu set",
			output: listHeader + "0  vm-a  running  0-3  7-\n",
		},
		{
			name:   "trailing junk",
			output: listHeader + "0  vm-a  running  0  1  extra\n",
		},
		{
			name:   "missing name and state",
			output: listHeader + "0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseList(tt.output)
			if err == nil {
				t.Fatalf("ParseList succeeded, want error")
			}
			if !IsParseError(err) {
				t.Errorf("IsParseError(%v) = false, want true", err)
			}
		})
	}
}

func TestParseList_OneBadRowRejectsAll(t *testing.T) {
	output := listHeader +
		"0  vm-a  running  0-1  \n" +
		"1  vm-b  running  2-,  \n" +
		"2  vm-c  running  3    \n"

	cells, err := ParseList(output)
	if err == nil {
		t.Fatalf("ParseList succeeded, want error")
	}
	if cells != nil {
		t.Errorf("got partial result %v, want nil", cells)
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %T, want *ParseError", err)
	}
	if perr.Line != 3 {
		t.Errorf("error line = %d, want 3", perr.Line)
	}
}
