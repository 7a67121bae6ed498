package cli

import (
	"errors"
	"testing"
)

func TestParseArgs_Subcommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Command
	}{
		{
			name: "version",
			args: []string{"version"},
			want: Command{Subcommand: SubcommandVersion},
		},
		{
			name: "list",
			args: []string{"list"},
			want: Command{Subcommand: SubcommandList},
		},
		{
			name: "list with json",
			args: []string{"--json", "list"},
			want: Command{Subcommand: SubcommandList, JSONOutput: true},
		},
		{
			name: "list with config",
			args: []string{"--config", "/etc/cellctl.yaml", "list"},
			want: Command{Subcommand: SubcommandList, ConfigPath: "/etc/cellctl.yaml"},
		},
		{
			name: "info by selector",
			args: []string{"info", "vm-a"},
			want: Command{Subcommand: SubcommandInfo, Selector: "vm-a"},
		},
		{
			name: "create",
			args: []string{"create", "/etc/jailhouse/demo.cell"},
			want: Command{Subcommand: SubcommandCreate, CellConfig: "/etc/jailhouse/demo.cell"},
		},
		{
			name: "load",
			args: []string{"load", "demo", "/usr/libexec/demo.bin"},
			want: Command{Subcommand: SubcommandLoad, LoadName: "demo", ImagePath: "/usr/libexec/demo.bin"},
		},
		{
			name: "load with hex address",
			args: []string{"load", "--address", "0x1000", "demo", "demo.bin"},
			want: Command{Subcommand: SubcommandLoad, LoadName: "demo", ImagePath: "demo.bin", Address: 0x1000},
		},
		{
			name: "load with decimal address",
			args: []string{"load", "--address", "4096", "demo", "demo.bin"},
			want: Command{Subcommand: SubcommandLoad, LoadName: "demo", ImagePath: "demo.bin", Address: 4096},
		},
		{
			name: "start",
			args: []string{"start", "1"},
			want: Command{Subcommand: SubcommandStart, ID: 1},
		},
		{
			name: "shutdown",
			args: []string{"shutdown", "2"},
			want: Command{Subcommand: SubcommandShutdown, ID: 2},
		},
		{
			name: "destroy",
			args: []string{"destroy", "3"},
			want: Command{Subcommand: SubcommandDestroy, ID: 3},
		},
		{
			name: "flags after subcommand",
			args: []string{"info", "--json", "0"},
			want: Command{Subcommand: SubcommandInfo, Selector: "0", JSONOutput: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseArgs(%v) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error // nil means any error is acceptable
	}{
		{
			name:    "empty args",
			args:    []string{},
			wantErr: ErrNoSubcommand,
		},
		{
			name: "unknown subcommand",
			args: []string{"reboot"},
		},
		{
			name: "unknown flag",
			args: []string{"--verbose", "list"},
		},
		{
			name:    "config without value",
			args:    []string{"--config"},
			wantErr: ErrMissingFlagValue,
		},
		{
			name:    "config followed by flag",
			args:    []string{"--config", "--json", "list"},
			wantErr: ErrMissingFlagValue,
		},
		{
			name: "info without selector",
			args: []string{"info"},
		},
		{
			name: "start with non numeric id",
			args: []string{"start", "one"},
		},
		{
			name: "load missing image",
			args: []string{"load", "demo"},
		},
		{
			name: "bad load address",
			args: []string{"load", "--address", "0xzz", "demo", "demo.bin"},
		},
		{
			name: "list with stray argument",
			args: []string{"list", "everything"},
		},
		{
			name: "json on a control command",
			args: []string{"--json", "start", "1"},
		},
		{
			name: "json on version",
			args: []string{"version", "--json"},
		},
		{
			name: "address outside load",
			args: []string{"start", "--address", "5", "1"},
		},
		{
			name: "address on create",
			args: []string{"create", "--address", "0x1000", "/etc/jailhouse/demo.cell"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args)
			if err == nil {
				t.Fatalf("ParseArgs(%v) succeeded, want error", tt.args)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
