// Command cellctl manages Jailhouse cells through the hypervisor's
// management binary: it lists cells with stable identities, looks them up
// by slot id, name or uuid, and issues lifecycle commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/google/uuid"

	"cellctl/internal/cache"
	"cellctl/internal/cli"
	"cellctl/internal/config"
	"cellctl/internal/cpuset"
	"cellctl/internal/driver"
	"cellctl/internal/jailtool"
	"cellctl/internal/logging"
)

// Exit codes: 1 usage, 2 tool invocation or parse failure, 3 bad
// configuration, 4 no matching cell.
const (
	exitOK      = 0
	exitUsage   = 1
	exitTool    = 2
	exitConfig  = 3
	exitNoMatch = 4
)

func main() {
	os.Exit(run(os.Args[1:], os.Environ(), nil, os.Stdout))
}

// run orchestrates the full execution flow and returns the process exit
// code. It is separated from main() to enable testing; a nil runner selects
// the real tool binary.
func run(args, environ []string, runner jailtool.Runner, stdout io.Writer) int {
	cmd, err := cli.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitUsage
	}

	cfg, err := config.Resolve(cmd.ConfigPath, environ)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitConfig
	}

	log := logging.New(cfg.LogLevel)

	d, err := driver.Open(cfg, runner, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitTool
	}

	switch cmd.Subcommand {
	case cli.SubcommandVersion:
		// Open already verified the banner.
		fmt.Fprintf(stdout, "%s: %s\n", cfg.ToolBinary, d.Version())
		return exitOK
	case cli.SubcommandList:
		return runList(d, cmd, stdout)
	case cli.SubcommandInfo:
		return runInfo(d, cmd, stdout)
	case cli.SubcommandCreate:
		return runControl(d.CreateCell(cmd.CellConfig))
	case cli.SubcommandLoad:
		return runControl(d.LoadCell(cmd.LoadName, cmd.ImagePath, cmd.Address))
	case cli.SubcommandStart:
		return runControl(d.StartCell(cmd.ID))
	case cli.SubcommandShutdown:
		return runControl(d.ShutdownCell(cmd.ID))
	case cli.SubcommandDestroy:
		return runControl(d.DestroyCell(cmd.ID))
	}
	return exitUsage
}

func runList(d *driver.Driver, cmd cli.Command, stdout io.Writer) int {
	cells, err := d.Cells()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitTool
	}

	if cmd.JSONOutput {
		return writeJSON(stdout, cells)
	}

	w := tabwriter.NewWriter(stdout, 2, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATE\tCPUS\tUUID")
	for _, c := range cells {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.State, cpuset.String(c.Assigned), c.UUID)
	}
	w.Flush()
	return exitOK
}

func runInfo(d *driver.Driver, cmd cli.Command, stdout io.Writer) int {
	info, err := lookup(d, cmd.Selector)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "no cell matches %q\n", cmd.Selector)
			return exitNoMatch
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitTool
	}

	if cmd.JSONOutput {
		return writeJSON(stdout, info)
	}

	fmt.Fprintf(stdout, "Id:            %d\n", info.ID)
	fmt.Fprintf(stdout, "Name:          %s\n", info.Name)
	fmt.Fprintf(stdout, "UUID:          %s\n", info.UUID)
	fmt.Fprintf(stdout, "State:         %s\n", info.State)
	fmt.Fprintf(stdout, "CPU(s):        %d\n", info.NumCPUs)
	fmt.Fprintf(stdout, "Assigned CPUs: %s\n", cpuset.String(info.Assigned))
	fmt.Fprintf(stdout, "Failed CPUs:   %s\n", cpuset.String(info.Failed))
	return exitOK
}

// lookup resolves an info selector: a number is a slot id, a well-formed
// uuid is an identity, anything else is a cell name.
func lookup(d *driver.Driver, selector string) (driver.CellInfo, error) {
	if id, err := strconv.Atoi(selector); err == nil {
		return d.CellByID(id)
	}
	if u, err := uuid.Parse(selector); err == nil {
		return d.CellByUUID(u)
	}
	return d.CellByName(selector)
}

func runControl(err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitTool
	}
	return exitOK
}

func writeJSON(stdout io.Writer, v any) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitTool
	}
	return exitOK
}
