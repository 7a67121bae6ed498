// Package cli parses cellctl's command line.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoSubcommand is returned when no subcommand is provided.
var ErrNoSubcommand = errors.New("missing subcommand: usage: cellctl [--config <path>] <version|list|info|create|load|start|shutdown|destroy> [args...]")

// ErrMissingFlagValue is returned when a flag requires a value but none is provided.
var ErrMissingFlagValue = errors.New("flag requires a value")

// Subcommand represents the CLI subcommand.
type Subcommand string

const (
	SubcommandVersion  Subcommand = "version"
	SubcommandList     Subcommand = "list"
	SubcommandInfo     Subcommand = "info"
	SubcommandCreate   Subcommand = "create"
	SubcommandLoad     Subcommand = "load"
	SubcommandStart    Subcommand = "start"
	SubcommandShutdown Subcommand = "shutdown"
	SubcommandDestroy  Subcommand = "destroy"
)

// Command represents the parsed CLI input.
type Command struct {
	Subcommand Subcommand

	ConfigPath string // --config <path>
	JSONOutput bool   // --json

	Selector   string // info: slot id, name or uuid
	CellConfig string // create: cell configuration file path
	LoadName   string // load: cell name
	ImagePath  string // load: inmate image path
	Address    uint64 // load: --address <addr>, hex or decimal
	ID         int    // start/shutdown/destroy: slot id
}

// ParseArgs parses CLI arguments into a Command. It expects args to be
// os.Args[1:] (excluding the program name).
func ParseArgs(args []string) (Command, error) {
	var cmd Command
	var positionals []string
	var jsonSet, addressSet bool

	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			positionals = append(positionals, arg)
			i++
			continue
		}

		switch strings.TrimPrefix(arg, "--") {
		case "config":
			value, next, err := flagValue(args, i)
			if err != nil {
				return Command{}, err
			}
			cmd.ConfigPath = value
			i = next
		case "json":
			cmd.JSONOutput = true
			jsonSet = true
			i++
		case "address":
			value, next, err := flagValue(args, i)
			if err != nil {
				return Command{}, err
			}
			addr, err := strconv.ParseUint(value, 0, 64)
			if err != nil {
				return Command{}, fmt.Errorf("invalid load address %q: %w", value, err)
			}
			cmd.Address = addr
			addressSet = true
			i = next
		default:
			return Command{}, fmt.Errorf("unknown flag: %s", arg)
		}
	}

	if len(positionals) == 0 {
		return Command{}, ErrNoSubcommand
	}
	cmd.Subcommand = Subcommand(positionals[0])
	rest := positionals[1:]

	switch cmd.Subcommand {
	case SubcommandVersion, SubcommandList:
		if len(rest) != 0 {
			return Command{}, fmt.Errorf("%s takes no arguments", cmd.Subcommand)
		}
	case SubcommandInfo:
		if len(rest) != 1 {
			return Command{}, errors.New("usage: cellctl info <id|name|uuid>")
		}
		cmd.Selector = rest[0]
	case SubcommandCreate:
		if len(rest) != 1 {
			return Command{}, errors.New("usage: cellctl create <cell-config>")
		}
		cmd.CellConfig = rest[0]
	case SubcommandLoad:
		if len(rest) != 2 {
			return Command{}, errors.New("usage: cellctl load [--address <addr>] <name> <image>")
		}
		cmd.LoadName = rest[0]
		cmd.ImagePath = rest[1]
	case SubcommandStart, SubcommandShutdown, SubcommandDestroy:
		if len(rest) != 1 {
			return Command{}, fmt.Errorf("usage: cellctl %s <id>", cmd.Subcommand)
		}
		id, err := strconv.Atoi(rest[0])
		if err != nil {
			return Command{}, fmt.Errorf("invalid cell id %q", rest[0])
		}
		cmd.ID = id
	default:
		return Command{}, fmt.Errorf("unknown subcommand %q", positionals[0])
	}

	// A flag that the subcommand cannot act on is a usage error, not noise
	// to be ignored.
	if jsonSet && cmd.Subcommand != SubcommandList && cmd.Subcommand != SubcommandInfo {
		return Command{}, fmt.Errorf("--json is not valid for %s", cmd.Subcommand)
	}
	if addressSet && cmd.Subcommand != SubcommandLoad {
		return Command{}, fmt.Errorf("--address is not valid for %s", cmd.Subcommand)
	}

	return cmd, nil
}

// flagValue returns the value following the flag at index i and the index of
// the next unconsumed argument.
func flagValue(args []string, i int) (string, int, error) {
	if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
		return "", 0, fmt.Errorf("%s: %w", args[i], ErrMissingFlagValue)
	}
	return args[i+1], i + 2, nil
}
