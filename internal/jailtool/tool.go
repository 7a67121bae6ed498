// Package jailtool invokes the Jailhouse management binary and wraps its
// subcommands behind a typed facade. It is the only package that talks to
// the external tool; everything above it sees parsed cells and errors.
package jailtool

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cellctl/internal/cell"
)

// VersionBanner is the prefix every supported Jailhouse binary prints for
// "--version". Anything else fails the open-time check.
const VersionBanner = "Jailhouse management tool"

// DefaultTimeout bounds one tool invocation. The tool itself offers no
// asynchronous interface, so every call blocks until it exits.
const DefaultTimeout = 10 * time.Second

// InvocationError reports a tool run that could not be started or exited
// non-zero. Stderr is included because the tool writes its diagnostics there.
type InvocationError struct {
	Binary   string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *InvocationError) Error() string {
	msg := fmt.Sprintf("%s %s: exit %d", e.Binary, strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		return msg + ": " + e.Stderr
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Tool runs Jailhouse management subcommands against one binary.
type Tool struct {
	binary  string
	timeout time.Duration
	runner  Runner
}

// New returns a Tool for the given binary path. A nil runner selects the
// real ExecRunner; a zero timeout selects DefaultTimeout.
func New(binary string, timeout time.Duration, runner Runner) *Tool {
	if runner == nil {
		runner = ExecRunner{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Tool{binary: binary, timeout: timeout, runner: runner}
}

// Binary returns the configured tool path.
func (t *Tool) Binary() string { return t.binary }

func (t *Tool) run(args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	stdout, stderr, code, err := t.runner.Run(ctx, t.binary, args...)
	if err != nil {
		return nil, &InvocationError{
			Binary:   t.binary,
			Args:     args,
			ExitCode: code,
			Stderr:   strings.TrimSpace(string(stderr)),
			Err:      err,
		}
	}
	return stdout, nil
}

// CheckVersion runs "--version", verifies the product banner and returns
// the tool's full version line. A wrong or missing banner means the binary
// is not a Jailhouse management tool.
func (t *Tool) CheckVersion() (string, error) {
	out, err := t.run("--version")
	if err != nil {
		return "", err
	}
	banner := firstLine(string(out))
	if !strings.HasPrefix(banner, VersionBanner) {
		return "", &InvocationError{
			Binary: t.binary,
			Args:   []string{"--version"},
			Err:    fmt.Errorf("unexpected version banner %q", banner),
		}
	}
	return banner, nil
}

// List runs "cell list" and parses the output into cells in tool row order.
// UUIDs are left zero for the reconciler.
func (t *Tool) List() ([]cell.Cell, error) {
	out, err := t.run("cell", "list")
	if err != nil {
		return nil, err
	}
	return cell.ParseList(string(out))
}

// Create registers a new cell from a cell configuration file.
func (t *Tool) Create(configPath string) error {
	_, err := t.run("cell", "create", configPath)
	return err
}

// Load loads an inmate image into the named cell. A non-zero address is
// passed as the load offset.
func (t *Tool) Load(name, imagePath string, address uint64) error {
	args := []string{"cell", "load", name, imagePath}
	if address != 0 {
		args = append(args, "-a", fmt.Sprintf("%#x", address))
	}
	_, err := t.run(args...)
	return err
}

// Start starts the cell in the given slot.
func (t *Tool) Start(id int) error {
	_, err := t.run("cell", "start", strconv.Itoa(id))
	return err
}

// Shutdown shuts the cell in the given slot down.
func (t *Tool) Shutdown(id int) error {
	_, err := t.run("cell", "shutdown", strconv.Itoa(id))
	return err
}

// Destroy removes the cell in the given slot entirely. Unlike shutdown the
// cell must be created and loaded again before it can run.
func (t *Tool) Destroy(id int) error {
	_, err := t.run("cell", "destroy", strconv.Itoa(id))
	return err
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
