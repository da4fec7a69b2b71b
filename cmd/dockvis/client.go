package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/1broseidon/dockvis/internal/ipc"
	"github.com/1broseidon/dockvis/internal/tui"
	"github.com/1broseidon/dockvis/internal/visibility"
)

func parseFlags(fs *flag.FlagSet, args []string, usage string, nargs int) (int, bool) {
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	if nargs >= 0 && fs.NArg() != nargs {
		fmt.Fprintf(os.Stderr, "%s: expected %d argument(s)\n", fs.Name(), nargs)
		fs.Usage()
		return 2, false
	}
	return 0, true
}

func printJSON(v any) int {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Print raw JSON (default when stdout is not a terminal)")
	if code, ok := parseFlags(fs, args, "dockvis status [--json]", 0); !ok {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
		return printJSON(status)
	}

	fmt.Printf("windows: %d  active: 0x%x  uptime: %ds\n", status.Windows, status.ActiveWindow, status.UptimeSeconds)
	rows := make([][]string, 0, len(status.Panels))
	for _, p := range status.Panels {
		state := "shown"
		switch {
		case !p.Attached:
			state = "detached: " + p.Error
		case p.Hidden:
			state = "hidden"
		case p.HidePending:
			state = "hiding"
		}
		if len(p.Blocks) > 0 {
			state += " (held: " + strings.Join(p.Blocks, ",") + ")"
		}
		window := ""
		if p.Attached {
			window = fmt.Sprintf("0x%x", p.Window)
		}
		rows = append(rows, []string{p.Name, window, p.Policy, p.Edge, state})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))).
		Headers("PANEL", "WINDOW", "POLICY", "EDGE", "STATE").
		Rows(rows...)
	fmt.Println(t.Render())
	return 0
}

func runMonitors(args []string) int {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	if code, ok := parseFlags(fs, args, "dockvis monitors", 0); !ok {
		return code
	}
	data, err := ipc.NewClient().GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return printJSON(data)
}

func runPolicy(args []string) int {
	fs := flag.NewFlagSet("policy", flag.ContinueOnError)
	names := make([]string, 0, len(visibility.Policies()))
	for _, p := range visibility.Policies() {
		names = append(names, p.String())
	}
	usage := "dockvis policy <panel> <policy>\n\nPolicies: " + strings.Join(names, ", ")
	if code, ok := parseFlags(fs, args, usage, 2); !ok {
		return code
	}
	if err := ipc.NewClient().SetPolicy(fs.Arg(0), fs.Arg(1)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runBlock(args []string) int {
	fs := flag.NewFlagSet("block", flag.ContinueOnError)
	reason := fs.String("reason", "cli", "Reason shown in status")
	if code, ok := parseFlags(fs, args, "dockvis block [--reason R] <panel> <duration>", 2); !ok {
		return code
	}
	d, err := time.ParseDuration(fs.Arg(1))
	if err != nil || d <= 0 {
		fmt.Fprintf(os.Stderr, "invalid duration %q\n", fs.Arg(1))
		return 2
	}
	if err := ipc.NewClient().BlockHiding(fs.Arg(0), *reason, d); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	if code, ok := parseFlags(fs, args, "dockvis reload", 0); !ok {
		return code
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config: reloaded")
	return 0
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	refresh := fs.Duration("refresh", tui.DefaultRefresh, "Status poll interval")
	if code, ok := parseFlags(fs, args, "dockvis tui [--refresh D]", 0); !ok {
		return code
	}
	if err := tui.Run(ipc.NewClient(), *refresh); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
