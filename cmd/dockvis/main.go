package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "policy":
		os.Exit(runPolicy(os.Args[2:]))
	case "block":
		os.Exit(runBlock(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dockvis <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the dockvis daemon (foreground)")
	fmt.Fprintln(w, "  status              Show panel visibility state")
	fmt.Fprintln(w, "  monitors            List monitors known to the daemon")
	fmt.Fprintln(w, "  policy              Switch a panel's visibility policy")
	fmt.Fprintln(w, "  block               Keep a panel shown for a while")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "  tui                 Open the live status view")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config schema       Print the config JSON schema")
	fmt.Fprintln(w, "  config init         Write a starter config")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'dockvis <command> --help' for command-specific options.")
}
