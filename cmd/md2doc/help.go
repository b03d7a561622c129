package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2doc <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert markdown-like text to a word-processor document")
	fmt.Fprintln(w, "  history    List, show, re-export or clear past conversions")
	fmt.Fprintln(w, "  serve      Run the HTTP conversion server")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2doc help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2doc convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert text to a .doc file that word processors open natively.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Text file, or - to read standard input")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: config or current)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --stdout              Write the document to standard output")
	fmt.Fprintln(w, "      --html                Also write the rendered HTML next to the document")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "  -t, --title <s>           Document title (default: \"Document\")")
	fmt.Fprintln(w, "      --prefix <s>          File name prefix (default: \"document\")")
	fmt.Fprintln(w, "      --highlight           Color fenced code blocks that name a language")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "History:")
	fmt.Fprintln(w, "      --no-history          Do not record this conversion")
	fmt.Fprintln(w)
	printOutputControl(w)
	fmt.Fprintln(w)
	printEnvVars(w)
}

// printHistoryUsage prints usage for the history command.
func printHistoryUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2doc history <subcommand> [flags] [id]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Manage recorded conversions, newest first.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  list                      List records")
	fmt.Fprintln(w, "  show <id>                 Print the input of a record (--html for markup)")
	fmt.Fprintln(w, "  export <id>               Export a record again (-o <dir>, --stdout)")
	fmt.Fprintln(w, "  clear                     Delete all records")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "An id may be shortened to any unique prefix.")
	fmt.Fprintln(w)
	printOutputControl(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2doc serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP conversion server until interrupted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default: localhost:8080)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --env-file <path>     Dotenv file loaded first (default: .env)")
	fmt.Fprintln(w, "  -w, --workers <n>         Concurrent conversions (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  POST /convert                 Convert and download the document")
	fmt.Fprintln(w, "  POST /preview                 Render without exporting (JSON)")
	fmt.Fprintln(w, "  GET  /history                 List recorded conversions (JSON)")
	fmt.Fprintln(w, "  GET  /history/{id}/download   Re-export a recorded conversion")
	fmt.Fprintln(w, "  GET  /healthz                 Liveness probe")
	fmt.Fprintln(w, "  GET  /metrics                 Prometheus metrics")
	fmt.Fprintln(w)
	printOutputControl(w)
}

func printOutputControl(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed output")
}

func printEnvVars(w io.Writer) {
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MD2DOC_CONFIG, MD2DOC_OUTPUT_DIR, MD2DOC_PREFIX, MD2DOC_TITLE,")
	fmt.Fprintln(w, "  MD2DOC_HISTORY, MD2DOC_HISTORY_PATH, MD2DOC_ADDR, MD2DOC_CORS_ORIGINS")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "history":
		printHistoryUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2doc version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2doc help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
