// Package main provides the livereload CLI application.
//
// livereload watches a build output directory and tells connected browsers
// to reload the files each build changed.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// version is set during build time.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the main application logic.
func run() error {
	// Define global flags.
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "show version information")

	flag.Parse()

	if *showVersion {
		fmt.Printf("livereload %s\n", version)
		return nil
	}

	args := flag.Args()
	if len(args) == 0 {
		return showUsage()
	}

	command := args[0]

	switch command {
	case "watch":
		return runWatchCommand(*configPath, args[1:])
	case "script":
		return runScriptCommand(*configPath, args[1:])
	case "config":
		return runConfigCommand(*configPath, args[1:])
	case "help":
		return showUsage()
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// parseWatchFlags parses the watch command flags. Numeric flags left unset
// are -1 so that configuration values survive.
func parseWatchFlags(configPath string, args []string, handling flag.ErrorHandling) (*watchCommand, error) {
	fs := flag.NewFlagSet("watch", handling)
	dir := fs.String("dir", "", "build output directory to watch")
	port := fs.Int("port", -1, "notification server port (0 picks a free one)")
	delay := fs.Int("delay", -1, "delay before notifying browsers, in milliseconds")
	marker := fs.String("marker", "", "failure marker file, relative to the output directory")
	var targets, ignore stringList
	fs.Var(&targets, "target", "subdirectory built as a separate target (repeatable)")
	fs.Var(&ignore, "ignore", "pattern of files never reported to browsers (repeatable)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &watchCommand{
		dir:        *dir,
		port:       *port,
		delay:      *delay,
		targets:    targets,
		ignore:     ignore,
		marker:     *marker,
		configPath: configPath,
	}, nil
}

// runWatchCommand runs the watch command.
func runWatchCommand(configPath string, args []string) error {
	cmd, err := parseWatchFlags(configPath, args, flag.ExitOnError)
	if err != nil {
		return err
	}
	return cmd.Execute()
}

// parseScriptFlags parses the script command flags.
func parseScriptFlags(configPath string, args []string, handling flag.ErrorHandling) (*scriptCommand, error) {
	fs := flag.NewFlagSet("script", handling)
	port := fs.Int("port", -1, "notification server port")
	hostname := fs.String("hostname", "", "hostname the browser connects to")
	protocol := fs.String("protocol", "", "protocol the browser connects with (http, https)")
	id := fs.String("id", "", "instance id used for the script element")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &scriptCommand{
		port:       *port,
		hostname:   *hostname,
		protocol:   *protocol,
		instanceID: *id,
		configPath: configPath,
	}, nil
}

// runScriptCommand runs the script command.
func runScriptCommand(configPath string, args []string) error {
	cmd, err := parseScriptFlags(configPath, args, flag.ExitOnError)
	if err != nil {
		return err
	}
	return cmd.Execute()
}

// runConfigCommand runs the config command.
func runConfigCommand(configPath string, args []string) error {
	cmd := &configCommand{
		configPath: configPath,
	}
	return cmd.Execute(args)
}

// showUsage displays usage information.
func showUsage() error {
	usage := `livereload - reload browsers when build output changes

Usage:
  livereload [flags] <command> [command flags]

Commands:
  watch       Watch a build output directory and notify browsers
  script      Print the autoload script for a page
  config      Configuration management (show, path, check, reset)
  help        Show this help message

Global Flags:
  -config     Path to configuration file
  -version    Show version information

Watch Command Flags:
  -dir        Build output directory (default: dist)
  -port       Notification server port (default: 35729, or a free port)
  -delay      Delay before notifying browsers, in milliseconds
  -target     Subdirectory built as a separate target (repeatable)
  -marker     Failure marker file; builds fail while it exists
  -ignore     Pattern of files never reported (repeatable; one is a regexp,
              several are globs; prefix with re: or glob: to choose)

Script Command Flags:
  -port       Notification server port (default: 35729)
  -hostname   Hostname the browser connects to (default: page hostname)
  -protocol   Protocol the browser connects with (default: page protocol)
  -id         Instance id used for the script element

Examples:
  # Watch ./dist on the default port
  livereload watch

  # Watch two targets with a 200ms delay
  livereload watch -dir build -target client -target server -delay 200

  # Never reload source maps or JSON files
  livereload watch -ignore '*.map' -ignore '*.json'

  # Print the autoload script
  livereload script -port 35729 -hostname localhost

  # Show current configuration
  livereload config show

Version: %s
`
	fmt.Printf(usage, version)
	return nil
}
