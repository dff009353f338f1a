package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/0xmhha/livereload/pkg/config"
)

// errConfigExists is returned by reset when the target exists and -force
// was not given.
var errConfigExists = errors.New("configuration file already exists (use -force to overwrite)")

// configCommand handles configuration management subcommands.
type configCommand struct {
	configPath string
	out        io.Writer
}

// Execute dispatches a config subcommand.
func (c *configCommand) Execute(args []string) error {
	if c.out == nil {
		c.out = os.Stdout
	}
	if len(args) == 0 {
		return c.usage()
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "show":
		return c.show(rest)
	case "path":
		return c.paths()
	case "check":
		return c.check()
	case "reset":
		return c.reset(rest)
	case "help":
		return c.usage()
	default:
		return fmt.Errorf("unknown config subcommand: %s", sub)
	}
}

// show prints the effective configuration: defaults, then the file, then
// environment overrides.
func (c *configCommand) show(args []string) error {
	fs := flag.NewFlagSet("config show", flag.ContinueOnError)
	fs.SetOutput(c.out)
	format := fs.String("format", "yaml", "output format (yaml, json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.NewLoader(c.configPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var data []byte
	switch *format {
	case "json":
		data, err = json.MarshalIndent(cfg, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case "yaml":
		data, err = yaml.Marshal(cfg)
		if err == nil {
			data = append([]byte("# source: "+c.source()+"\n"), data...)
		}
	default:
		return fmt.Errorf("unknown format: %s", *format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	_, err = c.out.Write(data)
	return err
}

// paths lists the files the loader looks at.
func (c *configCommand) paths() error {
	candidates := config.SearchPaths()
	if c.configPath != "" {
		candidates = []string{c.configPath}
	}

	for i, p := range candidates {
		state := "missing"
		if _, err := os.Stat(p); err == nil {
			state = "present"
		}
		fmt.Fprintf(c.out, "%d. %s (%s)\n", i+1, p, state)
	}
	fmt.Fprintf(c.out, "active: %s\n", c.source())
	return nil
}

// check loads and validates the configuration without running anything.
func (c *configCommand) check() error {
	if _, err := config.NewLoader(c.configPath).Load(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "ok: %s\n", c.source())
	return nil
}

// reset writes the default configuration.
func (c *configCommand) reset(args []string) error {
	fs := flag.NewFlagSet("config reset", flag.ContinueOnError)
	fs.SetOutput(c.out)
	force := fs.Bool("force", false, "overwrite an existing file")
	output := fs.String("output", "", "file to write (default: ~/.config/livereload/config.yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	target := *output
	if target == "" {
		target = config.DefaultConfigPath()
	}

	if _, err := os.Stat(target); err == nil && !*force {
		return fmt.Errorf("%w: %s", errConfigExists, target)
	}

	if err := config.Save(config.Default(), target); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "wrote defaults to %s\n", target)
	return nil
}

func (c *configCommand) source() string {
	if s := config.NewLoader(c.configPath).Source(); s != "" {
		return s
	}
	return "defaults"
}

func (c *configCommand) usage() error {
	_, err := io.WriteString(c.out, `Usage:
  livereload config <subcommand> [flags]

Subcommands:
  show      Print the effective configuration (-format yaml|json)
  path      List configuration file locations
  check     Validate the configuration
  reset     Write the default configuration (-output file, -force)
`)
	return err
}
