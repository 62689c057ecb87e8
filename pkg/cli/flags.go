package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// options are the parsed command-line flags.
type options struct {
	write      bool
	outDir     string
	check      bool
	configPath string
	jobs       int
	verbose    bool
	paths      []string
}

func parseArgs(args []string) (*options, error) {
	opts := &options{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-w", "--write":
			opts.write = true
		case "-check", "--check":
			opts.check = true
		case "-v", "--verbose":
			opts.verbose = true
		case "-o", "--output", "-config", "--config", "-j", "--jobs":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("flag %s needs a value", arg)
			}
			i++
			if err := opts.setValue(strings.TrimLeft(arg, "-"), args[i]); err != nil {
				return nil, err
			}
		case "-":
			// stdin, same as no path
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown flag %s", arg)
			}
			opts.paths = append(opts.paths, arg)
		}
	}
	return opts, opts.validate()
}

func (o *options) setValue(name, value string) error {
	switch name {
	case "o", "output":
		o.outDir = value
	case "config":
		o.configPath = value
	case "j", "jobs":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("-j needs a positive number, got %q", value)
		}
		o.jobs = n
	}
	return nil
}

func (o *options) validate() error {
	modes := 0
	for _, set := range []bool{o.write, o.outDir != "", o.check} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return errors.New("-w, -o and -check are mutually exclusive")
	}
	if o.write && len(o.paths) == 0 {
		return errors.New("-w needs at least one path")
	}
	if o.outDir != "" && len(o.paths) == 0 {
		return errors.New("-o needs at least one path")
	}
	return nil
}
