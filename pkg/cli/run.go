package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/funvibe/boundstore/internal/config"
	"github.com/funvibe/boundstore/internal/diagnostics"
	boundstore "github.com/funvibe/boundstore/pkg/embed"
)

const stdinName = "<stdin>"

// invocation is one run of the command line.
type invocation struct {
	opts   *options
	cfg    *config.Config
	logger *slog.Logger
	color  bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// unit is the result of processing one file.
type unit struct {
	path  string
	src   []byte
	out   []byte
	diags diagnostics.List
}

func newInvocation(opts *options, stdin io.Reader, stdout, stderr io.Writer) (*invocation, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if opts.jobs > 0 {
		cfg.Jobs = opts.jobs
	}
	level := cfg.Level()
	if opts.verbose {
		level = slog.LevelDebug
	}
	return &invocation{
		opts:   opts,
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
		color:  cfg.UseColor(isTerminal(stderr)),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}, nil
}

// loadConfig uses -config when given, otherwise searches upward from the first path.
func loadConfig(opts *options) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadConfig(opts.configPath)
	}
	dir := "."
	if len(opts.paths) > 0 {
		dir = opts.paths[0]
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			dir = filepath.Dir(dir)
		}
	}
	path, err := config.FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(path)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (inv *invocation) run() int {
	if len(inv.opts.paths) == 0 {
		return inv.runStdin()
	}

	files, err := inv.collect()
	if err != nil {
		fmt.Fprintf(inv.stderr, "Error: %s\n", err)
		return exitUsage
	}
	inv.logger.Debug("processing files", "count", len(files), "jobs", inv.cfg.Jobs)

	units := make([]*unit, len(files))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(inv.cfg.Jobs)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			u, err := inv.process(path, src)
			if err != nil {
				return err
			}
			units[i] = u
			return inv.store(u)
		})
	}
	werr := g.Wait()

	status := inv.report(units)
	if werr != nil {
		fmt.Fprintf(inv.stderr, "Error: %s\n", werr)
		return exitDiagnostics
	}
	return status
}

func (inv *invocation) runStdin() int {
	if f, ok := inv.stdin.(*os.File); ok {
		if stat, err := f.Stat(); err == nil && stat.Mode()&os.ModeCharDevice != 0 {
			fmt.Fprint(inv.stderr, usage)
			return exitUsage
		}
	}
	src, err := io.ReadAll(inv.stdin)
	if err != nil {
		fmt.Fprintf(inv.stderr, "Error: reading standard input: %s\n", err)
		return exitDiagnostics
	}
	u, err := inv.process(stdinName, src)
	if err != nil {
		fmt.Fprintf(inv.stderr, "Error: %s\n", err)
		return exitDiagnostics
	}
	return inv.report([]*unit{u})
}

// process runs one file as its own compilation unit.
func (inv *invocation) process(path string, src []byte) (*unit, error) {
	session := boundstore.NewSession(
		boundstore.WithFile(path),
		boundstore.WithNames(inv.cfg.Macro, inv.cfg.Attribute),
		boundstore.WithLogger(inv.logger),
	)
	u := &unit{path: path, src: src}
	out, err := session.Transform(path, src)
	if err != nil {
		var diags diagnostics.List
		if !errors.As(err, &diags) {
			return nil, err
		}
		u.diags = diags
		return u, nil
	}
	u.out = out
	return u, nil
}

// store writes a successful unit for -w and -o.
func (inv *invocation) store(u *unit) error {
	if len(u.diags) > 0 {
		return nil
	}
	switch {
	case inv.opts.write:
		if bytes.Equal(u.src, u.out) {
			return nil
		}
		info, err := os.Stat(u.path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(u.path, u.out, info.Mode().Perm()); err != nil {
			return fmt.Errorf("writing %s: %w", u.path, err)
		}
		inv.logger.Debug("rewrote file", "file", u.path)
	case inv.opts.outDir != "":
		dest := outputPath(inv.opts.outDir, u.path)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, u.out, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
		inv.logger.Debug("wrote file", "file", u.path, "to", dest)
	}
	return nil
}

// report prints diagnostics to stderr and, in stdout mode, the rewritten
// files to stdout. It returns the exit status.
func (inv *invocation) report(units []*unit) int {
	renderer := diagnostics.NewRenderer(inv.cfg.Width, inv.color)
	var all diagnostics.List
	for _, u := range units {
		if u == nil || len(u.diags) == 0 {
			continue
		}
		renderer.AddSource(u.path, u.src)
		all = append(all, u.diags...)
	}

	toStdout := !inv.opts.write && inv.opts.outDir == "" && !inv.opts.check
	if toStdout {
		for _, u := range units {
			if u != nil && len(u.diags) == 0 {
				inv.stdout.Write(u.out)
			}
		}
	}

	if len(all) == 0 {
		return exitOK
	}
	if err := renderer.Write(inv.stderr, all); err != nil {
		fmt.Fprintf(inv.stderr, "%s\n", all.Error())
	}
	return exitDiagnostics
}

// collect expands directory arguments into host files.
func (inv *invocation) collect() ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range inv.opts.paths {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != arg && (strings.HasPrefix(name, ".") || name == "target") {
					return filepath.SkipDir
				}
				return nil
			}
			if inv.cfg.HasExtension(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// outputPath places path under dir, keeping relative paths that stay inside
// the working directory.
func outputPath(dir, path string) string {
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return filepath.Join(dir, filepath.Base(clean))
	}
	return filepath.Join(dir, clean)
}
