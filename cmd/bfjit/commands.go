package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcorbin/bfjit"
	"github.com/jcorbin/bfjit/internal/fileinput"
	"github.com/jcorbin/bfjit/internal/fixture"
	"github.com/jcorbin/bfjit/internal/logio"
	"github.com/jcorbin/bfjit/internal/panicerr"
)

// imageExt marks compiled program images.
const imageExt = ".bfo"

type app struct {
	log    *logio.Logger
	stdin  io.Reader
	stdout io.Writer

	configPath string
	verbose    int
	conf       Config
}

func newRootCommand(log *logio.Logger, stdin io.Reader, stdout io.Writer) *cobra.Command {
	a := &app{log: log, stdin: stdin, stdout: stdout}

	root := &cobra.Command{
		Use:           "bfjit",
		Short:         "Run tape machine programs through interpreters or a JIT",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().CountVarP(&a.verbose, "verbose", "v", "increase log verbosity; -vv traces execution")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./"+defaultConfigFile+" if present)")

	root.AddCommand(
		a.runCommand(),
		a.compileCommand(),
		a.dumpCommand(),
		a.checkCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) (err error) {
	a.conf, err = loadConfig(a.configPath)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("verbose") {
		a.verbose = a.conf.Verbose
	}
	a.log.Verbosity = a.verbose
	if debugf := a.log.Verbosef(1, "DEBUG"); debugf != nil && a.configPath != "" {
		debugf("loaded config %v: %+v", a.configPath, a.conf)
	}
	return nil
}

func (a *app) debugf(mess string, args ...interface{}) {
	if debugf := a.log.Verbosef(1, "DEBUG"); debugf != nil {
		debugf(mess, args...)
	}
}

// options returns program options from flags and config; a tape size of 0
// defers to the config file.
func (a *app) options(tapeSize int) []bfjit.Option {
	if tapeSize == 0 {
		tapeSize = a.conf.TapeSize
	}
	opts := []bfjit.Option{bfjit.WithTapeSize(tapeSize)}
	if tracef := a.log.Verbosef(2, "TRACE"); tracef != nil {
		opts = append(opts, bfjit.WithLogf(tracef))
	}
	return opts
}

func (a *app) defaultStrategy(fallback bfjit.Strategy) (bfjit.Strategy, error) {
	if a.conf.Strategy == "" {
		return fallback, nil
	}
	return bfjit.ParseStrategy(a.conf.Strategy)
}

// loadProgram compiles a source file, or decodes a compiled image file.
func (a *app) loadProgram(path string, strategy bfjit.Strategy, opts ...bfjit.Option) (*bfjit.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == imageExt {
		p, err := bfjit.UnmarshalProgram(data, opts...)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", path, err)
		}
		a.debugf("loaded %v image %v", p.Strategy(), path)
		return p, nil
	}
	p, err := bfjit.Compile(data, strategy, opts...)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	a.debugf("compiled %v for %v", path, strategy)
	return p, nil
}

func (a *app) runCommand() *cobra.Command {
	var (
		level    int
		jit      bool
		tapeSize int
		timeout  time.Duration
		inputs   []string
		logOut   bool
	)
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run a program, or a compiled " + imageExt + " image, against stdin and stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := a.defaultStrategy(bfjit.Naive)
			if err != nil {
				return err
			}
			if jit {
				strategy = bfjit.JIT
			} else if cmd.Flags().Changed("optimize") {
				if strategy, err = bfjit.ParseStrategy(strconv.Itoa(level)); err != nil {
					return fmt.Errorf("invalid optimization level %v, must be 1, 2, or 3", level)
				}
			}
			if !cmd.Flags().Changed("timeout") {
				timeout = a.conf.Timeout.Duration
			}

			opts := a.options(tapeSize)
			if logOut {
				lw := &logio.Writer{Logf: a.log.Leveledf("OUTPUT")}
				defer lw.Close()
				opts = append(opts, bfjit.WithTee(lw))
			}

			p, err := a.loadProgram(args[0], strategy, opts...)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			in, err := a.openInputs(inputs)
			if err != nil {
				return err
			}
			if fin, ok := in.(*fileinput.Input); ok {
				defer fin.Close()
			}

			start := time.Now()
			err = p.Run(ctx, in, a.stdout)
			a.debugf("%v run took %v", p.Strategy(), time.Since(start))
			if stack := panicerr.PanicStack(err); stack != "" {
				a.debugf("panic stack: %s", stack)
			}
			if fin, ok := in.(*fileinput.Input); ok && errors.Is(err, bfjit.ErrInputUnavailable) {
				a.debugf("input exhausted at %v after %v bytes", fin.Loc, fin.Total)
			}
			return err
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&level, "optimize", "o", 1, "optimization level: 1 naive, 2 ops, 3 optimized ops")
	flags.BoolVarP(&jit, "jit", "j", false, "use the JIT (linux/amd64 only)")
	flags.IntVar(&tapeSize, "tape-size", 0, "number of tape cells (default 30000)")
	flags.DurationVar(&timeout, "timeout", 0, "time limit for interpreted runs")
	flags.BoolVar(&logOut, "log-output", false, "also log program output lines")
	flags.StringArrayVarP(&inputs, "input", "i", nil, "read program input from FILE instead of stdin; repeatable, - is stdin")
	cmd.MarkFlagsMutuallyExclusive("optimize", "jit")
	return cmd
}

// openInputs returns stdin when no input files are named, or else a queue
// of the named files.
func (a *app) openInputs(names []string) (io.Reader, error) {
	if len(names) == 0 {
		return a.stdin, nil
	}
	in := &fileinput.Input{}
	for _, name := range names {
		if name == "-" {
			in.Queue = append(in.Queue, io.NopCloser(a.stdin))
			continue
		}
		f, err := os.Open(name)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.Queue = append(in.Queue, f)
	}
	return in, nil
}

func (a *app) compileCommand() *cobra.Command {
	var (
		strategy = bfjit.OptimizedOps
		output   string
		tapeSize int
	)
	cmd := &cobra.Command{
		Use:   "compile FILE",
		Short: "Compile a program into a " + imageExt + " image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("strategy") {
				var err error
				if strategy, err = a.defaultStrategy(strategy); err != nil {
					return err
				}
			}
			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + imageExt
			}

			p, err := a.loadProgram(args[0], strategy, a.options(tapeSize)...)
			if err != nil {
				return err
			}
			data, err := p.MarshalBinary()
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			a.debugf("wrote %v bytes to %v", len(data), output)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.VarP(&strategy, "strategy", "s", "execution strategy: naive, ops, optimized-ops, or jit")
	flags.StringVarP(&output, "output", "o", "", "output image file (default FILE with "+imageExt+" extension)")
	flags.IntVar(&tapeSize, "tape-size", 0, "number of tape cells (default 30000)")
	return cmd
}

func (a *app) dumpCommand() *cobra.Command {
	strategy := bfjit.OptimizedOps
	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print a listing of a compiled program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("strategy") {
				var err error
				if strategy, err = a.defaultStrategy(strategy); err != nil {
					return err
				}
			}
			p, err := a.loadProgram(args[0], strategy, a.options(0)...)
			if err != nil {
				return err
			}
			_, err = p.WriteTo(a.stdout)
			return err
		},
	}
	cmd.Flags().VarP(&strategy, "strategy", "s", "execution strategy: naive, ops, optimized-ops, or jit")
	return cmd
}

func (a *app) checkCommand() *cobra.Command {
	var (
		names []string
		jobs  int
	)
	cmd := &cobra.Command{
		Use:   "check DIR",
		Short: "Run every NAME.bf in DIR against its NAME.test expectations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(names) == 0 {
				for _, strategy := range bfjit.Strategies {
					if strategy != bfjit.JIT || bfjit.JITSupported {
						names = append(names, strategy.String())
					}
				}
			}
			if !cmd.Flags().Changed("jobs") && a.conf.Jobs > 0 {
				jobs = a.conf.Jobs
			}

			runners := make(map[string]fixture.Runner, len(names))
			for _, name := range names {
				strategy, err := bfjit.ParseStrategy(name)
				if err != nil {
					return err
				}
				opts := a.options(0)
				runners[strategy.String()] = func(ctx context.Context, src []byte, in io.Reader, out io.Writer) error {
					return bfjit.Execute(ctx, src, in, out, strategy, opts...)
				}
			}

			fixtures, err := fixture.Load(args[0])
			if err != nil {
				return err
			}
			a.debugf("loaded %v fixtures from %v", len(fixtures), args[0])

			results, err := fixture.Check(cmd.Context(), fixtures, runners, jobs)
			if err != nil {
				return err
			}

			failed := 0
			for _, res := range results {
				fmt.Fprintln(a.stdout, res)
				if !res.OK() {
					failed++
					if res.Err == nil {
						a.debugf("%v/%v output diff:\n%v", res.Runner, res.Name, res.PrettyDiff())
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%v of %v fixture runs failed", failed, len(results))
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringSliceVarP(&names, "strategy", "s", nil, "strategies to check (default all available)")
	flags.IntVarP(&jobs, "jobs", "j", 0, "maximum concurrent runs (default unlimited)")
	return cmd
}
