package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"hailstorm/internal/hail"
	"hailstorm/internal/smt"
)

// Command names.
const (
	cmdRock  = "rock"
	cmdCross = "cross"
	cmdHelp  = "help"
)

func main() {
	_ = godotenv.Load()
	log := newLogger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, log, os.Stdout, os.Args[1:]); err != nil {
		log.err(err.Error())
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger, stdout io.Writer, args []string) error {
	if len(args) == 0 {
		printUsage(stdout)
		return nil
	}

	switch args[0] {
	case cmdHelp, "-h", "--help":
		printUsage(stdout)
		return nil
	case cmdRock:
		return runRock(ctx, log, stdout, args[1:])
	case cmdCross:
		return runCross(ctx, log, stdout, args[1:])
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "hailstorm: find the rock that hits every hailstone")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  hailstorm rock  [--config PATH] [--input PATH] [--backend builtin|z3|linalg] [--submit] [--verbose]")
	_, _ = fmt.Fprintln(w, "  hailstorm cross [--config PATH] [--input PATH] [--min N] [--max N] [--submit]")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Options:")
	_, _ = fmt.Fprintln(w, "  --config   Path to config.json (default: $HAILSTORM_HOME/config.json or ./config.json)")
	_, _ = fmt.Fprintln(w, "  --input    Read hailstones from this file instead of the cache")
	_, _ = fmt.Fprintln(w, "  --backend  Solver for the rock (default from config: builtin)")
	_, _ = fmt.Fprintln(w, "  --min/--max  Test area bounds for crossings")
	_, _ = fmt.Fprintln(w, "  --submit   Post the answer to the puzzle site")
	_, _ = fmt.Fprintln(w, "  --verbose  Log solver rounds")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Environment:")
	_, _ = fmt.Fprintln(w, "  AOC_SESSION     Session cookie (overrides config)")
	_, _ = fmt.Fprintln(w, "  HAILSTORM_HOME  Directory holding config.json")
	_, _ = fmt.Fprintln(w, "  NO_COLOR        Disable colored output")
}

// commonFlags are shared by every solving command.
type commonFlags struct {
	configPath string
	inputPath  string
	submit     bool
	verbose    bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config path")
	fs.StringVar(&c.inputPath, "input", "", "puzzle input file")
	fs.BoolVar(&c.submit, "submit", false, "submit the answer")
	fs.BoolVar(&c.verbose, "verbose", false, "debug logging")
}

// load resolves the config and reads the hailstones.
func (c *commonFlags) load(ctx context.Context, log *logger) (appConfig, string, []hail.Hailstone, error) {
	if c.verbose {
		log.verbose()
	}
	configPath := resolveConfigPath(c.configPath)
	cfg, err := loadConfig(configPath)
	if err != nil {
		return appConfig{}, "", nil, err
	}

	text, err := readInput(ctx, &cfg, configPath, c.inputPath, log)
	if err != nil {
		return appConfig{}, "", nil, err
	}
	stones, err := hail.ParseString(text)
	if err != nil {
		return appConfig{}, "", nil, fmt.Errorf("parse input: %w", err)
	}
	log.infof("parsed %d hailstones", len(stones))
	return cfg, configPath, stones, nil
}

func runRock(ctx context.Context, log *logger, stdout io.Writer, args []string) error {
	fs := flag.NewFlagSet(cmdRock, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		common  commonFlags
		backend string
	)
	common.register(fs)
	fs.StringVar(&backend, "backend", "", "solver backend: builtin, z3 or linalg")
	if err := fs.Parse(args); err != nil {
		return err
	}
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend != "" {
		if err := validateBackend(backend); err != nil {
			return err
		}
	}

	cfg, configPath, stones, err := common.load(ctx, log)
	if err != nil {
		return err
	}
	if backend == "" {
		backend = cfg.Solver.Backend
	}

	solveCtx := ctx
	if cfg.Solver.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Solver.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	start := time.Now()
	var rock *hail.Rock
	err = newSpinner().track("solving with "+backend, func() error {
		var serr error
		rock, serr = solveRock(solveCtx, cfg, log, backend, stones)
		return serr
	})
	if err != nil {
		return fmt.Errorf("solve rock (%s): %w", backend, err)
	}
	log.okf("rock: %s (elapsed %s)", rock, time.Since(start).Round(10*time.Millisecond))

	sum, err := rock.PositionSum()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "Answer=%s\n", sum)

	if common.submit {
		return submit(ctx, &cfg, configPath, log, partRock, sum.String())
	}
	return nil
}

func solveRock(ctx context.Context, cfg appConfig, log *logger, backend string, stones []hail.Hailstone) (*hail.Rock, error) {
	switch backend {
	case backendLinalg:
		return hail.SolveLinear(stones)
	case backendZ3:
		return hail.SolveRock(ctx, stones, smt.NewZ3(cfg.Solver.Z3Path, log.component("z3")))
	default:
		opts := []smt.EngineOption{smt.WithLogger(log.component("smt"))}
		if cfg.Solver.MaxRounds > 0 {
			opts = append(opts, smt.WithMaxRounds(cfg.Solver.MaxRounds))
		}
		return hail.SolveRock(ctx, stones, smt.NewEngine(opts...))
	}
}

func runCross(ctx context.Context, log *logger, stdout io.Writer, args []string) error {
	fs := flag.NewFlagSet(cmdCross, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		common           commonFlags
		minFlag, maxFlag string
	)
	common.register(fs)
	fs.StringVar(&minFlag, "min", "", "test area lower bound")
	fs.StringVar(&maxFlag, "max", "", "test area upper bound")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, configPath, stones, err := common.load(ctx, log)
	if err != nil {
		return err
	}

	area := hail.Area{Min: cfg.Area.Min, Max: cfg.Area.Max}
	if minFlag != "" {
		if area.Min, err = strconv.ParseInt(minFlag, 10, 64); err != nil {
			return fmt.Errorf("--min: %w", err)
		}
	}
	if maxFlag != "" {
		if area.Max, err = strconv.ParseInt(maxFlag, 10, 64); err != nil {
			return fmt.Errorf("--max: %w", err)
		}
	}
	if area.Min > area.Max {
		return fmt.Errorf("test area is empty: min %d > max %d", area.Min, area.Max)
	}

	n := hail.CountCrossings(stones, area)
	log.okf("crossings inside [%d, %d]: %d", area.Min, area.Max, n)
	_, _ = fmt.Fprintf(stdout, "Answer=%d\n", n)

	if common.submit {
		return submit(ctx, &cfg, configPath, log, partCrossings, strconv.Itoa(n))
	}
	return nil
}
