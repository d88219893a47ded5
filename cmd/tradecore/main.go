package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/menthorq/tradecore/internal/config"
	"github.com/menthorq/tradecore/internal/logging"
	"github.com/menthorq/tradecore/internal/pipeline"
	"github.com/menthorq/tradecore/internal/sink"
	"github.com/menthorq/tradecore/internal/xerrors"
)

// Exit codes per spec.md §6: 0 clean shutdown, 2 config error, 3 ingestion
// fatal error, 4 internal assertion.
const (
	exitClean        = 0
	exitConfigError  = 2
	exitIngestError  = 3
	exitInternalErr  = 4
)

var (
	configPath string
	symbolFlag string
	fromArg    string
	toArg      string
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd.Execute(); err != nil {
		return exitFor(err)
	}
	return exitClean
}

func exitFor(err error) int {
	switch {
	case xerrors.Is(err, xerrors.KindConfig):
		return exitConfigError
	case xerrors.Is(err, xerrors.KindIO):
		return exitIngestError
	case xerrors.Is(err, xerrors.KindLogic):
		return exitInternalErr
	default:
		fmt.Fprintln(os.Stderr, err)
		return exitInternalErr
	}
}

var rootCmd = &cobra.Command{
	Use:   "tradecore",
	Short: "tradecore runs the ES/NQ intraday decision pipeline.",
	Long:  "tradecore ingests chart record streams, derives features and signals, and emits trading decisions.",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the decision pipeline, emitting decisions to stdout.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return xerrors.Config("cmd.run", err)
		}
		if symbolFlag != "" {
			spec, ok := cfg.SymbolSpecs[symbolFlag]
			if !ok {
				return xerrors.Config("cmd.run", fmt.Errorf("--symbol %q is not a configured symbol", symbolFlag))
			}
			cfg.SymbolSpecs = map[string]config.SymbolSpec{symbolFlag: spec}
		}

		log, err := logging.New(cfg.LogLevel)
		if err != nil {
			return xerrors.Config("cmd.run", err)
		}

		s := sink.NewJSONLines(os.Stdout)
		pl, err := pipeline.New(cfg, log, s)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		if err := pl.Run(ctx); err != nil {
			return xerrors.IO("cmd.run", err)
		}
		return nil
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Deterministically replay historical chart files over a time range.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return xerrors.Config("cmd.replay", err)
		}
		from, err := time.Parse(time.RFC3339, fromArg)
		if err != nil {
			return xerrors.Config("cmd.replay", fmt.Errorf("--from: %w", err))
		}
		to, err := time.Parse(time.RFC3339, toArg)
		if err != nil {
			return xerrors.Config("cmd.replay", fmt.Errorf("--to: %w", err))
		}
		if !to.After(from) {
			return xerrors.Config("cmd.replay", fmt.Errorf("--to must be after --from"))
		}

		log, err := logging.New(cfg.LogLevel)
		if err != nil {
			return xerrors.Config("cmd.replay", err)
		}
		log.Info("replay window", logging.String("from", from.Format(time.RFC3339)), logging.String("to", to.Format(time.RFC3339)))

		s := sink.NewJSONLines(os.Stdout)
		pl, err := pipeline.New(cfg, log, s)
		if err != nil {
			return err
		}

		if err := pl.Replay(from, to); err != nil {
			return xerrors.IO("cmd.replay", err)
		}
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect internal decision-pipeline state.",
}

var inspectSnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Report a symbol's snapshot status as JSON (standalone: not_running).",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if symbolFlag == "" {
			return xerrors.Config("cmd.inspect.snapshot", fmt.Errorf("--symbol is required"))
		}
		_, err := config.Load(configPath)
		if err != nil {
			return xerrors.Config("cmd.inspect.snapshot", err)
		}
		// A live Snapshot only exists inside a running Pipeline, and this
		// command has no connection to one: it prints the symbol with
		// status "not_running" and never prints Snapshot contents.
		fmt.Printf(`{"symbol":%q,"status":"not_running"}`+"\n", symbolFlag)
		return nil
	},
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "tradecore.yaml", "Path to the configuration file")

	runCmd.Flags().StringVarP(&symbolFlag, "symbol", "s", "", "Restrict the run to a single symbol (default: all configured symbols)")
	rootCmd.AddCommand(runCmd)

	replayCmd.Flags().StringVar(&fromArg, "from", "", "Replay start, ISO 8601")
	replayCmd.Flags().StringVar(&toArg, "to", "", "Replay end, ISO 8601")
	replayCmd.MarkFlagRequired("from")
	replayCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(replayCmd)

	inspectSnapshotCmd.Flags().StringVarP(&symbolFlag, "symbol", "s", "", "Symbol to inspect")
	inspectSnapshotCmd.MarkFlagRequired("symbol")
	inspectCmd.AddCommand(inspectSnapshotCmd)
	rootCmd.AddCommand(inspectCmd)
}
