package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/luca-patrignani/pow-ledger/config"
	"github.com/luca-patrignani/pow-ledger/ledger"
	"github.com/luca-patrignani/pow-ledger/mining"
	"github.com/luca-patrignani/pow-ledger/node"
)

var samplePayloads = []string{
	"Alonso paid 20 BlockCoin to ZecaUrubu",
	"Patolino paid 12919 BlockCoin to Pernalonga",
	"Finn paid 69 BlockCoin to FirePrincess",
	"Mickey paid 150 BlockCoin to Minnie",
	"Goku paid 5000 BlockCoin to Vegeta",
	"Batman paid 75 BlockCoin to Robin",
	"Mario paid 100 BlockCoin to Luigi",
	"Tony Stark paid 10000 BlockCoin to Peter Parker",
	"SpongeBob paid 5 BlockCoin to Patrick",
	"Donkey paid 88 BlockCoin to Shrek",
}

func main() {
	cfg, payloads, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		pterm.Error.Println(err)
		os.Exit(2)
	}
	if len(payloads) == 0 {
		payloads = samplePayloads
	}

	// Create a new slog handler with the default PTerm logger
	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("P", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("o", pterm.FgDarkGray.ToStyle()),
		putils.LettersFromStringWithStyle("W", pterm.FgRed.ToStyle()),
	).Render()
	pterm.Info.Printfln("difficulty %d, %d workers, %d payloads", cfg.Difficulty, cfg.Workers, len(payloads))

	if err := run(context.Background(), cfg, payloads, logger); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (config.Config, []string, error) {
	cfg := config.Default()
	fs := flag.NewFlagSet("pow-ledger", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&cfg.Difficulty, "difficulty", cfg.Difficulty, "Leading zero hex digits required in a block hash")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Mining goroutines per block")
	fs.DurationVar(&cfg.RoundTimeout, "timeout", cfg.RoundTimeout, "Give up a mining round after this long (0 = never)")
	fs.IntVar(&cfg.MaxAttempts, "attempts", cfg.MaxAttempts, "Mining rounds per payload before giving up")
	fs.StringVar(&cfg.DumpPath, "dump", cfg.DumpPath, "Write the chain as JSON to this file")
	fs.BoolVar(&cfg.Plot, "plot", cfg.Plot, "Show a chart of mining time per block")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, fs.Args(), nil
}

func run(ctx context.Context, cfg config.Config, payloads []string, logger *slog.Logger) error {
	chain, err := ledger.NewBlockchain(cfg.Difficulty, ledger.WithLogger(logger))
	if err != nil {
		return err
	}
	stats := mining.NewStats()
	miner, err := mining.NewMiner(cfg.Workers, cfg.Difficulty,
		mining.WithLogger(logger), mining.WithStats(stats))
	if err != nil {
		return err
	}
	n := node.New(chain, miner, node.WithLogger(logger), node.WithMaxAttempts(cfg.MaxAttempts))

	for _, payload := range payloads {
		spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Mining block %d ...", chain.Tip().Index+1))
		b, err := submit(ctx, n, payload, cfg)
		if err != nil {
			spinner.Fail(err.Error())
			continue
		}
		spinner.Success(fmt.Sprintf("Block %d mined with nonce %d: %s", b.Index, b.Nonce, b.Hash))
	}

	blocks := chain.Blocks()
	report := chain.Validate()
	if err := printChain(blocks); err != nil {
		return err
	}
	printReport(report)
	pterm.Info.Printfln("%d hashes, %.0f H/s", stats.TotalAttempts(), stats.HashRate())

	if cfg.Plot {
		if err := plotDurations(stats.Rounds()); err != nil {
			return err
		}
	}
	if cfg.DumpPath != "" {
		if err := dumpChainFile(cfg.DumpPath, cfg.Difficulty, blocks, report); err != nil {
			return err
		}
		pterm.Success.Printfln("Chain written to %s", cfg.DumpPath)
	}
	return nil
}

func submit(ctx context.Context, n *node.Node, payload string, cfg config.Config) (ledger.Block, error) {
	if cfg.RoundTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RoundTimeout)
		defer cancel()
	}
	return n.Submit(ctx, payload)
}
