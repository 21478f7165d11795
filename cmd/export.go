package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/luca-patrignani/pow-ledger/ledger"
)

type chainDump struct {
	Difficulty int                     `json:"difficulty"`
	Blocks     []ledger.Block          `json:"blocks"`
	Validation ledger.ValidationReport `json:"validation"`
}

func dumpChain(w io.Writer, difficulty int, blocks []ledger.Block, report ledger.ValidationReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(chainDump{Difficulty: difficulty, Blocks: blocks, Validation: report})
}

func dumpChainFile(path string, difficulty int, blocks []ledger.Block, report ledger.ValidationReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dump file: %w", err)
	}
	if err := dumpChain(f, difficulty, blocks, report); err != nil {
		f.Close()
		return fmt.Errorf("failed to write chain: %w", err)
	}
	return f.Close()
}
