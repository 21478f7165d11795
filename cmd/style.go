package main

import (
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/pow-ledger/ledger"
	"github.com/luca-patrignani/pow-ledger/mining"
)

func chainTable(blocks []ledger.Block) pterm.TableData {
	data := pterm.TableData{{"Index", "Nonce", "Timestamp", "Payload", "Prev hash", "Hash"}}
	for _, b := range blocks {
		data = append(data, []string{
			strconv.FormatInt(b.Index, 10),
			strconv.FormatInt(b.Nonce, 10),
			time.Unix(0, b.Timestamp).Format(time.RFC3339),
			b.Payload,
			shortHash(b.PrevHash),
			shortHash(b.Hash),
		})
	}
	return data
}

func printChain(blocks []ledger.Block) error {
	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(chainTable(blocks)).Render()
}

func printReport(report ledger.ValidationReport) {
	if report.Valid {
		pterm.Success.Println("Blockchain is valid")
		return
	}
	pterm.Error.Println("Blockchain is invalid! The following blocks are inconsistent:")
	for _, i := range report.BrokenIndices {
		pterm.Error.Printfln("block index: %d", i)
	}
}

func durationBars(rounds []mining.RoundStat) pterm.Bars {
	bars := make(pterm.Bars, 0, len(rounds))
	for _, r := range rounds {
		if !r.Solved {
			continue
		}
		bars = append(bars, pterm.Bar{
			Label: "block " + strconv.FormatInt(r.Index, 10),
			Value: int(r.Duration.Milliseconds()),
		})
	}
	return bars
}

// plotDurations renders the mining time of every block in milliseconds.
func plotDurations(rounds []mining.RoundStat) error {
	bars := durationBars(rounds)
	if len(bars) == 0 {
		return nil
	}
	pterm.DefaultSection.Println("Mining time per block (ms)")
	return pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).Render()
}

func shortHash(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:16] + "…"
}
