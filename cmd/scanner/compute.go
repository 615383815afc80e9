package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"StockScanner/internal/calculator"
	"StockScanner/internal/model"
)

var computeCmd = &cobra.Command{
	Use:   "compute [CLOSE...]",
	Short: "compute indicators over closing prices",
	Long:  "reads closes from the arguments, or whitespace/comma separated from stdin, and prints the indicator series as JSON",

	// the config file is not needed here
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },

	RunE: func(cmd *cobra.Command, args []string) error {
		closes, err := parseCloses(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		p := model.DefaultIndicatorParams()
		for name, dst := range map[string]*int{
			"sma":    &p.SMAFast,
			"ema":    &p.EMA,
			"rsi":    &p.RSI,
			"fast":   &p.MACDFast,
			"slow":   &p.MACDSlow,
			"signal": &p.MACDSignal,
		} {
			v, _ := cmd.Flags().GetInt(name)
			if v < 1 {
				return fmt.Errorf("--%s must be positive", name)
			}
			*dst = v
		}

		out := struct {
			Params model.IndicatorParams `json:"params"`
			SMA    []float64             `json:"sma"`
			EMA    []float64             `json:"ema"`
			RSI    []float64             `json:"rsi"`
			MACD   model.MACDSeries      `json:"macd"`
		}{
			Params: p,
			SMA:    calculator.SMA(closes, p.SMAFast),
			EMA:    calculator.EMA(closes, p.EMA),
			RSI:    calculator.RSI(closes, p.RSI),
			MACD:   calculator.MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal),
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	d := model.DefaultIndicatorParams()
	computeCmd.Flags().Int("sma", d.SMAFast, "SMA period")
	computeCmd.Flags().Int("ema", d.EMA, "EMA period")
	computeCmd.Flags().Int("rsi", d.RSI, "RSI period")
	computeCmd.Flags().Int("fast", d.MACDFast, "MACD fast period")
	computeCmd.Flags().Int("slow", d.MACDSlow, "MACD slow period")
	computeCmd.Flags().Int("signal", d.MACDSignal, "MACD signal period")
}

// parseCloses reads closes from args, or from r when args is empty.
func parseCloses(args []string, r io.Reader) ([]float64, error) {
	var tokens []string
	if len(args) > 0 {
		tokens = args
	} else {
		sc := bufio.NewScanner(r)
		sc.Split(bufio.ScanWords)
		for sc.Scan() {
			tokens = append(tokens, sc.Text())
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read closes: %w", err)
		}
	}

	closes := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		for _, f := range strings.Split(tok, ",") {
			if f == "" {
				continue
			}
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid close %q: %w", f, err)
			}
			closes = append(closes, v)
		}
	}
	return closes, nil
}
