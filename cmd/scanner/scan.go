package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"StockScanner/internal/notifier"
)

var scanCmd = &cobra.Command{
	Use:   "scan [SYMBOL...]",
	Short: "scan symbols once and print a signal table",
	Long:  "scans the given symbols, or the configured watchlist when none are given",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		a, err := newApp(ctx, cfg, args)
		if err != nil {
			return err
		}
		defer a.Close()

		rows := a.Scheduler.RunNow(ctx)
		renderRows(os.Stdout, rows)

		notify, _ := cmd.Flags().GetBool("notify")
		if notify {
			if a.Telegram == nil {
				return fmt.Errorf("--notify needs telegram.bot_token")
			}
			if err := a.Telegram.SendWithRetry(ctx, notifier.FormatWatchlist(rows, time.Now()), 3); err != nil {
				return err
			}
			log.Info("watchlist summary sent")
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().Bool("notify", false, "also send the summary to telegram")
}

func renderRows(w io.Writer, rows []notifier.WatchlistRow) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Symbol", "Price", "RSI", "MACD Hist", "SMA Fast", "SMA Slow", "52w Pos", "Score", "Signal"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})

	for _, row := range rows {
		if row.Err != nil {
			t.AppendRow(table.Row{row.Symbol, "-", "-", "-", "-", "-", "-", "-", "error: " + row.Err.Error()})
			continue
		}
		l := row.Report.Latest
		t.AppendRow(table.Row{
			row.Symbol,
			fmt.Sprintf("%.2f", row.Report.CurrentPrice),
			fmt.Sprintf("%.2f", l.RSI),
			fmt.Sprintf("%+.4f", l.MACDHistogram),
			fmt.Sprintf("%.2f", l.SMAFast),
			fmt.Sprintf("%.2f", l.SMASlow),
			fmt.Sprintf("%.0f%%", l.Position52w*100),
			fmt.Sprintf("%+.2f", row.Signal.TotalScore),
			row.Signal.Tier.Label,
		})
	}
	t.Render()
}
