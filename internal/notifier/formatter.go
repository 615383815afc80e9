package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockScanner/internal/model"
)

// WatchlistRow is one symbol of a watchlist summary. Err is set when the scan failed.
type WatchlistRow struct {
	Symbol string
	Report *model.IndicatorReport
	Signal *model.ScanSignal
	Err    error
}

func tierIcon(t model.SignalTier, score float64) string {
	switch {
	case t.Neutral:
		return "⚪"
	case score > 0:
		return "🟢"
	default:
		return "🔴"
	}
}

// FormatScanReport formats one symbol's indicators and signal into a Telegram message.
func FormatScanReport(r *model.IndicatorReport, signal *model.ScanSignal) string {
	var b strings.Builder
	l := r.Latest
	p := r.Params

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> %s | %s\n\n", html.EscapeString(r.Symbol), r.Interval, r.ComputedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Price: %.2f\n", r.CurrentPrice))
	b.WriteString(fmt.Sprintf("SMA%d: %s | SMA%d: %s\n", p.SMAFast, value(r.SMAFast, l.SMAFast, 2), p.SMASlow, value(r.SMASlow, l.SMASlow, 2)))
	b.WriteString(fmt.Sprintf("EMA%d: %s | RSI%d: %s\n", p.EMA, value(r.EMA, l.EMA, 2), p.RSI, value(r.RSI, l.RSI, 2)))
	b.WriteString(fmt.Sprintf("MACD: %s | Signal: %s | Hist: %s\n",
		value(r.MACD.MACD, l.MACD, 4), value(r.MACD.Signal, l.MACDSignal, 4), value(r.MACD.Histogram, l.MACDHistogram, 4)))
	b.WriteString(fmt.Sprintf("52w: %.2f - %.2f (position %.0f%%)\n\n", l.Low52w, l.High52w, l.Position52w*100))

	b.WriteString("📈 <b>Factors:</b>\n")
	for _, f := range signal.Factors {
		b.WriteString(fmt.Sprintf("  %s (%s): %+.1f (×%.2f) = %+.3f\n",
			html.EscapeString(f.Name), html.EscapeString(f.Commentary), f.RawScore, f.Weight, f.Weighted))
	}
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("  Total: %+.3f\n\n", signal.TotalScore))
	b.WriteString(fmt.Sprintf("%s <b>%s</b>\n", tierIcon(signal.Tier, signal.TotalScore), signal.Tier.Label))

	if signal.WarningMsg != "" {
		b.WriteString(fmt.Sprintf("\n⚠️ %s\n", html.EscapeString(signal.WarningMsg)))
	}
	return b.String()
}

// value renders the latest value of a series, or n/a when the series is empty.
func value(series []float64, v float64, places int) string {
	if len(series) == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", places, v)
}

// FormatWatchlist formats a one-line-per-symbol summary.
func FormatWatchlist(rows []WatchlistRow, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 <b>Watchlist</b> | %s\n\n", at.Format("2006-01-02 15:04")))
	if len(rows) == 0 {
		b.WriteString("(empty)\n")
		return b.String()
	}
	for _, row := range rows {
		sym := html.EscapeString(row.Symbol)
		if row.Err != nil {
			b.WriteString(fmt.Sprintf("❌ <b>%s</b>: %s\n", sym, html.EscapeString(row.Err.Error())))
			continue
		}
		l := row.Report.Latest
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %.2f RSI %s hist %s → %s (%+.2f)\n",
			tierIcon(row.Signal.Tier, row.Signal.TotalScore), sym, row.Report.CurrentPrice,
			value(row.Report.RSI, l.RSI, 1), value(row.Report.MACD.Histogram, l.MACDHistogram, 4),
			row.Signal.Tier.Label, row.Signal.TotalScore))
	}
	return b.String()
}

// FormatAlert formats a short alert for a non-neutral signal.
func FormatAlert(r *model.IndicatorReport, signal *model.ScanSignal) string {
	return fmt.Sprintf("🔔 <b>%s</b> %s %s at %.2f (score %+.2f)",
		html.EscapeString(r.Symbol), tierIcon(signal.Tier, signal.TotalScore), signal.Tier.Label, r.CurrentPrice, signal.TotalScore)
}

// FormatError formats an error message for display.
func FormatError(where string, err error) string {
	return fmt.Sprintf("❌ <b>Error</b> [%s]\n%s", html.EscapeString(where), html.EscapeString(err.Error()))
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	var b strings.Builder
	b.WriteString("🤖 <b>StockScanner commands</b>\n\n")
	b.WriteString("/scan SYMBOL - indicators and signal for one symbol\n")
	b.WriteString("/watchlist - scan every watched symbol\n")
	b.WriteString("/help - this message\n")
	return b.String()
}
