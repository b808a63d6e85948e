package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"TickerLens/internal/glossary"
	"TickerLens/internal/model"
	"TickerLens/internal/sentiment"
	"TickerLens/internal/session"
	"TickerLens/internal/strategy"
)

// DigestEntry is one watchlist line of the daily digest.
type DigestEntry struct {
	Symbol   string
	Analysis *model.Analysis
	Outlook  *model.Outlook
	Err      error
}

var verdictIcons = map[model.Verdict]string{
	model.VerdictBuy:         "🟢",
	model.VerdictHold:        "🟡",
	model.VerdictSell:        "🔴",
	model.VerdictUnavailable: "⚪",
}

var sentimentIcons = map[string]string{
	sentiment.Positive: "🟢",
	sentiment.Neutral:  "⚪",
	sentiment.Negative: "🔴",
}

func fmtValue(v float64) string { return strategy.FormatFloat(v) }

func deviation(price, ref float64) string {
	if math.IsNaN(price) || math.IsNaN(ref) || ref == 0 {
		return strategy.NotAvailable
	}
	return fmt.Sprintf("%+.1f%%", (price-ref)/ref*100)
}

// FormatMain renders the overview page: company, price and verdict.
func FormatMain(a *model.Analysis, o *model.Outlook) string {
	var b strings.Builder
	s := a.Snapshot
	name := a.Symbol
	if a.Fundamentals != nil {
		name = a.Fundamentals.Name()
	}
	fmt.Fprintf(&b, "🏠 <b>%s</b> (%s)\n\n", html.EscapeString(name), a.Symbol)
	fmt.Fprintf(&b, "Price: %s\n", fmtValue(s.CurrentPrice))
	fmt.Fprintf(&b, "52W: %s - %s (position %s)\n", fmtValue(s.Low52w), fmtValue(s.High52w), percentOf(s.Position52w))
	fmt.Fprintf(&b, "30D: %s - %s\n\n", fmtValue(s.Low30d), fmtValue(s.High30d))
	if a.Fundamentals != nil {
		for _, st := range strategy.KeyStatistics(a.Fundamentals)[:4] {
			fmt.Fprintf(&b, "%s: %s\n", st.Metric, st.Value)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "📌 <b>Outlook:</b> %s (%+.3f)\n", o.Tier.Label, o.TotalScore)
	if o.WarningMsg != "" {
		fmt.Fprintf(&b, "%s\n", o.WarningMsg)
	}
	b.WriteString("\n/technical · /fundamentals · /news · /glossary · /about")
	return b.String()
}

func percentOf(fraction float64) string {
	if math.IsNaN(fraction) {
		return strategy.NotAvailable
	}
	return fmt.Sprintf("%.0f%%", fraction*100)
}

// FormatTechnical renders the indicator report and factor breakdown.
func FormatTechnical(a *model.Analysis, o *model.Outlook) string {
	var b strings.Builder
	s := a.Snapshot
	fmt.Fprintf(&b, "📊 <b>%s technical report</b> | %s\n\n", a.Symbol, a.FetchedAt.Format("2006-01-02"))

	fmt.Fprintf(&b, "Price: %s\n", fmtValue(s.CurrentPrice))
	fmt.Fprintf(&b, "%s: %s (%s)\n", seriesName(a.Indicators.SMAFast, "SMA fast"), fmtValue(s.SMAFast), deviation(s.CurrentPrice, s.SMAFast))
	fmt.Fprintf(&b, "%s: %s (%s)\n", seriesName(a.Indicators.SMASlow, "SMA slow"), fmtValue(s.SMASlow), deviation(s.CurrentPrice, s.SMASlow))
	fmt.Fprintf(&b, "%s: %s\n", seriesName(a.Indicators.EMA, "EMA"), fmtValue(s.EMA))
	fmt.Fprintf(&b, "RSI: %s\n", fmtValue(s.RSI))
	fmt.Fprintf(&b, "MACD: %s | signal %s | hist %s\n", fmtValue(s.MACD), fmtValue(s.MACDSignal), fmtValue(s.MACDHist))
	fmt.Fprintf(&b, "Bollinger: %s / %s / %s\n", fmtValue(s.BBLower), fmtValue(s.BBMiddle), fmtValue(s.BBUpper))
	fmt.Fprintf(&b, "Stochastic: %%K %s | %%D %s\n\n", fmtValue(s.StochasticK), fmtValue(s.StochasticD))

	b.WriteString("📈 <b>Factor scores:</b>\n")
	for _, f := range o.Factors {
		fmt.Fprintf(&b, "  %s (%s): %+.0f (×%.2f) = %+.3f\n",
			f.Name, html.EscapeString(f.Commentary), f.RawScore, f.Weight, f.Weighted)
	}
	b.WriteString("  ─────────────────\n")
	fmt.Fprintf(&b, "  Total: %+.3f\n\n", o.TotalScore)
	fmt.Fprintf(&b, "💡 <b>Outlook:</b> %s\n", o.Tier.Label)
	if o.WarningMsg != "" {
		fmt.Fprintf(&b, "\n%s\n", o.WarningMsg)
	}
	if len(a.Warnings) > 0 {
		b.WriteString("\n<i>Notes:</i>\n")
		for _, w := range a.Warnings {
			fmt.Fprintf(&b, "• %s\n", html.EscapeString(w))
		}
	}
	return b.String()
}

func seriesName(s model.IndicatorSeries, fallback string) string {
	if s.Name != "" {
		return s.Name
	}
	return fallback
}

// FormatFundamentals renders key statistics, ratio sections and the
// valuation recommendation table.
func FormatFundamentals(f *model.Fundamentals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏢 <b>%s</b>\n", html.EscapeString(f.Name()))
	if f.Sector != nil || f.Industry != nil {
		fmt.Fprintf(&b, "%s · %s\n", html.EscapeString(deref(f.Sector)), html.EscapeString(deref(f.Industry)))
	}
	b.WriteString("\n<b>Key statistics</b>\n")
	for _, st := range strategy.KeyStatistics(f) {
		fmt.Fprintf(&b, "%s: %s\n", st.Metric, st.Value)
	}
	for _, sec := range strategy.FundamentalSections(f) {
		fmt.Fprintf(&b, "\n<b>%s</b>\n", sec.Title)
		for _, row := range sec.Rows {
			fmt.Fprintf(&b, "%s: %s\n", row.Metric, row.Value)
		}
	}
	b.WriteString("\n")
	b.WriteString(FormatValuation(strategy.RecommendValuation(f)))
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return strategy.NotAvailable
	}
	return *s
}

// FormatValuation renders the recommendation table.
func FormatValuation(recs []model.Recommendation) string {
	var b strings.Builder
	b.WriteString("⚖️ <b>Valuation</b>\n")
	for _, r := range recs {
		fmt.Fprintf(&b, "%s %s: %s (industry %s) → <b>%s</b>\n",
			verdictIcons[r.Verdict], r.Metric, strategy.FormatNumber(r.Value), r.IndustryValue, r.Verdict)
	}
	return b.String()
}

// FormatNews renders the latest headlines with their polarity and the
// overall sentiment.
func FormatNews(r *model.NewsReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📰 <b>%s news</b> | %s\n\n", r.Symbol, html.EscapeString(r.Query))
	if len(r.Articles) == 0 {
		b.WriteString("No recent headlines found.")
		return b.String()
	}
	for _, a := range r.Articles {
		title := html.EscapeString(a.Title)
		if a.URL != "" {
			title = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(a.URL), title)
		}
		fmt.Fprintf(&b, "%s %s (%.2f)\n", sentimentIcons[sentiment.Label(a.Polarity)], title, a.Polarity)
	}
	fmt.Fprintf(&b, "\n%s <b>Overall sentiment:</b> %s (%.2f)", sentimentIcons[r.Label], r.Label, r.Polarity)
	return b.String()
}

// FormatGlossary renders glossary entries.
func FormatGlossary(query string, entries []glossary.Entry) string {
	var b strings.Builder
	b.WriteString("📖 <b>Glossary</b>\n")
	if query != "" && len(entries) == 0 {
		fmt.Fprintf(&b, "\nNo term matches %q.", html.EscapeString(query))
		return b.String()
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "\n<b>%s</b>: %s\n", html.EscapeString(e.Term), html.EscapeString(e.Definition))
	}
	return b.String()
}

// FormatAbout renders the about page.
func FormatAbout() string {
	return "ℹ️ <b>About</b>\n\n" + html.EscapeString(glossary.About)
}

// FormatHelp lists the commands and the current selection.
func FormatHelp(sess session.Session) string {
	var b strings.Builder
	b.WriteString("🤖 <b>TickerLens</b>\n\n")
	b.WriteString("/ticker SYMBOL - select a ticker\n")
	b.WriteString("/main - overview of the selected ticker\n")
	b.WriteString("/technical - indicators and outlook\n")
	b.WriteString("/fundamentals - statistics and valuation\n")
	b.WriteString("/news - latest headlines and their sentiment\n")
	b.WriteString("/glossary [term] - explain a term\n")
	b.WriteString("/about - about this bot\n")
	b.WriteString("/reset - clear the selection\n")
	if sess.HasTicker() {
		fmt.Fprintf(&b, "\nSelected: <b>%s</b> (page %s)", sess.Ticker, sess.Page)
	} else {
		b.WriteString("\nNo ticker selected.")
	}
	return b.String()
}

// FormatDigest renders the scheduled watchlist summary.
func FormatDigest(date time.Time, entries []DigestEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 <b>TickerLens daily digest</b> | %s\n\n", date.Format("2006-01-02"))
	for _, e := range entries {
		if e.Err != nil {
			fmt.Fprintf(&b, "❌ %s: %s\n", e.Symbol, html.EscapeString(e.Err.Error()))
			continue
		}
		s := e.Analysis.Snapshot
		fmt.Fprintf(&b, "<b>%s</b> %s | RSI %s | %s (%+.2f)\n",
			e.Symbol, fmtValue(s.CurrentPrice), fmtValue(s.RSI), e.Outlook.Tier.Label, e.Outlook.TotalScore)
		if e.Outlook.WarningMsg != "" {
			fmt.Fprintf(&b, "   %s\n", e.Outlook.WarningMsg)
		}
	}
	return b.String()
}
