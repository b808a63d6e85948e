package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"TickerLens/internal/collector"
	"TickerLens/internal/glossary"
	"TickerLens/internal/notifier"
	"TickerLens/internal/session"
	"TickerLens/internal/strategy"
)

// parseCommand splits "/cmd@bot arg" into its lowercased command and the
// trimmed argument. Text without a leading slash has an empty command.
func parseCommand(text string) (cmd, arg string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	head, rest, _ := strings.Cut(text, " ")
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(rest)
}

// HandleCommand answers one chat message, keeping the chat's session in the
// store between messages. Messages of one chat are handled in order.
func (s *Scheduler) HandleCommand(ctx context.Context, chatID int64, text string) string {
	var reply string
	s.Sessions.Update(chatID, func(cur session.Session) session.Session {
		var next session.Session
		reply, next, _ = s.Dispatch(ctx, cur, text)
		return next
	})
	return reply
}

// Dispatch answers text for sess and returns the reply with the updated
// session. reset is true after /reset. A bare word is taken as a ticker.
func (s *Scheduler) Dispatch(ctx context.Context, sess session.Session, text string) (reply string, next session.Session, reset bool) {
	cmd, arg := parseCommand(text)
	if cmd == "" && arg != "" {
		cmd = "/ticker"
	}
	s.metrics.IncCommand(commandLabel(cmd))

	switch cmd {
	case "/start", "/help":
		return notifier.FormatHelp(sess), sess, false
	case "/reset":
		return "Selection cleared.\n\n" + notifier.FormatHelp(session.New()), session.New(), true
	case "/ticker":
		if arg == "" {
			return "Usage: /ticker SYMBOL", sess, false
		}
		sym, err := collector.NormalizeSymbol(arg)
		if err != nil {
			return errorReply(err), sess, false
		}
		sess = sess.WithTicker(sym)
		return s.renderPage(ctx, sess, ""), sess, false
	case "/glossary":
		sess = sess.Navigate(session.PageGlossary)
		return s.renderPage(ctx, sess, arg), sess, false
	default:
		page, err := session.ParsePage(strings.TrimPrefix(cmd, "/"))
		if err != nil {
			return notifier.FormatHelp(sess), sess, false
		}
		if page.NeedsTicker() && !sess.HasTicker() {
			return "Select a ticker first, e.g. /ticker AAPL", sess, false
		}
		sess = sess.Navigate(page)
		return s.renderPage(ctx, sess, arg), sess, false
	}
}

func commandLabel(cmd string) string {
	switch cmd {
	case "/start", "/help", "/reset", "/ticker", "/glossary", "/main", "/technical", "/fundamentals", "/news", "/about":
		return strings.TrimPrefix(cmd, "/")
	default:
		return "unknown"
	}
}

// renderPage builds the reply for the session's current page.
func (s *Scheduler) renderPage(ctx context.Context, sess session.Session, arg string) string {
	switch sess.Page {
	case session.PageGlossary:
		if arg == "" {
			return notifier.FormatGlossary("", glossary.All())
		}
		return notifier.FormatGlossary(arg, glossary.Search(arg))
	case session.PageAbout:
		return notifier.FormatAbout()
	case session.PageFundamentals:
		f, err := s.Collector.Fundamentals(ctx, sess.Ticker)
		if err != nil {
			return errorReply(err)
		}
		return notifier.FormatFundamentals(f)
	case session.PageNews:
		r, err := s.Collector.News(ctx, sess.Ticker, arg)
		if err != nil {
			return errorReply(err)
		}
		return notifier.FormatNews(r)
	case session.PageTechnical:
		a, err := s.Collector.Collect(ctx, sess.Ticker)
		if err != nil {
			return errorReply(err)
		}
		return notifier.FormatTechnical(a, strategy.Evaluate(a.Symbol, a.Snapshot))
	default:
		a, err := s.Collector.Collect(ctx, sess.Ticker)
		if err != nil {
			return errorReply(err)
		}
		return notifier.FormatMain(a, strategy.Evaluate(a.Symbol, a.Snapshot))
	}
}

func errorReply(err error) string {
	switch {
	case errors.Is(err, collector.ErrInvalidSymbol):
		return "❌ That does not look like a ticker symbol."
	case errors.Is(err, collector.ErrUnknownSymbol):
		return "❌ Unknown ticker."
	case errors.Is(err, collector.ErrNotSupported):
		return "❌ The data source does not provide fundamentals."
	case errors.Is(err, collector.ErrNewsUnavailable):
		return "❌ News is not configured. Set NEWS_API_KEY to enable it."
	default:
		return fmt.Sprintf("❌ Could not load data: %s", html.EscapeString(err.Error()))
	}
}
