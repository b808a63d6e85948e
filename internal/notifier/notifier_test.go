package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerLens/internal/glossary"
	"TickerLens/internal/metrics"
	"TickerLens/internal/model"
	"TickerLens/internal/session"
	"TickerLens/internal/strategy"
)

func newTestNotifier(url string) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "", metrics.New())
	n.APIBase = url
	n.RetryInitial = time.Millisecond
	return n
}

func TestSendTo(t *testing.T) {
	var got map[string]any
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "/botTOKEN/sendMessage", path)
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Equal(t, "<b>hi</b>", got["text"])
}

func TestSendToAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests","parameters":{"retry_after":3}}`))
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).Send(context.Background(), "x")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 429, apiErr.StatusCode)
	assert.Equal(t, "Too Many Requests", apiErr.Description)
	assert.Equal(t, 3*time.Second, apiErr.RetryAfter)
	assert.True(t, apiErr.Temporary())
}

func TestSendWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).SendWithRetry(context.Background(), "x", 3))
	assert.EqualValues(t, 3, calls.Load())
}

func TestSendWithRetryStopsOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).SendWithRetry(context.Background(), "x", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
	assert.EqualValues(t, 1, calls.Load())
}

func TestSendWithRetryHonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 1","parameters":{"retry_after":1}}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	start := time.Now()
	require.NoError(t, newTestNotifier(srv.URL).SendWithRetry(context.Background(), "x", 3))
	assert.EqualValues(t, 2, calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestSendWithRetryRetryAfterRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests","parameters":{"retry_after":60}}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := newTestNotifier(srv.URL).SendWithRetry(ctx, "x", 3)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestSplitMessageKeepsTagsBalanced(t *testing.T) {
	snap := snapshot()
	entries := make([]DigestEntry, 120)
	for i := range entries {
		sym := fmt.Sprintf("SYM%03d", i)
		entries[i] = DigestEntry{Symbol: sym, Analysis: &model.Analysis{Snapshot: snap}, Outlook: strategy.Evaluate(sym, snap)}
	}
	digest := FormatDigest(time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC), entries)
	require.Greater(t, len(digest), maxMessageLen)

	parts := splitMessage(digest, maxMessageLen)
	require.Greater(t, len(parts), 1)
	var joined []string
	for _, p := range parts {
		assert.LessOrEqual(t, textLen(p), maxMessageLen)
		assert.Equal(t, strings.Count(p, "<b>"), strings.Count(p, "</b>"), "unbalanced tags in part")
		assert.False(t, strings.HasSuffix(p, "\n"))
		joined = append(joined, p)
	}
	for _, e := range entries {
		assert.Contains(t, strings.Join(joined, "\n"), "<b>"+e.Symbol+"</b>")
	}
}

func TestSplitMessageCountsCharacters(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", maxMessageLen))

	// 3000 two-byte runes fit in one message even though they take 6000 bytes.
	accents := strings.Repeat("é", 3000)
	assert.Equal(t, []string{accents}, splitMessage(accents, maxMessageLen))

	// Emoji outside the BMP count twice.
	assert.Equal(t, 2, textLen("📈"))
	emoji := strings.Repeat("📈", 3000)
	parts := splitMessage(emoji, maxMessageLen)
	require.Len(t, parts, 2)
	assert.Equal(t, maxMessageLen, textLen(parts[0]))
	assert.Equal(t, emoji, parts[0]+parts[1])
	assert.NotContains(t, parts[0], "\uFFFD")
}

func TestSendToSplitsLongText(t *testing.T) {
	var texts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		texts = append(texts, got["text"].(string))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	line := "<b>" + strings.Repeat("x", 90) + "</b>\n"
	text := strings.Repeat(line, 100)
	require.NoError(t, newTestNotifier(srv.URL).SendWithRetry(context.Background(), text, 0))
	require.Len(t, texts, 3)
	assert.Equal(t, strings.TrimRight(text, "\n"), strings.Join(texts, "\n"))
}

func TestStartPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var served atomic.Bool
	var reply map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if served.CompareAndSwap(false, true) {
				w.Write([]byte(`{"ok":true,"result":[
					{"update_id":10,"message":{"text":" /help ","chat":{"id":777}}},
					{"update_id":11}
				]}`))
				return
			}
			w.Write([]byte(`{"ok":true,"result":[]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &reply)
			w.Write([]byte(`{"ok":true}`))
			cancel()
		}
	}))
	defer srv.Close()

	var gotChat int64
	var gotText string
	done := make(chan struct{})
	go func() {
		newTestNotifier(srv.URL).StartPolling(ctx, func(_ context.Context, chatID int64, text string) string {
			gotChat, gotText = chatID, text
			return "pong"
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
	assert.EqualValues(t, 777, gotChat)
	assert.Equal(t, "/help", gotText)
	assert.Equal(t, "777", reply["chat_id"])
	assert.Equal(t, "pong", reply["text"])
}

func snapshot() model.TechnicalSnapshot {
	return model.TechnicalSnapshot{
		CurrentPrice: 110, SMAFast: 105, SMASlow: math.NaN(), EMA: 108,
		RSI: 75, MACD: 1.2, MACDSignal: 0.8, MACDHist: 0.4,
		BBUpper: 115, BBMiddle: 105, BBLower: 95,
		StochasticK: 85, StochasticD: 80,
		High52w: 120, Low52w: 80, High30d: 112, Low30d: 98, Position52w: 0.75,
	}
}

func TestFormatTechnical(t *testing.T) {
	a := &model.Analysis{
		Symbol:    "AAPL",
		FetchedAt: time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC),
		Snapshot:  snapshot(),
		Warnings:  []string{"only 150 bars: SMA 200 <not yet defined>"},
	}
	o := strategy.Evaluate("AAPL", a.Snapshot)
	msg := FormatTechnical(a, o)

	assert.Contains(t, msg, "AAPL technical report</b> | 2024-06-28")
	assert.Contains(t, msg, "SMA slow: N/A (N/A)")
	assert.Contains(t, msg, "SMA fast: 105.00 (+4.8%)")
	assert.Contains(t, msg, "RSI: 75.00")
	assert.Contains(t, msg, o.Tier.Label)
	assert.Contains(t, msg, "overbought")
	assert.Contains(t, msg, "&lt;not yet defined&gt;")
	for _, f := range o.Factors {
		assert.Contains(t, msg, f.Name)
	}
}

func TestFormatMainAndFundamentals(t *testing.T) {
	f := &model.Fundamentals{
		Symbol:       "T&T",
		LongName:     model.String("T & T Corp"),
		CurrentPrice: model.Float(110),
		TrailingPE:   model.Float(12),
		FreeCashflow: model.Float(-1e6),
	}
	a := &model.Analysis{Symbol: "TT", Snapshot: snapshot(), Fundamentals: f}
	main := FormatMain(a, strategy.Evaluate("TT", a.Snapshot))
	assert.Contains(t, main, "T &amp; T Corp")
	assert.Contains(t, main, "position 75%")

	fund := FormatFundamentals(f)
	assert.Contains(t, fund, "Key statistics")
	assert.Contains(t, fund, "Financial Health")
	assert.Contains(t, fund, "P/E Ratio: 12.00")
	assert.Contains(t, fund, "<b>Buy</b>")
	assert.Contains(t, fund, "<b>Sell</b>")
	assert.Contains(t, fund, "<b>N/A</b>")
}

func TestFormatNews(t *testing.T) {
	r := &model.NewsReport{
		Symbol: "AAPL",
		Query:  "Apple & Co",
		Articles: []model.Article{
			{Title: "Record <profits>", URL: "https://n.example/a?x=1&y=2", Polarity: 0.52},
			{Title: "Recall widens", Polarity: -0.3},
		},
		Polarity: 0.11,
		Label:    "Positive",
	}
	msg := FormatNews(r)
	assert.Contains(t, msg, "<b>AAPL news</b> | Apple &amp; Co")
	assert.Contains(t, msg, `🟢 <a href="https://n.example/a?x=1&amp;y=2">Record &lt;profits&gt;</a> (0.52)`)
	assert.Contains(t, msg, "🔴 Recall widens (-0.30)")
	assert.Contains(t, msg, "<b>Overall sentiment:</b> Positive (0.11)")

	empty := FormatNews(&model.NewsReport{Symbol: "ZZZ", Query: "ZZZ", Label: "Neutral"})
	assert.Contains(t, empty, "No recent headlines found.")
}

func TestFormatGlossary(t *testing.T) {
	assert.Contains(t, FormatGlossary("rsi", glossary.Search("rsi")), "<b>RSI</b>")
	assert.Contains(t, FormatGlossary("zzz", nil), `No term matches "zzz"`)
}

func TestFormatHelp(t *testing.T) {
	assert.Contains(t, FormatHelp(session.New()), "No ticker selected")
	assert.Contains(t, FormatHelp(session.New().WithTicker("msft")), "Selected: <b>MSFT</b> (page main)")
}

func TestFormatDigest(t *testing.T) {
	snap := snapshot()
	entries := []DigestEntry{
		{Symbol: "AAPL", Analysis: &model.Analysis{Snapshot: snap}, Outlook: strategy.Evaluate("AAPL", snap)},
		{Symbol: "ZZZ", Err: errors.New("unknown symbol")},
	}
	msg := FormatDigest(time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC), entries)
	assert.Contains(t, msg, "2024-06-28")
	assert.Contains(t, msg, "<b>AAPL</b> 110.00 | RSI 75.00")
	assert.Contains(t, msg, "❌ ZZZ: unknown symbol")
}
