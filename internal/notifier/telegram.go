package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"TickerLens/internal/logger"
	"TickerLens/internal/metrics"
)

// DefaultAPIBase is the Telegram Bot API endpoint.
const DefaultAPIBase = "https://api.telegram.org"

// maxMessageLen is the Telegram limit for one message.
const maxMessageLen = 4096

// APIError is a non-OK reply from the Bot API.
type APIError struct {
	StatusCode  int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error: status %d: %s", e.StatusCode, e.Description)
}

// Temporary reports whether resending may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIBase  string
	Client   *http.Client

	// RetryInitial is the first backoff interval of SendWithRetry.
	RetryInitial time.Duration

	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string, m *metrics.Metrics) *TelegramNotifier {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		APIBase:  DefaultAPIBase,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		RetryInitial: time.Second,
		metrics:      m,
		logger:       logger.Component("telegram"),
	}
}

func (t *TelegramNotifier) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.APIBase, t.BotToken, method)
}

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	return t.SendTo(ctx, t.ChatID, text)
}

// SendTo sends HTML text to chatID. Text longer than Telegram allows goes out
// as several messages split on line boundaries.
func (t *TelegramNotifier) SendTo(ctx context.Context, chatID, text string) error {
	for _, part := range splitMessage(text, maxMessageLen) {
		if err := t.sendMessage(ctx, chatID, part); err != nil {
			return err
		}
	}
	return nil
}

func (t *TelegramNotifier) sendMessage(ctx context.Context, chatID, text string) error {
	payload := map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.methodURL("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !gjson.GetBytes(respBody, "ok").Bool() {
		return parseAPIError(resp.StatusCode, respBody)
	}
	return nil
}

func parseAPIError(status int, body []byte) *APIError {
	res := gjson.ParseBytes(body)
	apiErr := &APIError{StatusCode: status, Description: res.Get("description").String()}
	if code := res.Get("error_code"); code.Exists() {
		apiErr.StatusCode = int(code.Int())
	}
	if apiErr.Description == "" {
		apiErr.Description = string(body)
	}
	if ra := res.Get("parameters.retry_after"); ra.Exists() {
		apiErr.RetryAfter = time.Duration(ra.Int()) * time.Second
	}
	return apiErr
}

// retryAfterBackOff waits at least as long as the last 429 reply asked.
type retryAfterBackOff struct {
	backoff.BackOff
	floor time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	next = max(next, b.floor)
	b.floor = 0
	return next
}

// SendWithRetry sends a message to the configured chat with exponential
// backoff retry. Client errors other than 429 are not retried, and a 429 is
// retried no sooner than its retry_after. A long message is split and each
// part is retried on its own, so parts already delivered are not resent.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	for _, part := range splitMessage(text, maxMessageLen) {
		if attempts, err := t.sendPartWithRetry(ctx, part, maxRetries); err != nil {
			t.metrics.IncTelegram(err)
			return fmt.Errorf("telegram send failed after %d attempt(s): %w", attempts, err)
		}
	}
	t.metrics.IncTelegram(nil)
	return nil
}

func (t *TelegramNotifier) sendPartWithRetry(ctx context.Context, text string, maxRetries int) (int, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = t.RetryInitial
	exp.MaxElapsedTime = 0
	b := &retryAfterBackOff{BackOff: exp}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(maxRetries, 0))), ctx)

	attempt := 0
	operation := func() error {
		attempt++
		err := t.sendMessage(ctx, t.ChatID, text)
		if err == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if !apiErr.Temporary() {
				return backoff.Permanent(err)
			}
			b.floor = apiErr.RetryAfter
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		t.logger.Warn().Err(err).Int("attempt", attempt).Int("max", maxRetries+1).Dur("wait", wait).Msg("Telegram send failed, retrying")
	}
	err := backoff.RetryNotify(operation, policy, notify)
	return attempt, err
}

// splitMessage cuts text into parts of at most limit characters, as Telegram
// counts them (UTF-16 code units). Cuts fall between lines so HTML tags,
// which never span lines in our messages, stay balanced. Only a single line
// longer than limit is cut mid-line.
func splitMessage(text string, limit int) []string {
	if textLen(text) <= limit {
		return []string{text}
	}
	var parts []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if part := strings.TrimRight(cur.String(), "\n"); strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
		cur.Reset()
		curLen = 0
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		n := textLen(line)
		if curLen+n > limit {
			flush()
		}
		for n > limit {
			head, rest := cutAt(line, limit)
			cur.WriteString(head)
			flush()
			line, n = rest, textLen(rest)
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()
	return parts
}

// textLen is the length of s in UTF-16 code units.
func textLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// cutAt splits s after at most limit UTF-16 code units, never inside a rune.
func cutAt(s string, limit int) (string, string) {
	n := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if n+w > limit && i > 0 {
			return s[:i], s[i:]
		}
		n += w
	}
	return s, ""
}
