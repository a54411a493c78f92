package notifier

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// Notifier delivers a rendered report to one channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// SendWithRetry sends text with exponential backoff retry.
func SendWithRetry(ctx context.Context, n Notifier, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := n.Send(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := time.Duration(1<<uint(i)) * time.Second
		log.Printf("[WARN] %s send failed (attempt %d/%d): %v, retrying in %v", n.Name(), i+1, maxRetries+1, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("%s: all %d attempts failed: %w", n.Name(), maxRetries+1, lastErr)
}

// Multi fans a message out to several notifiers. Every notifier is tried;
// the first error is returned.
type Multi []Notifier

func (m Multi) Name() string {
	names := make([]string, len(m))
	for i, n := range m {
		names[i] = n.Name()
	}
	return strings.Join(names, "+")
}

func (m Multi) Send(ctx context.Context, text string) error {
	var first error
	for _, n := range m {
		if err := n.Send(ctx, text); err != nil {
			log.Printf("[ERROR] %s: %v", n.Name(), err)
			if first == nil {
				first = fmt.Errorf("%s: %w", n.Name(), err)
			}
		}
	}
	return first
}

// LogNotifier prints reports to the log. It is used when no channel is
// configured.
type LogNotifier struct{}

func (LogNotifier) Name() string { return "log" }

func (LogNotifier) Send(_ context.Context, text string) error {
	log.Printf("[INFO] report:\n%s", text)
	return nil
}

// chunk splits text into pieces of at most size bytes, cutting at the last
// newline when one falls in the second half of a piece, and never inside a
// UTF-8 sequence.
func chunk(text string, size int) []string {
	if size <= 0 || len(text) <= size {
		return []string{text}
	}
	var out []string
	for len(text) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = size
		}
		if nl := strings.LastIndexByte(text[:cut], '\n'); nl >= size/2 {
			cut = nl + 1
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// newHTTPClient returns a client with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
