package notifier

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
)

const (
	twilioAPI        = "https://api.twilio.com"
	whatsAppMaxChars = 1500
)

// WhatsAppNotifier sends messages through the Twilio WhatsApp API. Long
// reports are split into 1,500 character parts sent in order.
type WhatsAppNotifier struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	From       string // "whatsapp:+14155238886"
	To         string
	Client     *http.Client
}

func NewWhatsAppNotifier(accountSID, authToken, from, to, proxyURL string) *WhatsAppNotifier {
	return &WhatsAppNotifier{
		BaseURL:    twilioAPI,
		AccountSID: accountSID,
		AuthToken:  authToken,
		From:       from,
		To:         to,
		Client:     newHTTPClient(proxyURL),
	}
}

func (w *WhatsAppNotifier) Name() string { return "whatsapp" }

func (w *WhatsAppNotifier) Send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", w.BaseURL, w.AccountSID)
	parts := chunk(text, whatsAppMaxChars)
	for i, part := range parts {
		form := url.Values{"From": {w.From}, "To": {w.To}, "Body": {part}}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth(w.AccountSID, w.AuthToken)

		resp, err := w.Client.Do(req)
		if err != nil {
			return fmt.Errorf("send part %d/%d: %w", i+1, len(parts), err)
		}
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("twilio API error on part %d/%d: status %d, body: %s", i+1, len(parts), resp.StatusCode, string(respBody))
		}
		log.Printf("[INFO] whatsapp part %d/%d sent", i+1, len(parts))
	}
	return nil
}
