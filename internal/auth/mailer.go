package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Mail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// LogMailer only logs outgoing mails, used in development.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, mail Mail) error {
	log.WithFields(log.Fields{
		"to":      mail.To,
		"subject": mail.Subject,
	}).Infof("mail not sent (log mailer):\n%s", mail.Body)
	return nil
}

// HTTPMailer posts mails as JSON to a relay service.
type HTTPMailer struct {
	relayURL   string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPMailer(relayURL, apiKey string) *HTTPMailer {
	return &HTTPMailer{
		relayURL: relayURL,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (m *HTTPMailer) Send(ctx context.Context, mail Mail) error {
	mailJson, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.relayURL, bytes.NewReader(mailJson))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		if err := resp.Body.Close(); err != nil {
			log.Errorf("mailer, close response body: %s", err)
		}
	}()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("send mail: relay responded with %d", resp.StatusCode)
	}
	return nil
}
