package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

// Mailer delivers transactional email. The core treats delivery as
// fire-and-forget except in registration/OTP flows, where a send error rolls
// back the freshly stored code.
type Mailer interface {
	Send(to, subject, body string) error
}

var active Mailer = logMailer{}

// Init picks the mailer from the environment. Without an API key the service
// logs instead of sending, which keeps local development working.
func Init() {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		log.Println("RESEND_API_KEY not set, email delivery disabled")
		return
	}
	from := os.Getenv("RESEND_FROM_EMAIL")
	if from == "" {
		from = "noreply@localbaba.app"
	}
	active = &ResendMailer{apiKey: apiKey, from: from, client: &http.Client{Timeout: 10 * time.Second}}
}

// SetMailer swaps the active mailer; tests use it to record or fail sends.
func SetMailer(m Mailer) { active = m }

// SendEmail delivers through the active mailer.
func SendEmail(to, subject, body string) error {
	return active.Send(to, subject, body)
}

// ResendMailer posts to the Resend REST API.
type ResendMailer struct {
	apiKey string
	from   string
	client *http.Client
}

func (r *ResendMailer) Send(to, subject, body string) error {
	payload := map[string]any{
		"from":    r.from,
		"to":      []string{to},
		"subject": subject,
		"text":    body,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.resend.com/emails", bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("resend: unexpected status %d", resp.StatusCode)
	}
	return nil
}

type logMailer struct{}

func (logMailer) Send(to, subject, _ string) error {
	log.Printf("email disabled, skipping send to=%s subject=%q", to, subject)
	return nil
}
