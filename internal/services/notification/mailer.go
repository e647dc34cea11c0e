package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Mailer delivers a rendered message.
type Mailer interface {
	Send(to, toName, subject, htmlBody, textBody string) error
}

type person struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type apiPayload struct {
	From     person   `json:"from"`
	To       []person `json:"to"`
	Subject  string   `json:"subject"`
	Text     string   `json:"text,omitempty"`
	HTML     string   `json:"html,omitempty"`
	Category string   `json:"category,omitempty"`
}

// HTTPMailer posts messages to a transactional email HTTP API.
type HTTPMailer struct {
	apiURL    string
	apiKey    string
	fromEmail string
	fromName  string
	client    *http.Client
}

func NewHTTPMailer(apiURL, apiKey, fromEmail, fromName string) *HTTPMailer {
	return &HTTPMailer{
		apiURL:    apiURL,
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *HTTPMailer) Send(to, toName, subject, htmlBody, textBody string) error {
	if m.apiURL == "" || m.apiKey == "" {
		return fmt.Errorf("mail provider not configured")
	}

	payload := apiPayload{
		From:     person{Email: m.fromEmail, Name: m.fromName},
		To:       []person{{Email: to, Name: toName}},
		Subject:  subject,
		HTML:     htmlBody,
		Text:     textBody,
		Category: "Transactional",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, m.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return fmt.Errorf("mail API error: %d", res.StatusCode)
	}
	return nil
}
