// Package notification renders named email templates and dispatches them.
// Dispatch is fire-and-forget relative to the request: failures are logged,
// never returned to the caller.
package notification

import (
	"bytes"
	"fmt"

	"github.com/rs/zerolog"
)

// Message is a templated email to one recipient.
type Message struct {
	To       string
	ToName   string
	Subject  string
	Template string
	Data     map[string]interface{}
}

type Service interface {
	// Send renders and delivers synchronously.
	Send(msg Message) error
	// Dispatch delivers in the background; errors only log.
	Dispatch(msg Message)
}

type service struct {
	mailer Mailer
	log    zerolog.Logger
}

func NewService(mailer Mailer, log zerolog.Logger) Service {
	if mailer == nil {
		panic("mailer is required")
	}
	return &service{
		mailer: mailer,
		log:    log.With().Str("component", "notification").Logger(),
	}
}

func (s *service) Send(msg Message) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, msg.Template, msg.Data); err != nil {
		return fmt.Errorf("render template %q: %w", msg.Template, err)
	}
	return s.mailer.Send(msg.To, msg.ToName, msg.Subject, buf.String(), "")
}

func (s *service) Dispatch(msg Message) {
	go func() {
		if err := s.Send(msg); err != nil {
			s.log.Error().Err(err).
				Str("template", msg.Template).
				Str("to", msg.To).
				Msg("email dispatch failed")
		}
	}()
}
