// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email delivers activation links via SMTP.
package email

import (
	"context"
	"fmt"

	"codeberg.org/oliverandrich/account-service/internal/config"
	"github.com/wneessen/go-mail"
)

// Notifier sends an activation link to an address. Delivery is
// fire-and-forget; no confirmation is consumed.
type Notifier interface {
	SendActivation(ctx context.Context, to, link string) error
}

// Service sends mail via SMTP using go-mail.
type Service struct {
	cfg *config.SMTP
}

// NewService creates a new email service.
func NewService(cfg *config.SMTP) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{cfg: cfg}, nil
}

// SendActivation sends the activation link to the registrant.
func (s *Service) SendActivation(ctx context.Context, to, link string) error {
	subject := "Account Activation"
	body := fmt.Sprintf("Please click the following link to activate your account: %s", link)

	return s.send(ctx, to, subject, body)
}

// send sends an email via SMTP.
func (s *Service) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Use implicit TLS (SSL) for port 465, STARTTLS for others
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
