// Package mailer delivers rendered reports over SMTP. It runs entirely off
// the request path: a slow or failing mail transaction never stalls report
// computation, and repeated failures trip a circuit breaker instead of
// piling up connections.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/rhc-hemodyn-server/internal/config"
)

// Mailer sends plain-text reports to a recipient address.
type Mailer struct {
	logger  *logrus.Logger
	cfg     *config.MailConfig
	breaker *gobreaker.CircuitBreaker
	send    sendFunc
}

// sendFunc abstracts the SMTP send for testing.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// NewMailer creates a mailer for the given delivery configuration.
func NewMailer(logger *logrus.Logger, cfg *config.MailConfig) *Mailer {
	settings := gobreaker.Settings{
		Name:    "smtp-delivery",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Mail delivery circuit breaker state changed")
		},
	}

	return &Mailer{
		logger:  logger,
		cfg:     cfg,
		breaker: gobreaker.NewCircuitBreaker(settings),
		send:    smtp.SendMail,
	}
}

// DeliverAsync sends the report in a goroutine. Errors are logged, never
// propagated: delivery failure does not affect the computed result.
func (m *Mailer) DeliverAsync(ctx context.Context, recipient, subject, body string) {
	if !m.cfg.Enabled {
		return
	}
	go func() {
		if err := m.Deliver(ctx, recipient, subject, body); err != nil {
			m.logger.WithError(err).WithField("recipient", recipient).Error("Report delivery failed")
		}
	}()
}

// Deliver sends one report synchronously through the circuit breaker.
func (m *Mailer) Deliver(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delivery aborted: %w", err)
	}

	_, err := m.breaker.Execute(func() (interface{}, error) {
		return nil, m.sendMail(recipient, subject, body)
	})
	if err != nil {
		return fmt.Errorf("smtp delivery to %s: %w", recipient, err)
	}

	m.logger.WithField("recipient", recipient).Info("Report delivered")
	return nil
}

// sendMail performs the SMTP transaction.
func (m *Mailer) sendMail(recipient, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.cfg.From, recipient, subject, body)

	return m.send(addr, auth, m.cfg.From, []string{recipient}, []byte(msg))
}
