// Package mail sends transactional notifications via SMTP.
package mail

import (
	"fmt"
	"log"
	"net/smtp"
	"time"

	"github.com/yonderlust/yonderlust/internal/pkg/env"
)

// SendMail delivers one HTML email through the configured SMTP relay.
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendTrialEndingSoon notifies a user that their Trailblazer trial is
// about to convert to a paid subscription.
func SendTrialEndingSoon(to, firstName string, trialEnd time.Time) error {
	if to == "" {
		return fmt.Errorf("trial reminder: recipient address missing")
	}
	name := firstName
	if name == "" {
		name = "there"
	}
	subject := "Your Trailblazer trial ends soon"
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>Your Trailblazer trial ends on %s. After that your subscription "+
			"continues on the plan you picked at signup.</p>"+
			"<p>If you'd rather not continue, you can cancel anytime from your "+
			"account's billing page.</p>"+
			"<p>Happy trails,<br>The Yonderlust Team</p>",
		name, trialEnd.Format("January 2, 2006"),
	)
	return SendMail(to, subject, body)
}
