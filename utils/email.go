package utils

import (
	"complaint-portal/models"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// DefaultMailTimeout bounds one delivery, from dial to QUIT.
const DefaultMailTimeout = 10 * time.Second

// Mailer sends handler notifications through an SMTP relay.
type Mailer struct {
	host    string
	addr    string
	auth    smtp.Auth
	from    string
	timeout time.Duration
	send    func(ctx context.Context, to []string, msg []byte) error
}

func NewMailer(host string, port int, user, password, from string) *Mailer {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}
	if from == "" {
		from = user
	}
	m := &Mailer{
		host:    host,
		addr:    net.JoinHostPort(host, fmt.Sprint(port)),
		auth:    auth,
		from:    from,
		timeout: DefaultMailTimeout,
	}
	m.send = m.deliver
	return m
}

// deliver runs one SMTP session under a single deadline so a relay that
// accepts the connection and then stalls cannot hold the caller.
func (m *Mailer) deliver(ctx context.Context, to []string, msg []byte) error {
	deadline := time.Now().Add(m.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", m.addr)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", m.addr, err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return err
		}
	}
	if m.auth != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server doesn't support AUTH")
		}
		if err := c.Auth(m.auth); err != nil {
			return err
		}
	}
	if err := c.Mail(m.from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// ComplaintAssigned tells the handler a complaint is waiting for them. The
// message carries no complainant details.
func (m *Mailer) ComplaintAssigned(ctx context.Context, handler *models.User, c *models.Complaint) error {
	if handler == nil || handler.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.send(ctx, []string{handler.Email}, complaintAssignedMessage(m.from, handler, c))
}

func complaintAssignedMessage(from string, handler *models.User, c *models.Complaint) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", handler.Email)
	b.WriteString("Subject: New harassment complaint assigned\r\n")
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&b, "Dear %s,\r\n\r\n", handler.Name)
	b.WriteString("A new complaint has been assigned to you.\r\n\r\n")
	fmt.Fprintf(&b, "Complaint ID: %s\r\n", c.ID.Hex())
	fmt.Fprintf(&b, "Title: %s\r\n", c.Title)
	fmt.Fprintf(&b, "Incident date: %s\r\n\r\n", c.IncidentDate.Format("Mon Jan 02 2006"))
	b.WriteString("Please sign in to the portal to review it.\r\n")
	return []byte(b.String())
}
