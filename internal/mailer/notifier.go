// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/aljanabi/partycms/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Notifier renders the applicant notification templates and hands them to a
// Sender. It is the only component that emails applicants.
type Notifier struct {
	sender Sender
	tmpl   *template.Template
}

// NewNotifier parses the embedded templates. Template errors are programmer
// errors, so this panics rather than returning one.
func NewNotifier(sender Sender) *Notifier {
	return &Notifier{
		sender: sender,
		tmpl:   template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// notifyData is the template payload for all three messages.
type notifyData struct {
	FullName string
	Notes    string
}

// SendConfirmation acknowledges receipt of a membership application.
func (n *Notifier) SendConfirmation(ctx context.Context, to, fullName string) error {
	return n.send(ctx, to, "confirmation.html",
		"We received your membership application",
		notifyData{FullName: fullName})
}

// SendDecision notifies the applicant of an approval or rejection. Statuses
// other than approved/rejected send nothing.
func (n *Notifier) SendDecision(ctx context.Context, to, fullName, status, notes string) error {
	switch status {
	case model.StatusApproved:
		return n.send(ctx, to, "approved.html",
			"Your membership application was approved",
			notifyData{FullName: fullName, Notes: notes})
	case model.StatusRejected:
		return n.send(ctx, to, "rejected.html",
			"Update on your membership application",
			notifyData{FullName: fullName, Notes: notes})
	default:
		return nil
	}
}

func (n *Notifier) send(ctx context.Context, to, templateName, subject string, data notifyData) error {
	var buf bytes.Buffer
	if err := n.tmpl.ExecuteTemplate(&buf, templateName, data); err != nil {
		return fmt.Errorf("rendering %s: %w", templateName, err)
	}
	return n.sender.Send(ctx, to, subject, buf.String())
}
