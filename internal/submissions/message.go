package submissions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-site/internal/mail"
)

func leadMessage(l *Lead) mail.Message {
	subject := "New lead: " + l.Name
	if l.Company != "" {
		subject += " (" + l.Company + ")"
	}
	return mail.Message{
		Subject: subject,
		ReplyTo: l.Email,
		Body: body(
			"Name", l.Name,
			"Email", l.Email,
			"Company", l.Company,
			"Phone", l.Phone,
			"Interest", l.Interest,
			"Reference", l.Reference,
			"Source", l.Source,
			"Message", l.Message,
		),
	}
}

func contactMessage(c *Contact) mail.Message {
	subject := "Contact request from " + c.Name
	if c.Subject != "" {
		subject = "Contact: " + c.Subject
	}
	return mail.Message{
		Subject: subject,
		ReplyTo: c.Email,
		Body:    body("Name", c.Name, "Email", c.Email, "Message", c.Message),
	}
}

func careerMessage(a *CareerApplication) mail.Message {
	pairs := []string{
		"Name", a.Name,
		"Email", a.Email,
		"Position", a.Position,
		"Resume", a.ResumeURL,
		"LinkedIn", a.LinkedInURL,
	}
	keys := make([]string, 0, len(a.Answers))
	for key := range a.Answers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		pairs = append(pairs, key, fmt.Sprint(a.Answers[key]))
	}
	pairs = append(pairs, "Cover letter", a.CoverLetter)
	return mail.Message{
		Subject: fmt.Sprintf("Application: %s for %s", a.Name, a.Position),
		ReplyTo: a.Email,
		Body:    body(pairs...),
	}
}

// body renders label/value pairs, skipping empty values.
func body(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", pairs[i], pairs[i+1])
	}
	return b.String()
}
