package format

import (
	"bytes"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const defaultSubject = "(no subject)"

// Message is a plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// FromDraft builds a Message from a generated draft. A leading
// "Subject: ..." line becomes the subject and is removed from the body;
// otherwise subject is used. HTML drafts are converted to plain text.
func FromDraft(to, subject, draft string) Message {
	body := PlainText(draft)
	if s, rest, ok := SplitSubject(body); ok {
		subject = s
		body = rest
	}
	if strings.TrimSpace(subject) == "" {
		subject = defaultSubject
	}

	return Message{To: strings.TrimSpace(to), Subject: subject, Body: body}
}

// SplitSubject extracts a "Subject:" line from the start of a draft.
func SplitSubject(draft string) (subject, body string, ok bool) {
	trimmed := strings.TrimLeft(draft, " \t\r\n")
	line, rest, _ := strings.Cut(trimmed, "\n")

	key, value, found := strings.Cut(line, ":")
	if !found || !strings.EqualFold(strings.TrimSpace(key), "subject") {
		return "", draft, false
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", draft, false
	}

	return value, strings.TrimLeft(rest, "\r\n"), true
}

// RFC822 renders the message with quoted-printable UTF-8 body. Recipients
// that do not parse as an address list are left out of the To header.
func (m Message) RFC822() ([]byte, error) {
	var buf bytes.Buffer

	if addrs, err := mail.ParseAddressList(m.To); err == nil && len(addrs) > 0 {
		list := make([]string, 0, len(addrs))
		for _, a := range addrs {
			list = append(list, a.String())
		}
		fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(list, ", "))
	}

	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(strings.ReplaceAll(m.Body, "\n", "\r\n"))); err != nil {
		return nil, fmt.Errorf("qp.Write failed: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("qp.Close failed: %w", err)
	}

	return buf.Bytes(), nil
}

const maxSubjectWords = 8

// SubjectFromNote derives a subject from the first line of the notes: at
// most eight words, first letter upper-cased.
func SubjectFromNote(note string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(note), "\n")
	words := strings.Fields(line)
	if len(words) == 0 {
		return ""
	}

	suffix := ""
	if len(words) > maxSubjectWords {
		words = words[:maxSubjectWords]
		suffix = "..."
	}

	subject := strings.Join(words, " ")
	r, size := utf8.DecodeRuneInString(subject)
	return string(unicode.ToUpper(r)) + subject[size:] + suffix
}
