package gmail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"
)

// MaxAttachmentSize defines the maximum attachment size in bytes (25MB),
// matching the Gmail limit.
const MaxAttachmentSize = 25 * 1024 * 1024

// encodeRFC2047 encodes a string for use in email headers according to
// RFC 2047. Necessary for non-ASCII characters (like umlauts) in subjects.
func encodeRFC2047(s string) string {
	needsEncoding := false
	for _, r := range s {
		if r > 127 {
			needsEncoding = true
			break
		}
	}
	if !needsEncoding {
		return s
	}
	return mime.BEncoding.Encode("UTF-8", s)
}

// decodeRFC2047 decodes an RFC 2047 encoded header value, returning the
// input unchanged when decoding fails.
func decodeRFC2047(s string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}

// LoadAttachment reads a file from disk into an Attachment, guessing the
// content type from the extension.
func LoadAttachment(path string) (Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("attachment file not found at path %s: %w", path, err)
	}
	if int64(len(data)) > MaxAttachmentSize {
		return Attachment{}, fmt.Errorf("attachment %s exceeds maximum size of %d bytes", path, MaxAttachmentSize)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return Attachment{
		Filename: filepath.Base(path),
		MimeType: mimeType,
		Data:     data,
	}, nil
}

// BuildMessage encodes an EmailMessage as a base64url RFC 2822 message ready
// for the Gmail API's raw field. Plain and HTML bodies become a
// multipart/alternative; attachments wrap everything in multipart/mixed.
func BuildMessage(m *EmailMessage) (string, error) {
	if m.To == "" {
		return "", fmt.Errorf("at least one recipient is required")
	}

	var buf bytes.Buffer
	writeHeader(&buf, "To", m.To)
	if m.Cc != "" {
		writeHeader(&buf, "Cc", m.Cc)
	}
	if m.Bcc != "" {
		writeHeader(&buf, "Bcc", m.Bcc)
	}
	if m.From != "" {
		writeHeader(&buf, "From", m.From)
	}
	writeHeader(&buf, "Subject", encodeRFC2047(m.Subject))

	switch strings.ToLower(m.Importance) {
	case "high":
		writeHeader(&buf, "Importance", "high")
		writeHeader(&buf, "X-Priority", "1")
	case "low":
		writeHeader(&buf, "Importance", "low")
		writeHeader(&buf, "X-Priority", "5")
	}

	writeHeader(&buf, "MIME-Version", "1.0")

	switch {
	case len(m.Attachments) > 0:
		if err := writeMixed(&buf, m); err != nil {
			return "", err
		}
	case m.HTMLBody != "":
		if err := writeAlternative(&buf, m.Body, m.HTMLBody); err != nil {
			return "", err
		}
	default:
		writeHeader(&buf, "Content-Type", `text/plain; charset="UTF-8"`)
		buf.WriteString("\r\n")
		buf.WriteString(m.Body)
	}

	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}

func writeHeader(buf *bytes.Buffer, name, value string) {
	buf.WriteString(name)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}

// writeAlternative writes a multipart/alternative body with plain text and
// HTML parts. The Content-Type header and the trailing blank line are
// emitted here.
func writeAlternative(buf *bytes.Buffer, plain, html string) error {
	w := multipart.NewWriter(buf)
	writeHeader(buf, "Content-Type", fmt.Sprintf(`multipart/alternative; boundary=%q`, w.Boundary()))
	buf.WriteString("\r\n")

	if err := writeTextPart(w, "text/plain", plain); err != nil {
		return err
	}
	if err := writeTextPart(w, "text/html", html); err != nil {
		return err
	}
	return w.Close()
}

// writeMixed writes a multipart/mixed body: the message body (plain or
// alternative) followed by one base64 part per attachment.
func writeMixed(buf *bytes.Buffer, m *EmailMessage) error {
	w := multipart.NewWriter(buf)
	writeHeader(buf, "Content-Type", fmt.Sprintf(`multipart/mixed; boundary=%q`, w.Boundary()))
	buf.WriteString("\r\n")

	if m.HTMLBody != "" {
		// Nested alternative part carrying both body renditions.
		var alt bytes.Buffer
		altWriter := multipart.NewWriter(&alt)
		if err := writeTextPart(altWriter, "text/plain", m.Body); err != nil {
			return err
		}
		if err := writeTextPart(altWriter, "text/html", m.HTMLBody); err != nil {
			return err
		}
		if err := altWriter.Close(); err != nil {
			return err
		}

		part, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type": {fmt.Sprintf(`multipart/alternative; boundary=%q`, altWriter.Boundary())},
		})
		if err != nil {
			return err
		}
		if _, err := part.Write(alt.Bytes()); err != nil {
			return err
		}
	} else {
		if err := writeTextPart(w, "text/plain", m.Body); err != nil {
			return err
		}
	}

	for _, att := range m.Attachments {
		if err := writeAttachmentPart(w, att); err != nil {
			return err
		}
	}
	return w.Close()
}

func writeTextPart(w *multipart.Writer, mimeType, body string) error {
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {mimeType + `; charset="UTF-8"`},
	})
	if err != nil {
		return err
	}
	_, err = part.Write([]byte(body))
	return err
}

func writeAttachmentPart(w *multipart.Writer, att Attachment) error {
	mimeType := att.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {fmt.Sprintf(`%s; name=%q`, mimeType, att.Filename)},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf(`attachment; filename=%q`, att.Filename)},
	})
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(att.Data)
	// Wrap base64 lines at 76 characters per RFC 2045.
	for len(encoded) > 76 {
		if _, err := part.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err = part.Write([]byte(encoded))
	return err
}

// HeaderValue returns the value of the named header from a message payload,
// matching case-insensitively. Empty string when absent.
func HeaderValue(msg *gmail.Message, name string) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// formatDate normalizes an email Date header to "2006-01-02 15:04". The
// original string is returned when it cannot be parsed.
func formatDate(date string) string {
	for _, layout := range []string{
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("2006-01-02 15:04")
		}
	}
	return date
}

// Summarize shapes a full message into the list-style view used by search
// and summary tools.
func Summarize(msg *gmail.Message) MessageSummary {
	summary := MessageSummary{
		ID:      msg.Id,
		Subject: decodeRFC2047(HeaderValue(msg, "Subject")),
		From:    HeaderValue(msg, "From"),
		To:      HeaderValue(msg, "To"),
		Cc:      HeaderValue(msg, "Cc"),
		Date:    formatDate(HeaderValue(msg, "Date")),
		Labels:  msg.LabelIds,
		Snippet: msg.Snippet,
	}
	if summary.Subject == "" {
		summary.Subject = "No Subject"
	}
	if summary.From == "" {
		summary.From = "Unknown Sender"
	}
	if summary.Date == "" {
		summary.Date = "Unknown Date"
	}

	if msg.Payload != nil {
		walkParts(msg.Payload, func(part *gmail.MessagePart) {
			if part.Filename != "" {
				summary.HasAttachments = true
			}
		})
	}
	return summary
}

// SenderName extracts the display-name portion of a From header, falling
// back to the whole value.
func SenderName(from string) string {
	re := regexp.MustCompile(`"?([^"<]+)"?\s*(?:<[^>]+>)?`)
	if m := re.FindStringSubmatch(from); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name
		}
	}
	return from
}

// ExtractBodies walks a message's MIME tree and returns both body
// renditions plus attachment metadata. The HTML rendition is returned raw so
// callers rebuilding the message keep it intact; either string is empty when
// the message carries no part of that type.
func ExtractBodies(msg *gmail.Message) (plain, html string, attachments []AttachmentInfo) {
	var plainParts, htmlParts []string

	if msg != nil && msg.Payload != nil {
		walkParts(msg.Payload, func(part *gmail.MessagePart) {
			if part.Filename != "" {
				size := int64(0)
				if part.Body != nil {
					size = part.Body.Size
				}
				attachments = append(attachments, AttachmentInfo{
					Filename: part.Filename,
					MimeType: part.MimeType,
					Size:     humanSize(size),
				})
				return
			}
			if part.Body == nil || part.Body.Data == "" {
				return
			}
			data, err := decodeBase64(part.Body.Data)
			if err != nil {
				return
			}
			switch part.MimeType {
			case "text/plain":
				plainParts = append(plainParts, string(data))
			case "text/html":
				htmlParts = append(htmlParts, string(data))
			}
		})
	}

	return strings.Join(plainParts, "\n"), strings.Join(htmlParts, "\n"), attachments
}

// ExtractBody returns the preferred body text plus attachment metadata.
// Plain text parts win; HTML parts are tag-stripped as a fallback.
func ExtractBody(msg *gmail.Message) (string, []AttachmentInfo) {
	plain, html, attachments := ExtractBodies(msg)
	switch {
	case plain != "":
		return plain, attachments
	case html != "":
		return htmlToText(html), attachments
	default:
		return "Unable to extract email body content. The email might be empty or contain only non-text attachments.", attachments
	}
}

// walkParts recursively visits a MIME part and all its descendants.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, sub := range part.Parts {
		walkParts(sub, fn)
	}
}

// decodeBase64 decodes Gmail body data, which is base64url per RFC 4648,
// often without padding, and occasionally standard base64.
func decodeBase64(data string) ([]byte, error) {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(data)
}

var (
	htmlBreakRe  = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h\d)>`)
	htmlTagRe    = regexp.MustCompile(`<.*?>`)
	htmlEntities = strings.NewReplacer("&nbsp;", " ", "&lt;", "<", "&gt;", ">", "&amp;", "&")
)

// htmlToText performs a very simple HTML to text conversion: block-level
// closers become newlines, remaining tags are stripped, common entities are
// unescaped.
func htmlToText(s string) string {
	s = htmlBreakRe.ReplaceAllString(s, "\n")
	s = htmlTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(htmlEntities.Replace(s))
}

// humanSize renders a byte count for display.
func humanSize(size int64) string {
	switch {
	case size >= 1024*1024*1024:
		return fmt.Sprintf("%.2f GB", float64(size)/(1024*1024*1024))
	case size >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	case size >= 1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
