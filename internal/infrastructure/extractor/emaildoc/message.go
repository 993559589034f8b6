package emaildoc

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
)

// message is the parsed RFC 822 view the analyzer works on. Header values
// are kept raw; absent headers get the documented defaults.
type message struct {
	Sender    string
	Recipient string
	Subject   string
	Date      string
	Body      string
}

func parseMessage(raw []byte) (message, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return message{}, err
	}

	m := message{
		Sender:    headerOr(msg.Header, "From", "Unknown"),
		Recipient: headerOr(msg.Header, "To", "Unknown"),
		Subject:   headerOr(msg.Header, "Subject", "No Subject"),
		Date:      headerOr(msg.Header, "Date", "Unknown"),
	}

	m.Body = extractBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	return m, nil
}

func headerOr(h mail.Header, key, fallback string) string {
	if v := h.Get(key); v != "" {
		return v
	}
	return fallback
}

// extractBody collects every text/plain part of the message, recursing into
// nested multiparts. Undecodable content is kept raw rather than dropped.
func extractBody(contentType, transferEncoding string, body io.Reader) string {
	if contentType == "" {
		return readDecoded(body, transferEncoding)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return readDecoded(body, transferEncoding)
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		if mediaType == "" || mediaType == "text/plain" {
			return readDecoded(body, transferEncoding)
		}
		return ""
	}

	boundary := params["boundary"]
	if boundary == "" {
		return ""
	}

	var sb strings.Builder
	mr := multipart.NewReader(body, boundary)
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		partType := part.Header.Get("Content-Type")
		partEncoding := part.Header.Get("Content-Transfer-Encoding")
		if partMedia, _, err := mime.ParseMediaType(partType); err == nil && strings.HasPrefix(partMedia, "multipart/") {
			sb.WriteString(extractBody(partType, partEncoding, part))
			continue
		}
		if partType == "" || strings.HasPrefix(strings.ToLower(partType), "text/plain") {
			sb.WriteString(readDecoded(part, partEncoding))
		}
	}
	return sb.String()
}

func readDecoded(r io.Reader, transferEncoding string) string {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	}
	data, err := io.ReadAll(r)
	if err != nil && len(data) == 0 {
		return ""
	}
	return string(data)
}
