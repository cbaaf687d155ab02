package linkedinmail

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
)

const maxPartBytes = 6 << 20

// extractHTML digs the text/html part out of a raw RFC822 message. Alert
// digests are multipart/alternative; the HTML part is the only one with
// usable structure.
func extractHTML(raw []byte) (string, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("read message: %w", err)
	}

	body, err := io.ReadAll(io.LimitReader(msg.Body, maxPartBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	html := htmlPart(msg.Header, body)
	if html == "" {
		return "", errors.New("no text/html part")
	}
	return html, nil
}

func htmlPart(h mail.Header, body []byte) string {
	cte := strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding")))
	mediaType, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		return ""
	}
	mediaType = strings.ToLower(mediaType)

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return ""
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)

		var best string
		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			b, _ := io.ReadAll(io.LimitReader(p, maxPartBytes))
			b = decodeTransferEncoding(b, strings.ToLower(strings.TrimSpace(p.Header.Get("Content-Transfer-Encoding"))))

			pMedia, _, _ := mime.ParseMediaType(p.Header.Get("Content-Type"))
			pMedia = strings.ToLower(pMedia)

			var candidate string
			switch {
			case strings.HasPrefix(pMedia, "multipart/"):
				candidate = htmlPart(mail.Header(p.Header), b)
			case strings.HasPrefix(pMedia, "text/html"):
				candidate = string(b)
			}
			if len(candidate) > len(best) {
				best = candidate
			}
		}
		return best
	}

	if strings.HasPrefix(mediaType, "text/html") {
		return string(decodeTransferEncoding(body, cte))
	}
	return ""
}

func decodeTransferEncoding(b []byte, cte string) []byte {
	switch cte {
	case "base64":
		dec := base64.NewDecoder(base64.StdEncoding, bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, maxPartBytes))
		return out
	case "quoted-printable":
		dec := quotedprintable.NewReader(bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, maxPartBytes))
		return out
	default:
		return b
	}
}
