package client

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxDetailLen = 120

// summarizeErrorBody extracts a short human-readable reason from a non-2xx body.
// Gateways answer with HTML pages, the catalog itself with {"message": "..."}.
func summarizeErrorBody(contentType string, body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	if strings.Contains(contentType, "html") || bytes.HasPrefix(body, []byte("<")) {
		if s := summarizeHTML(body); s != "" {
			return truncate(s)
		}
	}

	var msg struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &msg); err == nil {
		if msg.Message != "" {
			return truncate(msg.Message)
		}
		if msg.Error != "" {
			return truncate(msg.Error)
		}
	}

	line, _, _ := strings.Cut(string(body), "\n")
	return truncate(strings.TrimSpace(line))
}

func summarizeHTML(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	for _, selector := range []string{"title", "h1"} {
		text := strings.Join(strings.Fields(doc.Find(selector).First().Text()), " ")
		if text != "" {
			return text
		}
	}
	return ""
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxDetailLen {
		return s
	}
	return string(r[:maxDetailLen]) + "…"
}
