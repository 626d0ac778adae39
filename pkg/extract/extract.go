// Package extract narrows free-form generated text down to the region that
// most plausibly holds a JSON document.
//
// Language models often wrap their answer in commentary or markdown code
// fences. Extract does not parse JSON; it only picks the candidate region.
package extract

import (
	"strings"

	"github.com/aretw0/plotline/pkg/domain"
)

const fenceMarker = "```"

type fence struct {
	lang string
	body string
}

// Extract returns the candidate JSON substring of raw.
//
// Preference order: the first fenced block tagged json (case-insensitive),
// then the first fenced block of any kind, then the whole trimmed text.
// An unterminated fence yields everything after its opening line.
// It fails with *domain.ExtractionError when the candidate is empty or has
// neither '{' nor '['.
func Extract(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)

	blocks := fences(raw)
	if len(blocks) > 0 {
		candidate = strings.TrimSpace(blocks[0].body)
		for _, b := range blocks {
			if b.lang == "json" {
				candidate = strings.TrimSpace(b.body)
				break
			}
		}
	}

	if candidate == "" {
		return "", &domain.ExtractionError{Reason: "no content in generated text"}
	}
	if !strings.ContainsAny(candidate, "{[") {
		return "", &domain.ExtractionError{Reason: "no JSON object or array found"}
	}
	return candidate, nil
}

// fences lists the fenced blocks of text in order of appearance.
func fences(text string) []fence {
	var out []fence
	rest := text
	for {
		open := strings.Index(rest, fenceMarker)
		if open < 0 {
			return out
		}
		after := rest[open+len(fenceMarker):]

		nl := strings.IndexByte(after, '\n')
		closeIdx := strings.Index(after, fenceMarker)

		// Single-line block: ```{"a":1}```
		if nl < 0 || (closeIdx >= 0 && closeIdx < nl) {
			body := after
			if closeIdx >= 0 {
				body = after[:closeIdx]
			}
			lang, body := splitInlineTag(body)
			out = append(out, fence{lang: lang, body: body})
			if closeIdx < 0 {
				return out
			}
			rest = after[closeIdx+len(fenceMarker):]
			continue
		}

		lang := infoLang(after[:nl])
		content := after[nl+1:]
		end := strings.Index(content, fenceMarker)
		if end < 0 {
			return append(out, fence{lang: lang, body: content})
		}
		out = append(out, fence{lang: lang, body: content[:end]})
		rest = content[end+len(fenceMarker):]
	}
}

// infoLang returns the lower-cased first word of a fence info string.
func infoLang(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

func splitInlineTag(body string) (string, string) {
	trimmed := strings.TrimLeft(body, " \t")
	if len(trimmed) >= 4 && strings.EqualFold(trimmed[:4], "json") {
		tail := trimmed[4:]
		if tail == "" || tail[0] == ' ' || tail[0] == '{' || tail[0] == '[' {
			return "json", tail
		}
	}
	return "", body
}
