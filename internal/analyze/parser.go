package analyze

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Placeholder values used when a provider response omits or mangles a field.
// Output is pt-BR to match the generated content.
const (
	defaultTitle      = "Título não gerado"
	defaultDesc       = "Descrição não gerada"
	defaultSummary    = "Resumo do conteúdo do vídeo analisado"
	plainTitle        = "Título Gerado pela IA"
	plainSummaryStock = "Análise de conteúdo de vídeo com insights e discussões relevantes."
)

var defaultTags = []string{"vídeo", "análise", "conteúdo", "youtube", "entretenimento"}
var plainTextTags = []string{"vídeo", "análise", "conteúdo", "youtube", "review"}

// JSON extraction patterns, tried in order.
var (
	braceRe  = regexp.MustCompile(`(?s)\{.*\}`)
	fencedRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
)

// Cleanup patterns for text fields. Models wrap values in markdown, label
// prefixes, and stray quotes regardless of instructions.
var (
	boldRe       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe     = regexp.MustCompile(`\*([^*]+)\*`)
	codeRe       = regexp.MustCompile("`([^`]+)`")
	headerRe     = regexp.MustCompile(`#{1,6}\s*`)
	leadStarsRe  = regexp.MustCompile(`^\*{2,4}\s*["“”]?`)
	trailStarsRe = regexp.MustCompile(`["“”]?\s*\*{2,4}$`)
	leadQuoteRe  = regexp.MustCompile(`^["“”]`)
	trailQuoteRe = regexp.MustCompile(`["“”]$`)

	titleLabelRe   = regexp.MustCompile(`(?i)^(título:|title:)\s*`)
	descLabelRe    = regexp.MustCompile(`(?i)^(descrição:|description:)\s*`)
	summaryLabelRe = regexp.MustCompile(`(?i)^(resumo:|summary:)\s*`)

	dupTitleRe   = regexp.MustCompile(`\*\*Título:\*\*[^"]*"`)
	dupDescRe    = regexp.MustCompile(`\*\*Descrição:\*\*[^"]*"`)
	dupSummaryRe = regexp.MustCompile(`\*\*Resumo:\*\*[^"]*"`)

	midLabelRe      = regexp.MustCompile(`\n\*\*[^:]+:\*\*`)
	leadNewlinesRe  = regexp.MustCompile(`^\n+`)
	trailNewlinesRe = regexp.MustCompile(`\n+$`)
	multiNewlineRe  = regexp.MustCompile(`\n{3,}`)

	titleLineLabelRe = regexp.MustCompile(`(?i)título:?|title:?`)
)

// parseResponse turns a raw provider response into an Analysis, tolerating
// the usual deviations from the requested format. It never fails: when no
// JSON can be recovered, fields are scraped from the plain text.
func parseResponse(raw string) Analysis {
	if candidate := extractJSON(raw); candidate != "" {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			return normalizeParsed(parsed)
		}
	}
	return extractFromPlainText(raw)
}

// extractJSON locates a JSON object inside a response. Three strategies are
// tried in order: the widest brace-to-brace region, a fenced code block,
// and a line scan from the first line opening a brace to the first line
// closing one.
func extractJSON(response string) string {
	if m := braceRe.FindString(response); m != "" {
		return m
	}

	if m := fencedRe.FindStringSubmatch(response); m != nil {
		return m[1]
	}

	lines := strings.Split(response, "\n")
	start := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if start == -1 && strings.HasPrefix(trimmed, "{") {
			start = i
		}
		if start != -1 && strings.HasSuffix(trimmed, "}") {
			return strings.Join(lines[start:i+1], "\n")
		}
	}

	return ""
}

// normalizeParsed maps a decoded JSON object to an Analysis, accepting
// Portuguese key synonyms and substituting placeholders for missing fields.
func normalizeParsed(parsed map[string]any) Analysis {
	title := firstString(parsed, "title", "título", "titulo")
	description := firstString(parsed, "description", "descrição", "descricao")
	summary := firstString(parsed, "summary", "resumo")
	tags := stringSlice(parsed, "tags", "etiquetas")

	cleanedSummary := cleanText(summary)

	a := Analysis{
		Title:       cleanText(title),
		Description: cleanText(description),
		Summary:     cleanedSummary,
		Tags:        tags,
	}
	if a.Title == "" {
		a.Title = defaultTitle
	}
	if a.Description == "" {
		a.Description = defaultDesc
	}
	if len([]rune(cleanedSummary)) <= 10 {
		a.Summary = defaultSummary
	}
	if len(a.Tags) == 0 {
		a.Tags = append([]string(nil), defaultTags...)
	}
	return a
}

// firstString returns the first of the named keys holding a non-empty string.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// stringSlice returns the first of the named keys holding an array,
// keeping only its string elements.
func stringSlice(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		arr, ok := m[k].([]any)
		if !ok {
			continue
		}
		var out []string
		for _, v := range arr {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// cleanText strips markdown markup, label prefixes, stray quotes, and
// redundant line breaks from a generated field. Rules run in a fixed order.
func cleanText(text string) string {
	text = boldRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1")
	text = codeRe.ReplaceAllString(text, "$1")
	text = headerRe.ReplaceAllString(text, "")

	text = leadStarsRe.ReplaceAllString(text, "")
	text = trailStarsRe.ReplaceAllString(text, "")
	text = leadQuoteRe.ReplaceAllString(text, "")
	text = trailQuoteRe.ReplaceAllString(text, "")

	text = titleLabelRe.ReplaceAllString(text, "")
	text = descLabelRe.ReplaceAllString(text, "")
	text = summaryLabelRe.ReplaceAllString(text, "")

	text = dupTitleRe.ReplaceAllString(text, "")
	text = dupDescRe.ReplaceAllString(text, "")
	text = dupSummaryRe.ReplaceAllString(text, "")

	text = strings.ReplaceAll(text, `\n`, " ")
	text = midLabelRe.ReplaceAllString(text, "\n")

	text = leadNewlinesRe.ReplaceAllString(text, "")
	text = trailNewlinesRe.ReplaceAllString(text, "")
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// extractFromPlainText scrapes an Analysis out of a response with no
// recoverable JSON. The full text becomes the description; the title comes
// from the first line that looks like one.
func extractFromPlainText(text string) Analysis {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	title := plainTitle
	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "título") || strings.Contains(lower, "title") ||
			strings.Contains(line, "**") {
			if t := strings.TrimSpace(titleLineLabelRe.ReplaceAllString(line, "")); t != "" {
				title = t
			}
			break
		}
	}

	n := len(lines)
	if n > 3 {
		n = 3
	}
	firstLines := strings.Join(lines[:n], " ")
	summary := plainSummaryStock
	if len([]rune(firstLines)) > 20 {
		summary = truncateRunes(firstLines, 150) + "..."
	}

	return Analysis{
		Title:       truncateRunes(cleanText(title), 100),
		Description: truncateRunes(cleanText(text), 1000),
		Summary:     truncateRunes(cleanText(summary), 200),
		Tags:        append([]string(nil), plainTextTags...),
	}
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
