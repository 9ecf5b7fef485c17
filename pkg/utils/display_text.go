package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
)

var (
	emphasisRe    = regexp.MustCompile(`\*{1,3}`)
	ruleRe        = regexp.MustCompile(`(?m)^\s*[-=_]{3,}\s*$`)
	equalsRunRe   = regexp.MustCompile(`={3,}`)
	headerRe      = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
	listItemRe    = regexp.MustCompile(`(?m)^(\d+\.|[-*•])\s`)
	tableBorderRe = regexp.MustCompile(`^\|?[\s:|-]+\|?$`)
)

// CleanDisplayText strips markdown artifacts that render badly on a plain
// text surface. If cleaning leaves nothing, the original text is returned
// unmodified.
func CleanDisplayText(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	cleaned := emphasisRe.ReplaceAllString(text, "")
	cleaned = ruleRe.ReplaceAllString(cleaned, "")
	cleaned = equalsRunRe.ReplaceAllString(cleaned, "")
	cleaned = headerRe.ReplaceAllString(cleaned, "")
	cleaned = salvageTables(cleaned)
	cleaned = normalizeListSpacing(cleaned)
	cleaned = blankRunRe.ReplaceAllString(cleaned, "\n\n")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return text
	}
	return cleaned
}

// salvageTables converts pipe-delimited table rows into bullets, keeping the
// second column when a row has two or more. Border rows are dropped.
func salvageTables(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.Contains(trimmed, "|") {
			out = append(out, line)
			continue
		}
		if tableBorderRe.MatchString(trimmed) {
			continue
		}

		cells := splitTableRow(trimmed)
		switch {
		case len(cells) >= 2:
			out = append(out, "- "+cells[1])
		case len(cells) == 1:
			out = append(out, "- "+cells[0])
		}
	}
	return strings.Join(out, "\n")
}

func splitTableRow(row string) []string {
	row = strings.Trim(row, "|")
	var cells []string
	for _, cell := range strings.Split(row, "|") {
		if trimmed := strings.TrimSpace(cell); trimmed != "" {
			cells = append(cells, trimmed)
		}
	}
	return cells
}

// normalizeListSpacing guarantees a blank line before each numbered or
// bulleted item so lists do not run into the preceding paragraph.
func normalizeListSpacing(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if listItemRe.MatchString(strings.TrimSpace(line)) && i > 0 {
			prev := strings.TrimSpace(lines[i-1])
			if prev != "" && !listItemRe.MatchString(prev) {
				out = append(out, "")
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// FormatRecommendations renders structured entries as numbered blocks with
// fixed field labels.
func FormatRecommendations(recs []entities.Recommendation) string {
	if len(recs) == 0 {
		return ""
	}

	var b strings.Builder
	for i, rec := range recs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s (%s Priority)\n", i+1, rec.InterventionType, rec.Priority)
		fmt.Fprintf(&b, "   Action: %s\n", rec.Action)
		fmt.Fprintf(&b, "   Timeline: %s\n", rec.Timeline)
		fmt.Fprintf(&b, "   Goal: %s\n", rec.Goal)
	}
	return strings.TrimRight(b.String(), "\n")
}
