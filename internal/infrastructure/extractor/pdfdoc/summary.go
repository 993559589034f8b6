package pdfdoc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vporoshin/docflow/internal/core/domain"
)

var titlePattern = regexp.MustCompile(`^([^\n.]+)`)

const maxTitleLen = 50

func invoiceSummary(text string, data domain.InvoiceData) string {
	words := wordCount(text)
	if data.InvoiceNumber != Unknown && data.Total > 0 {
		return fmt.Sprintf("This is an invoice (%s) with a total amount of %s %.2f, containing %d words.",
			data.InvoiceNumber, data.Currency, data.Total, words)
	}
	return fmt.Sprintf("This is an invoice document with %d words.", words)
}

func policySummary(text string, data domain.PolicyData) string {
	words := wordCount(text)
	if data.PolicyNumber != Unknown && len(data.Regulations) > 0 {
		short := make([]string, len(data.Regulations))
		for i, reg := range data.Regulations {
			short[i], _, _ = strings.Cut(reg, " (")
		}
		return fmt.Sprintf("This is a policy document (%s) referencing %s, containing %d words.",
			data.PolicyNumber, strings.Join(short, ", "), words)
	}
	return fmt.Sprintf("This is a policy document with %d words.", words)
}

func resumeSummary(text string, data domain.ResumeData) string {
	words := wordCount(text)
	if data.Name != Unknown && len(data.Skills) > 0 {
		top := data.Skills
		if len(top) > 3 {
			top = top[:3]
		}
		return fmt.Sprintf("This is a resume for %s with skills including %s, containing %d words.",
			data.Name, strings.Join(top, ", "), words)
	}
	return fmt.Sprintf("This is a resume document with %d words.", words)
}

func genericSummary(text, docType string) string {
	words := wordCount(text)
	if docType == TypeReport {
		title := "report"
		if m := titlePattern.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
			title = m[1]
		}
		// Truncate on runes so a multibyte title never splits mid-character.
		if runes := []rune(title); len(runes) > maxTitleLen {
			title = string(runes[:maxTitleLen-3]) + "..."
		}
		return fmt.Sprintf("This is a %s about %s, containing %d words.",
			strings.ToLower(docType), strings.ToLower(title), words)
	}
	return fmt.Sprintf("This is a %s with %d words.", strings.ToLower(docType), words)
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
