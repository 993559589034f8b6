package pdfdoc

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vporoshin/docflow/internal/core/domain"
)

// Field extraction works on ordered fallback chains: patterns are tried in
// declared order and the first match wins.

var invoiceNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`invoice\s*(?:no|num|number|#)?\s*[:#]?\s*([\w-]+)`),
	regexp.MustCompile(`inv\s*[:#]?\s*([\w-]+)`),
	regexp.MustCompile(`invoice\s*[:#]?\s*([\w-]+)`),
}

var invoiceDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`date\s*[:#]?\s*([\d/.-]+)`),
	regexp.MustCompile(`invoice\s*date\s*[:#]?\s*([\d/.-]+)`),
}

var invoiceTotalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`total\s*due\s*[:#]?\s*[$€£]?\s*([\d,]+\.?\d*)`),
	regexp.MustCompile(`total\s*amount\s*[:#]?\s*[$€£]?\s*([\d,]+\.?\d*)`),
	regexp.MustCompile(`amount\s*due\s*[:#]?\s*[$€£]?\s*([\d,]+\.?\d*)`),
	regexp.MustCompile(`grand\s*total\s*[:#]?\s*[$€£]?\s*([\d,]+\.?\d*)`),
	regexp.MustCompile(`total\s*[:#]?\s*[$€£]?\s*([\d,]+\.?\d*)`),
}

// currencySymbols is checked in order; the first symbol present anywhere in
// the text decides the currency.
var currencySymbols = []struct {
	Symbol   string
	Currency string
}{
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
}

func extractInvoiceData(text string) domain.InvoiceData {
	lower := strings.ToLower(text)

	data := domain.InvoiceData{
		InvoiceNumber: firstMatch(invoiceNumberPatterns, lower),
		InvoiceDate:   firstMatch(invoiceDatePatterns, lower),
		Currency:      "USD",
		LineItems:     []string{},
	}

	// A matched amount that fails float parsing falls through to the next
	// pattern in the chain.
	for _, re := range invoiceTotalPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		total, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		data.Total = total
		break
	}

	for _, cs := range currencySymbols {
		if strings.Contains(text, cs.Symbol) {
			data.Currency = cs.Currency
			break
		}
	}

	return data
}

var policyNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`policy\s*(?:no|num|number|#)?\s*[:#]?\s*([\w-]+)`),
	regexp.MustCompile(`policy\s*[:#]?\s*([\w-]+)`),
}

var policyDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`effective\s*date\s*[:#]?\s*([\d/.-]+)`),
	regexp.MustCompile(`date\s*effective\s*[:#]?\s*([\d/.-]+)`),
	regexp.MustCompile(`effective\s*[:#]?\s*([\d/.-]+)`),
}

// regulationKeywords maps lower-case mentions to canonical regulation names.
// Every matching keyword is collected, so "pci dss" in the text also records
// the plain "pci" entry.
var regulationKeywords = []struct {
	Keyword  string
	FullName string
}{
	{"gdpr", "GDPR (General Data Protection Regulation)"},
	{"hipaa", "HIPAA (Health Insurance Portability and Accountability Act)"},
	{"pci dss", "PCI DSS (Payment Card Industry Data Security Standard)"},
	{"pci", "PCI (Payment Card Industry)"},
	{"sox", "SOX (Sarbanes-Oxley Act)"},
	{"fda", "FDA (Food and Drug Administration)"},
	{"iso", "ISO (International Organization for Standardization)"},
	{"ccpa", "CCPA (California Consumer Privacy Act)"},
}

var scopePattern = regexp.MustCompile(`(?s)scope\s*:?(.*?)(?:\n\n|\n\d|$)`)

func extractPolicyData(text string) domain.PolicyData {
	lower := strings.ToLower(text)

	data := domain.PolicyData{
		PolicyNumber:  firstMatch(policyNumberPatterns, lower),
		EffectiveDate: firstMatch(policyDatePatterns, lower),
		Regulations:   []string{},
		Scope:         Unknown,
	}

	for _, rk := range regulationKeywords {
		if strings.Contains(lower, rk.Keyword) {
			data.Regulations = append(data.Regulations, rk.FullName)
		}
	}
	data.HasRegulatoryMentions = len(data.Regulations) > 0

	if m := scopePattern.FindStringSubmatch(lower); m != nil {
		data.Scope = strings.TrimSpace(m[1])
	}

	return data
}

var (
	emailPattern  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern  = regexp.MustCompile(`[+(]?[1-9][0-9 \-()]{8,}[0-9]`)
	skillsPattern = regexp.MustCompile(`(?s)(?:skills|technical skills|core competencies)(?::|.{0,10})\s*(.*?)(?:\n\n|\n\w+:|\z)`)
	skillsSplit   = regexp.MustCompile(`[,•\n]`)
)

const maxSkills = 5

func extractResumeData(text string) domain.ResumeData {
	data := domain.ResumeData{
		Name:   Unknown,
		Email:  Unknown,
		Phone:  Unknown,
		Skills: []string{},
	}

	// The candidate's name is conventionally the first line.
	if lines := strings.Split(text, "\n"); len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		data.Name = strings.TrimSpace(lines[0])
	}

	if m := emailPattern.FindString(text); m != "" {
		data.Email = m
	}
	if m := phonePattern.FindString(text); m != "" {
		data.Phone = m
	}

	if m := skillsPattern.FindStringSubmatch(strings.ToLower(text)); m != nil {
		for _, skill := range skillsSplit.Split(strings.TrimSpace(m[1]), -1) {
			skill = strings.TrimSpace(skill)
			if skill == "" {
				continue
			}
			data.Skills = append(data.Skills, skill)
			if len(data.Skills) == maxSkills {
				break
			}
		}
	}

	return data
}

func firstMatch(patterns []*regexp.Regexp, lower string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			return m[1]
		}
	}
	return Unknown
}
