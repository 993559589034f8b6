// Package emaildoc analyzes RFC 822 email documents: type, tone, urgency,
// a templated summary, and a recommended handling action.
package emaildoc

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/vporoshin/docflow/internal/core/domain"
)

// Email types, ordered by detection priority.
const (
	TypeComplaint = "Complaint"
	TypeInquiry   = "Inquiry"
	TypeRFQ       = "RFQ"
	TypeOrder     = "Order-related"
	TypeGeneral   = "General"
)

// Tones.
const (
	ToneAngry   = "Angry"
	ToneUrgent  = "Urgent"
	TonePolite  = "Polite"
	ToneNeutral = "Neutral"
)

// Urgency levels.
const (
	UrgencyHigh   = "High"
	UrgencyMedium = "Medium"
	UrgencyLow    = "Low"
)

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(_ context.Context, _ domain.Metadata, raw []byte) (domain.Analysis, *domain.Classification, error) {
	msg, err := parseMessage(raw)
	if err != nil {
		return nil, nil, domain.WrapError(domain.ErrParseFailure, "parse email", err)
	}

	emailType := determineEmailType(msg.Subject, msg.Body)
	analysis := domain.EmailAnalysis{
		EmailType: emailType,
		Sender:    msg.Sender,
		Recipient: msg.Recipient,
		Subject:   msg.Subject,
		Date:      msg.Date,
		Tone:      analyzeTone(msg.Subject, msg.Body),
		Urgency:   determineUrgency(msg.Subject, msg.Body),
		Summary:   generateSummary(msg.Subject, msg.Body, emailType),
	}
	analysis.RecommendedAction = recommendAction(analysis.Tone, analysis.Urgency, emailType)

	return analysis, nil, nil
}

// SubjectBody returns the subject and plain-text body joined for intent
// classification over the whole message.
func SubjectBody(raw []byte) (string, error) {
	msg, err := parseMessage(raw)
	if err != nil {
		return "", domain.WrapError(domain.ErrParseFailure, "parse email", err)
	}
	return msg.Subject + "\n" + msg.Body, nil
}

var emailTypeRules = []struct {
	Type  string
	Terms []string
}{
	{TypeComplaint, []string{"complaint", "issue", "problem", "dissatisfied", "unhappy", "disappointed", "refund", "unacceptable", "terrible"}},
	{TypeInquiry, []string{"inquiry", "question", "information", "details", "help"}},
	{TypeRFQ, []string{"quote", "quotation", "rfq", "price", "pricing", "cost"}},
	{TypeOrder, []string{"order", "purchase", "shipping", "delivery", "tracking"}},
}

// determineEmailType returns the first type whose term list hits either the
// subject or the body.
func determineEmailType(subject, body string) string {
	subjectLower := strings.ToLower(subject)
	bodyLower := strings.ToLower(body)

	for _, rule := range emailTypeRules {
		for _, term := range rule.Terms {
			if strings.Contains(subjectLower, term) || strings.Contains(bodyLower, term) {
				return rule.Type
			}
		}
	}
	return TypeGeneral
}

var (
	angryTerms = []string{"angry", "furious", "outraged", "frustrated", "upset",
		"terrible", "horrible", "unacceptable", "disappointed",
		"ridiculous", "worst", "awful", "never"}
	urgentToneTerms = []string{"urgent", "immediately", "asap", "emergency", "critical",
		"right now", "promptly", "quickly", "expedite", "rush"}
	politeTerms = []string{"please", "thank", "appreciate", "grateful", "kind",
		"regards", "sincerely", "respectfully"}
)

// analyzeTone scores emotional signals. Each term counts once regardless of
// repetition; all-caps words are counted on the original-case text.
func analyzeTone(subject, body string) string {
	combined := subject + " " + body
	lower := strings.ToLower(combined)

	angryCount := presenceCount(lower, angryTerms)
	urgentCount := presenceCount(lower, urgentToneTerms)
	politeCount := presenceCount(lower, politeTerms)

	exclamations := strings.Count(lower, "!")
	capsWords := countCapsWords(combined)

	switch {
	case angryCount > 2 || exclamations > 3 || capsWords > 3:
		return ToneAngry
	case urgentCount > 2:
		return ToneUrgent
	case politeCount > 2:
		return TonePolite
	default:
		return ToneNeutral
	}
}

var (
	highUrgencyTerms = []string{"urgent", "immediately", "asap", "emergency", "critical",
		"right now", "right away"}
	mediumUrgencyTerms = []string{"soon", "timely", "attention", "priority", "follow up",
		"response needed", "please respond", "update", "need by",
		"as soon as possible"}
)

func determineUrgency(subject, body string) string {
	combined := strings.ToLower(subject + " " + body)

	highCount := presenceCount(combined, highUrgencyTerms)
	mediumCount := presenceCount(combined, mediumUrgencyTerms)
	exclamations := strings.Count(combined, "!")

	switch {
	case strings.Contains(strings.ToLower(subject), "urgent"),
		exclamations > 3,
		strings.Contains(combined, "emergency"):
		return UrgencyHigh
	case highCount >= 1:
		return UrgencyHigh
	case mediumCount >= 1 || exclamations >= 1:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

var orderNumberPattern = regexp.MustCompile(`#\d+`)

// minFirstLineLen gates the "begins with" summary form on the first body
// line being substantial.
const minFirstLineLen = 11

func generateSummary(subject, body, emailType string) string {
	trimmed := strings.TrimSpace(body)
	firstLine := ""
	if trimmed != "" {
		firstLine = strings.TrimSpace(strings.SplitN(trimmed, "\n", 2)[0])
	}

	bodyLower := strings.ToLower(body)
	typeLower := strings.ToLower(emailType)

	if len(firstLine) >= minFirstLineLen {
		summary := fmt.Sprintf("This is a %s email with subject '%s'. It begins with: %s", typeLower, subject, firstLine)
		if strings.Contains(bodyLower, "order") {
			orderNumber := orderNumberPattern.FindString(body)
			if orderNumber == "" {
				orderNumber = "unknown order number"
			}
			summary += fmt.Sprintf(" The email refers to order %s.", orderNumber)
		}
		if strings.Contains(bodyLower, "refund") {
			summary += " The sender is requesting a refund."
		}
		if strings.Contains(bodyLower, "help") {
			summary += " The sender is asking for assistance."
		}
		return summary
	}

	summary := fmt.Sprintf("This is a %s email with subject '%s'. The email is regarding ", typeLower, subject)
	switch {
	case strings.Contains(bodyLower, "order"):
		summary += "an order issue."
	case strings.Contains(bodyLower, "payment"):
		summary += "a payment concern."
	case strings.Contains(bodyLower, "inquiry") || strings.Contains(bodyLower, "question"):
		summary += "a customer inquiry."
	default:
		summary += fmt.Sprintf("a %s matter.", typeLower)
	}
	return summary
}

// Recommended actions.
const (
	ActionProcessRoutinely = "Process routinely"
	ActionEscalate         = "Escalate"
	ActionRespond24h       = "Respond within 24 hours"
	ActionLogAndReview     = "Log and review"
)

// recommendAction: order traffic is routine regardless of tone; anger, high
// urgency, and complaints escalate; questions get a response SLA.
func recommendAction(tone, urgency, emailType string) string {
	switch {
	case emailType == TypeOrder:
		return ActionProcessRoutinely
	case tone == ToneAngry || urgency == UrgencyHigh || emailType == TypeComplaint:
		return ActionEscalate
	case emailType == TypeInquiry || emailType == TypeRFQ:
		return ActionRespond24h
	default:
		return ActionLogAndReview
	}
}

func presenceCount(lower string, terms []string) int {
	count := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			count++
		}
	}
	return count
}

// countCapsWords counts whitespace-split words of more than two characters
// whose cased letters are all upper case.
func countCapsWords(text string) int {
	count := 0
	for _, word := range strings.Fields(text) {
		if len(word) <= 2 {
			continue
		}
		hasUpper := false
		allUpper := true
		for _, r := range word {
			if unicode.IsLower(r) {
				allUpper = false
				break
			}
			if unicode.IsUpper(r) {
				hasUpper = true
			}
		}
		if hasUpper && allUpper {
			count++
		}
	}
	return count
}
