package jsondoc

import (
	"regexp"
	"strings"
)

// intentInfo is the outcome of content-based intent detection: the business
// intent, a confidence, and the JSON document sub-type.
type intentInfo struct {
	Intent       string
	Confidence   float64
	DocumentType string
}

// determineDocumentIntent scores a parsed document against structural
// indicator sets, checked in priority order: schema, configuration, data
// structure, then marker keys for specific business records.
func determineDocumentIntent(data any, filename string) intentInfo {
	obj, ok := data.(map[string]any)
	if !ok || len(obj) == 0 {
		return intentInfo{Intent: "Unknown", Confidence: 0.2, DocumentType: "Generic JSON"}
	}

	filenameLower := strings.ToLower(filename)

	schemaScore := countTrue(
		hasKey(obj, "$schema"),
		isObjectValue(obj, "properties"),
		obj["type"] == "object",
		isArrayValue(obj, "required"),
		hasKey(obj, "definitions"),
		strings.Contains(filenameLower, "schema"),
	)
	if confidence := float64(schemaScore) * 0.15; confidence >= 0.3 {
		return intentInfo{Intent: "Schema Definition", Confidence: capAt(confidence, 0.9), DocumentType: "Schema Definition"}
	}

	configScore := countTrue(
		strings.Contains(filenameLower, "config"),
		strings.Contains(filenameLower, "settings"),
		hasKey(obj, "environment"),
		hasKey(obj, "config"),
		hasKey(obj, "settings"),
		hasKey(obj, "configuration"),
		hasKey(obj, "database"),
		hasKey(obj, "server"),
		hasKey(obj, "host"),
		hasKey(obj, "port"),
		hasKey(obj, "api") && hasKey(obj, "key"),
		hasKey(obj, "features"),
	)
	if confidence := float64(configScore) * 0.1; confidence >= 0.2 {
		return intentInfo{Intent: "Configuration", Confidence: capAt(confidence, 0.85), DocumentType: "Configuration"}
	}

	dataScore := countTrue(
		strings.Contains(filenameLower, "data"),
		isNonEmptyArrayValue(obj, "items"),
		hasKey(obj, "records"),
		hasKey(obj, "results"),
		hasKey(obj, "list"),
		hasNonEmptyArray(obj),
	)
	if confidence := float64(dataScore) * 0.15; confidence >= 0.3 {
		return intentInfo{Intent: "Data Structure", Confidence: capAt(confidence, 0.85), DocumentType: "Data Structure"}
	}

	switch {
	case hasKey(obj, "purchase_order") || hasKey(obj, "order_id"):
		return intentInfo{Intent: "Order Processing", Confidence: 0.8, DocumentType: "Order"}
	case hasKey(obj, "complaint") || hasKey(obj, "ticket_id"):
		return intentInfo{Intent: "Customer Service", Confidence: 0.8, DocumentType: "Complaint"}
	case hasKey(obj, "transaction_id"):
		return intentInfo{Intent: "Financial Processing", Confidence: 0.8, DocumentType: "Transaction"}
	}

	return intentInfo{Intent: "Data Exchange", Confidence: 0.4, DocumentType: "Generic JSON"}
}

var commentPattern = regexp.MustCompile(`(?s)//.*?(?:\n|$)|/\*.*?\*/`)

// inferFromRawContent guesses intent from the text of a document that failed
// to parse. Line and block comments are stripped first since they are a
// common cause of invalid JSON.
func inferFromRawContent(rawContent, filename string) intentInfo {
	content := commentPattern.ReplaceAllString(rawContent, "")
	lower := strings.ToLower(content)
	filenameLower := strings.ToLower(filename)

	configScore := countTrue(
		strings.Contains(lower, "environment"),
		strings.Contains(lower, "config") || strings.Contains(lower, "configuration"),
		strings.Contains(lower, "settings"),
		strings.Contains(lower, "database"),
		strings.Contains(lower, "host") && strings.Contains(lower, "port"),
		strings.Contains(lower, "features"),
		strings.Contains(lower, "api") && strings.Contains(lower, "key"),
		strings.Contains(lower, "development") || strings.Contains(lower, "production") || strings.Contains(lower, "staging"),
		strings.Contains(filenameLower, "config"),
		strings.Contains(filenameLower, "settings"),
	)

	schemaScore := countTrue(
		strings.Contains(content, "$schema"),
		strings.Contains(lower, "properties") && strings.Contains(content, "{"),
		strings.Contains(lower, "required") && strings.Contains(content, "["),
		strings.Contains(lower, "type") && strings.Contains(lower, "object"),
		strings.Contains(lower, "definitions"),
		strings.Contains(filenameLower, "schema"),
	)

	dataScore := countTrue(
		strings.Contains(lower, "items") && strings.Contains(content, "["),
		strings.Contains(lower, "data"),
		strings.Contains(lower, "records"),
		strings.Contains(lower, "results"),
		strings.Contains(lower, "list") && strings.Contains(content, "["),
		strings.Contains(filenameLower, "data"),
	)

	switch {
	case configScore >= 3:
		return intentInfo{Intent: "Configuration", Confidence: capAt(0.2+float64(configScore)*0.1, 0.7), DocumentType: "Configuration"}
	case schemaScore >= 2:
		return intentInfo{Intent: "Schema Definition", Confidence: capAt(0.2+float64(schemaScore)*0.1, 0.7), DocumentType: "Schema Definition"}
	case dataScore >= 2:
		return intentInfo{Intent: "Data Structure", Confidence: capAt(0.2+float64(dataScore)*0.1, 0.7), DocumentType: "Data Structure"}
	}

	if strings.Contains(filenameLower, "error") || strings.Contains(lower, "error") {
		return intentInfo{Intent: "Error Report", Confidence: 0.3, DocumentType: "Error Report"}
	}

	return intentInfo{Intent: "Unknown JSON", Confidence: 0.2, DocumentType: "Generic JSON"}
}

func hasKey(obj map[string]any, key string) bool {
	_, ok := obj[key]
	return ok
}

func isObjectValue(obj map[string]any, key string) bool {
	_, ok := obj[key].(map[string]any)
	return ok
}

func isArrayValue(obj map[string]any, key string) bool {
	_, ok := obj[key].([]any)
	return ok
}

func isNonEmptyArrayValue(obj map[string]any, key string) bool {
	arr, ok := obj[key].([]any)
	return ok && len(arr) > 0
}

func hasNonEmptyArray(obj map[string]any) bool {
	for _, v := range obj {
		if arr, ok := v.([]any); ok && len(arr) > 0 {
			return true
		}
	}
	return false
}

func countTrue(flags ...bool) int {
	count := 0
	for _, f := range flags {
		if f {
			count++
		}
	}
	return count
}

func capAt(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}
