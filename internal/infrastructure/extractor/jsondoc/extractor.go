// Package jsondoc analyzes JSON documents: syntactic validity, structural
// complexity, field anomalies, and a content-based intent that revises the
// document's classification.
package jsondoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vporoshin/docflow/internal/core/domain"
)

// Complexity grades.
const (
	ComplexitySimple  = "Simple"
	ComplexityMedium  = "Medium"
	ComplexityComplex = "Complex"
)

const anomalyTypeDataIssue = "Data Issue"

// numericFields are keys whose values must be numbers.
var numericFields = map[string]bool{
	"price":      true,
	"amount":     true,
	"total":      true,
	"unit_price": true,
}

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

// Extract analyzes the JSON payload and always returns a revised
// classification: content-based intent detection supersedes the keyword
// pass for structured data. A syntactically invalid payload is a normal
// analysis outcome, not a processing error.
func (e *Extractor) Extract(_ context.Context, meta domain.Metadata, raw []byte) (domain.Analysis, *domain.Classification, error) {
	content := string(raw)

	analysis := domain.JSONAnalysis{
		JSONType: "Generic JSON",
		Validity: domain.Validity{Errors: []string{}},
		Structure: domain.Structure{
			Complexity: ComplexityMedium,
		},
		Anomalies: []domain.Anomaly{},
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		errorContext := syntaxErrorContext(content, err)
		analysis.Validity.Errors = append(analysis.Validity.Errors, fmt.Sprintf("JSON syntax error: %s", err))
		if errorContext != "" {
			analysis.Validity.Errors = append(analysis.Validity.Errors, errorContext)
		}
		analysis.Summary = fmt.Sprintf("This is an invalid JSON document with syntax errors. Error context: %s", errorContext)

		inferred := inferFromRawContent(content, meta.Filename)
		return analysis, revisedClassification(inferred), nil
	}

	analysis.Validity.IsValid = true

	inferred := determineDocumentIntent(data, meta.Filename)
	analysis.JSONType = inferred.DocumentType
	analysis.Structure.FieldsCount = countFields(data)
	analysis.Structure.Complexity = determineComplexity(data)
	analysis.Anomalies = detectAnomalies(data)
	analysis.Summary = fmt.Sprintf("This is a %s with %d total fields.", analysis.JSONType, analysis.Structure.FieldsCount)

	return analysis, revisedClassification(inferred), nil
}

func revisedClassification(inferred intentInfo) *domain.Classification {
	return &domain.Classification{
		Format:     domain.FormatJSON,
		Intent:     inferred.Intent,
		Confidence: inferred.Confidence,
	}
}

// syntaxErrorContext locates the offending line for a syntax error.
func syntaxErrorContext(content string, err error) string {
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return ""
	}
	offset := int(syntaxErr.Offset)
	if offset > len(content) {
		offset = len(content)
	}
	lineIdx := strings.Count(content[:offset], "\n")
	lines := strings.Split(content, "\n")
	if lineIdx >= len(lines) {
		return ""
	}
	return fmt.Sprintf("near: %s", strings.TrimSpace(lines[lineIdx]))
}

func countFields(data any) int {
	count := 0
	var walk func(obj any)
	walk = func(obj any) {
		switch v := obj.(type) {
		case map[string]any:
			count += len(v)
			for _, value := range v {
				if isContainer(value) {
					walk(value)
				}
			}
		case []any:
			for _, item := range v {
				if isContainer(item) {
					walk(item)
				}
			}
		}
	}
	walk(data)
	return count
}

// determineComplexity grades nesting depth and container-node count.
// Scalars are not nodes; only maps and arrays count.
func determineComplexity(data any) string {
	maxDepth := 0
	totalNodes := 0

	var walk func(obj any, depth int)
	walk = func(obj any, depth int) {
		if depth > maxDepth {
			maxDepth = depth
		}
		totalNodes++

		switch v := obj.(type) {
		case map[string]any:
			for _, value := range v {
				if isContainer(value) {
					walk(value, depth+1)
				}
			}
		case []any:
			for _, item := range v {
				if isContainer(item) {
					walk(item, depth+1)
				}
			}
		}
	}
	walk(data, 0)

	switch {
	case maxDepth <= 2 && totalNodes < 20:
		return ComplexitySimple
	case maxDepth <= 4 && totalNodes < 50:
		return ComplexityMedium
	default:
		return ComplexityComplex
	}
}

// detectAnomalies walks the document and flags null values and non-numeric
// values in fields that must be numeric. Paths use dot notation with [i]
// for array indices. Object keys are visited in sorted order so the report
// is deterministic.
func detectAnomalies(data any) []domain.Anomaly {
	anomalies := []domain.Anomaly{}

	var walk func(obj any, path string)
	walk = func(obj any, path string) {
		switch v := obj.(type) {
		case map[string]any:
			for _, key := range sortedKeys(v) {
				value := v[key]
				currentPath := key
				if path != "" {
					currentPath = path + "." + key
				}

				if value == nil {
					anomalies = append(anomalies, domain.Anomaly{
						Type:    anomalyTypeDataIssue,
						Message: fmt.Sprintf("Missing value for field '%s'", currentPath),
						Path:    currentPath,
					})
				}

				if numericFields[key] && !isNumeric(value) {
					anomalies = append(anomalies, domain.Anomaly{
						Type:    anomalyTypeDataIssue,
						Message: fmt.Sprintf("Field '%s' should be numeric but is %s", currentPath, typeName(value)),
						Path:    currentPath,
					})
				}

				if isContainer(value) {
					walk(value, currentPath)
				}
			}
		case []any:
			for i, item := range v {
				if isContainer(item) {
					walk(item, fmt.Sprintf("%s[%d]", path, i))
				}
			}
		}
	}
	walk(data, "")
	return anomalies
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

func isNumeric(v any) bool {
	_, ok := v.(float64)
	return ok
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return "unknown"
	}
}
