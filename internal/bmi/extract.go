package bmi

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

var (
	bmiPattern      = regexp.MustCompile(`"bmi"\s*:\s*(-?[0-9]+(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?)`)
	categoryPattern = quotedField("category")
	advicePattern   = quotedField("advice")
	errorPattern    = quotedField("error")
)

// quotedField matches `"name": "<value>"` where value may hold escaped characters.
func quotedField(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)"` + regexp.QuoteMeta(name) + `"\s*:\s*"((?:[^"\\]|\\.)*)"`)
}

// Extract reads the bmi, category and advice fields from a reply body.
//
// A body that parses as a JSON object is read with JSONPath at the top level.
// Any field that read cannot supply (nested objects, truncated JSON, HTML
// wrapped JSON, plain garbage) is scanned for anywhere in the raw text, so
// partial replies still yield what is recognisable. Extract never fails and
// returns the same result for the same input.
func Extract(raw string) ParsedResult {
	var res ParsedResult
	if doc, ok := parseObject(raw); ok {
		res = ParsedResult{
			BMI:      numberAt(doc, "$.bmi"),
			Category: stringAt(doc, "$.category"),
			Advice:   stringAt(doc, "$.advice"),
		}
	}

	if res.BMI == nil {
		res.BMI = scanNumber(raw, bmiPattern)
	}
	if res.Category == nil {
		res.Category = scanString(raw, categoryPattern)
	}
	if res.Advice == nil {
		res.Advice = scanString(raw, advicePattern)
	}
	return res
}

// ExtractServerError reads the "error" field the service puts in 4xx bodies.
func ExtractServerError(raw string) (string, bool) {
	var msg *string
	if doc, ok := parseObject(raw); ok {
		msg = stringAt(doc, "$.error")
	}
	if msg == nil {
		msg = scanString(raw, errorPattern)
	}
	if msg == nil || strings.TrimSpace(*msg) == "" {
		return "", false
	}
	return *msg, true
}

func parseObject(raw string) (map[string]any, bool) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil || doc == nil {
		return nil, false
	}
	return doc, true
}

func numberAt(doc map[string]any, path string) *float64 {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil
	}
	switch t := val.(type) {
	case float64:
		return &t
	case string:
		if v, ok := parseDecimal(strings.TrimSpace(t)); ok {
			return &v
		}
	}
	return nil
}

func stringAt(doc map[string]any, path string) *string {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil
	}
	s, ok := val.(string)
	if !ok {
		return nil
	}
	return &s
}

func scanNumber(raw string, re *regexp.Regexp) *float64 {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	// The pattern only admits numeric text, but overflow still fails here.
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

func scanString(raw string, re *regexp.Regexp) *string {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	s := unescape(m[1])
	return &s
}

// unescape walks s once, consuming a backslash and the byte after it as a
// unit. Only \" \n \t and \\ are translated; other pairs are kept as written.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}

		i++
		switch s[i] {
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}

	return b.String()
}
