package bmi

import (
	"fmt"
	"strings"
)

// ParseWarning is appended when none of the known fields were found.
const ParseWarning = "Warning: Could not parse server response reliably."

// Summary is what the client shows once the service returned a body.
type Summary struct {
	Raw        string
	StatusCode int
	ErrorBody  bool
	Result     ParsedResult
}

// NewSummary extracts the known fields from raw.
func NewSummary(raw string, statusCode int, errorBody bool) Summary {
	return Summary{
		Raw:        raw,
		StatusCode: statusCode,
		ErrorBody:  errorBody,
		Result:     Extract(raw),
	}
}

// Render formats the echo of the raw body followed by each field present.
func (s Summary) Render() string {
	var b strings.Builder

	b.WriteString("Server response:\n")
	b.WriteString(strings.TrimSpace(s.Raw))
	b.WriteString("\n\n")

	if s.ErrorBody {
		if msg, ok := ExtractServerError(s.Raw); ok {
			fmt.Fprintf(&b, "Server error (HTTP %d): %s\n", s.StatusCode, msg)
		} else {
			fmt.Fprintf(&b, "Server error (HTTP %d)\n", s.StatusCode)
		}
	}

	if s.Result.BMI != nil {
		fmt.Fprintf(&b, "BMI: %.2f\n", *s.Result.BMI)
	}
	if s.Result.Category != nil {
		b.WriteString("Category: ")
		b.WriteString(*s.Result.Category)
		b.WriteString("\n")
	}
	if s.Result.Advice != nil {
		b.WriteString("Advice: ")
		b.WriteString(*s.Result.Advice)
		b.WriteString("\n")
	}

	if s.Result.Empty() {
		b.WriteString("\n")
		b.WriteString(ParseWarning)
	}

	return b.String()
}
