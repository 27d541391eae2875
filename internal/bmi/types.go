package bmi

// InputPair is a validated weight (kg) and height (cm). Only Validate builds one.
type InputPair struct {
	Weight float64
	Height float64
}

// Payload returns the JSON body sent to POST /api/bmi.
func (p InputPair) Payload() RequestPayload {
	return RequestPayload{Weight: p.Weight, Height: p.Height}
}

// RequestPayload is the JSON body for POST /api/bmi.
type RequestPayload struct {
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
}

// ParsedResult holds whichever known fields could be read from a reply.
// Each field is independently optional.
type ParsedResult struct {
	BMI      *float64 `json:"bmi,omitempty"`
	Category *string  `json:"category,omitempty"`
	Advice   *string  `json:"advice,omitempty"`
}

// Empty reports whether none of the fields were found.
func (r ParsedResult) Empty() bool {
	return r.BMI == nil && r.Category == nil && r.Advice == nil
}
