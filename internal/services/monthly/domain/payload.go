package domain

// RawPayload is an undecoded draw event in one of the known upstream shapes.
// It is resolved once by the normalizer; nothing downstream looks at the shape
type RawPayload interface{ payloadShape() string }

// FlatPayload uses lowercase snake keys at the top level
type FlatPayload struct {
	Fields map[string]any
}

// EnvelopedPayload nests capitalized, human-readable keys under "body"
type EnvelopedPayload struct {
	Body map[string]any
}

func (FlatPayload) payloadShape() string      { return "flat" }
func (EnvelopedPayload) payloadShape() string { return "enveloped" }

// ShapeOf names the payload variant for logs
func ShapeOf(p RawPayload) string {
	if p == nil {
		return "none"
	}
	return p.payloadShape()
}

// ManualUpdate is the flat per-field form an operator submits for the current month
type ManualUpdate struct {
	Date         string              `json:"date" validate:"omitempty,max=64"`
	MinimumScore int                 `json:"crs_score" validate:"gte=0,lte=1200"`
	Fields       map[ProgramCode]int `json:"fields" validate:"omitempty,max=32"`
}
