package domain

// Extraction is the structured LLM output for one document.
//
// It is a closed union: the only implementations are FixedExtraction and
// CustomExtraction. Consumers should switch on the concrete type and
// treat any other value as a programming error.
type Extraction interface {
	// Kind returns the variant tag.
	Kind() ExtractionKind

	isExtraction()
}

// ExtractionKind tags the Extraction variant.
type ExtractionKind string

// Extraction variants.
const (
	ExtractionFixed  ExtractionKind = "fixed"
	ExtractionCustom ExtractionKind = "custom"
)

// FixedExtraction holds output conforming to the built-in EngineeringLogic schema.
type FixedExtraction struct {
	Logic EngineeringLogic
}

// Kind returns ExtractionFixed.
func (FixedExtraction) Kind() ExtractionKind { return ExtractionFixed }

func (FixedExtraction) isExtraction() {}

// CustomExtraction holds output conforming to an agent's schema.
type CustomExtraction struct {
	// AgentID identifies the schema the payload conforms to.
	AgentID string

	// AgentVersion is the version of that agent at extraction time.
	AgentVersion int

	// Payload is the sanitised, validated JSON object.
	Payload map[string]any
}

// Kind returns ExtractionCustom.
func (CustomExtraction) Kind() ExtractionKind { return ExtractionCustom }

func (CustomExtraction) isExtraction() {}

// Payload returns the extraction as a JSON-ready value.
func Payload(e Extraction) any {
	switch v := e.(type) {
	case FixedExtraction:
		return v.Logic
	case CustomExtraction:
		return v.Payload
	default:
		return nil
	}
}
