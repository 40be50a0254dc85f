package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/custodia-labs/enlogic/internal/core/domain"
)

//go:embed engineering_logic.json
var engineeringLogicJSON []byte

var (
	fixedOnce     sync.Once
	fixedCompiled *Compiled
	fixedErr      error
)

// EngineeringLogicSchema returns the built-in extraction schema as JSON.
func EngineeringLogicSchema() json.RawMessage {
	return engineeringLogicJSON
}

// EngineeringLogic returns the compiled built-in extraction schema.
func EngineeringLogic() (*Compiled, error) {
	fixedOnce.Do(func() {
		fixedCompiled, fixedErr = Compile(engineeringLogicJSON)
	})
	return fixedCompiled, fixedErr
}

// BindEngineeringLogic sanitises and validates obj against the built-in
// schema and decodes it into domain.EngineeringLogic.
func BindEngineeringLogic(obj map[string]any) (domain.EngineeringLogic, error) {
	compiled, err := EngineeringLogic()
	if err != nil {
		return domain.EngineeringLogic{}, fmt.Errorf("compile engineering logic schema: %w", err)
	}

	repaired, err := compiled.SanitizeAndValidate(obj)
	if err != nil {
		return domain.EngineeringLogic{}, err
	}

	raw, err := json.Marshal(repaired)
	if err != nil {
		return domain.EngineeringLogic{}, fmt.Errorf("encode extraction: %w", err)
	}
	var logic domain.EngineeringLogic
	if err := json.Unmarshal(raw, &logic); err != nil {
		return domain.EngineeringLogic{}, fmt.Errorf("%w: %w", domain.ErrSchemaValidation, err)
	}
	return logic.Normalise(), nil
}
