package quizgen

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/wikiquiz/internal/llm"
	"github.com/invopop/jsonschema"
)

// candidateOutput is the JSON shape requested from providers.
type candidateOutput struct {
	Question     string   `json:"question" jsonschema:"description=The quiz question in the target language without the correct answer"`
	Answers      []string `json:"answers" jsonschema:"description=Exactly three answer options in display order,minItems=3,maxItems=3"`
	CorrectIndex int      `json:"correctIndex" jsonschema:"description=Zero-based index of the correct answer,minimum=0,maximum=2"`
}

// CandidateSchema defines the JSON schema for question generation
// responses. It is reflected from candidateOutput.
var CandidateSchema = &llm.Schema{
	Name:        "wikigame-question",
	Description: "One multiple-choice quiz question with three answers and the index of the correct one",
	Definition:  mustReflectSchema(&candidateOutput{}),
}

func mustReflectSchema(v any) map[string]any {
	def, err := reflectSchema(v)
	if err != nil {
		panic(err)
	}
	return def
}

// reflectSchema turns a Go struct into an inline JSON schema map without
// $schema/$id keys, which some providers reject.
func reflectSchema(v any) (map[string]any, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	raw, err := json.Marshal(r.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("marshal reflected schema: %w", err)
	}
	var def map[string]any
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("decode reflected schema: %w", err)
	}
	delete(def, "$schema")
	delete(def, "$id")
	return def, nil
}
