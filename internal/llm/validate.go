package llm

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// compiledSchemas holds compiled schemas keyed by name and definition
// digest, so two schemas sharing a name never share a validator.
var compiledSchemas sync.Map // map[string]*jsonschema.Schema

var issuePrinter = message.NewPrinter(language.English)

// conformResponse strips a markdown fence some models put around JSON
// even in JSON mode, then checks the result against schema. It returns
// the content to hand to the caller. With no schema raw is returned as is.
func conformResponse(schema *Schema, raw json.RawMessage) (json.RawMessage, error) {
	if schema == nil {
		return raw, nil
	}

	content := stripFence(raw)
	if len(content) == 0 {
		return nil, &ErrInvalidResponse{Content: raw, Err: errors.New("empty content")}
	}

	var doc any
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("compile schema %q: %w", schema.Name, err)}
	}

	if err := compiled.Validate(doc); err != nil {
		return nil, &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("%s does not match: %s", schema.Name, describeViolation(err)),
		}
	}
	return content, nil
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(raw json.RawMessage) json.RawMessage {
	b := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = bytes.TrimPrefix(b[3:], []byte("json"))
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}

// describeViolation flattens a validation error into one line listing the
// failing leaves, e.g. "/answers: minItems: got 2, want 3".
func describeViolation(err error) string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}

	var issues []string
	var walk func(*jsonschema.ValidationError)
	walk = func(v *jsonschema.ValidationError) {
		if len(v.Causes) == 0 {
			issues = append(issues, fmt.Sprintf("/%s: %s",
				strings.Join(v.InstanceLocation, "/"),
				v.ErrorKind.LocalizedString(issuePrinter)))
			return
		}
		for _, c := range v.Causes {
			walk(c)
		}
	}
	walk(verr)
	return strings.Join(issues, "; ")
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	// The compiler wants a decoded JSON value, not Go maps of arbitrary
	// types, so the definition takes a round trip through encoding/json.
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	sum := sha256.Sum256(def)
	key := schema.Name + "@" + hex.EncodeToString(sum[:8])

	if cached, ok := compiledSchemas.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	url := fmt.Sprintf("schema://wikiquiz/%s.json", key)
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}

	compiledSchemas.Store(key, compiled)
	return compiled, nil
}
