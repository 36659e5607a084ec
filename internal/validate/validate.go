package validate

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/MalithGihan/relgraph-service/internal/apperr"
)

// Schema names a request body schema under schema/.
type Schema string

const (
	ParseText      Schema = "parse-text"
	GenerateVisual Schema = "generate-visual"
	ExportGraph    Schema = "export-graph"
)

//go:embed schema/*.schema.json
var schemaFS embed.FS

var (
	once    sync.Once
	schemas map[Schema]*jsonschema.Schema
	loadErr error
)

func load() {
	c := jsonschema.NewCompiler()
	compiled := map[Schema]*jsonschema.Schema{}
	for _, name := range []Schema{ParseText, GenerateVisual, ExportGraph} {
		path := "schema/" + string(name) + ".schema.json"
		b, err := schemaFS.ReadFile(path)
		if err != nil {
			loadErr = err
			return
		}
		url := "mem://" + path
		if err := c.AddResource(url, bytes.NewReader(b)); err != nil {
			loadErr = fmt.Errorf("add %s: %w", name, err)
			return
		}
		s, err := c.Compile(url)
		if err != nil {
			loadErr = fmt.Errorf("compile %s: %w", name, err)
			return
		}
		compiled[name] = s
	}
	schemas = compiled
}

// Body checks raw JSON against the named schema. Malformed JSON and schema
// violations both come back as Invalid errors.
func Body(name Schema, body []byte) error {
	once.Do(load)
	if loadErr != nil {
		return apperr.Wrap(apperr.Internal, "validate.Body", loadErr, "schemas unavailable")
	}
	s, ok := schemas[name]
	if !ok {
		return apperr.Wrap(apperr.Internal, "validate.Body", fmt.Errorf("unknown schema %q", name), "")
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return apperr.Wrap(apperr.Invalid, string(name), err, "malformed JSON")
	}
	if err := s.Validate(v); err != nil {
		return apperr.Wrap(apperr.Invalid, string(name), err, "request does not match schema")
	}
	return nil
}
