package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/*.json
var schemaFS embed.FS

const schemaBase = "https://github.com/idilsaglam/tada/schema/"

type schemas struct {
	item   *jsonschema.Schema
	items  *jsonschema.Schema
	upload *jsonschema.Schema
}

var (
	schemaOnce sync.Once
	schemaSet  schemas
	schemaErr  error
)

func loadSchemas() (schemas, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		for _, name := range []string{"item.json", "items.json", "upload.json"} {
			b, err := schemaFS.ReadFile("schema/" + name)
			if err != nil {
				schemaErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(schemaBase+name, bytes.NewReader(b)); err != nil {
				schemaErr = fmt.Errorf("add schema %s: %w", name, err)
				return
			}
		}
		var err error
		if schemaSet.item, err = compiler.Compile(schemaBase + "item.json"); err != nil {
			schemaErr = fmt.Errorf("compile item schema: %w", err)
			return
		}
		if schemaSet.items, err = compiler.Compile(schemaBase + "items.json"); err != nil {
			schemaErr = fmt.Errorf("compile items schema: %w", err)
			return
		}
		if schemaSet.upload, err = compiler.Compile(schemaBase + "upload.json"); err != nil {
			schemaErr = fmt.Errorf("compile upload schema: %w", err)
		}
	})
	return schemaSet, schemaErr
}

// validateBody checks data against s before it is decoded into Go types.
func validateBody(s *jsonschema.Schema, data []byte) error {
	if s == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return schemaError(err)
	}
	return nil
}

// schemaError reduces a validation tree to its first leaf.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("invalid response: %w", err)
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := strings.TrimPrefix(ve.InstanceLocation, "/")
	if loc == "" {
		loc = "(root)"
	}
	return fmt.Errorf("invalid response at %s: %s", loc, ve.Message)
}
