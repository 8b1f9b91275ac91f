package repository

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"

	"github.com/employeedir/core/internal/domain/entities"
)

// documentSchema describes the only shape a persisted document may have
const documentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["employees"],
	"properties": {
		"employees": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "firstName", "lastName"],
				"properties": {
					"id": {"type": "integer", "minimum": 1},
					"firstName": {"type": "string", "minLength": 1},
					"lastName": {"type": "string", "minLength": 1},
					"title": {"type": "string"}
				}
			}
		}
	}
}`

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	})
	return compiledSchema, schemaErr
}

// decodeDocument parses raw bytes and checks them against the document shape
func decodeDocument(raw []byte) (*entities.Document, error) {
	if !json.Valid(raw) {
		return nil, fmt.Errorf("document is not valid JSON")
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("document does not match schema: %s", strings.Join(msgs, "; "))
	}

	var doc entities.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	seen := make(map[int]struct{}, len(doc.Employees))
	for _, e := range doc.Employees {
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("document contains duplicate id %d", e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	if doc.Employees == nil {
		doc.Employees = []entities.Employee{}
	}
	return &doc, nil
}

// encodeDocument renders the document with two-space indentation
func encodeDocument(doc *entities.Document) ([]byte, error) {
	out := doc
	if out.Employees == nil {
		out = &entities.Document{Employees: []entities.Employee{}}
	}
	return json.MarshalIndent(out, "", "  ")
}
