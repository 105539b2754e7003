package ganttcalendar

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const (
	schemaValidate = "validate_ticket"
	schemaChange   = "ticket_changed"
)

const ticketSchema = `{
	"type": "object",
	"properties": {
		"id":         {"type": "integer", "minimum": 0},
		"exists":     {"type": "boolean"},
		"status":     {"type": "string"},
		"resolution": {"type": ["string", "null"]},
		"due_assign": {"type": ["string", "null"]},
		"due_close":  {"type": ["string", "null"]},
		"complete":   {"type": ["integer", "number", "string", "null"]}
	}
}`

var payloadSchemaSources = map[string]string{
	schemaValidate: `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["ticket"],
		"properties": {
			"ticket": ` + ticketSchema + `
		}
	}`,
	schemaChange: `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["ticket"],
		"properties": {
			"ticket": ` + ticketSchema + `,
			"old_values": {
				"type": ["object", "null"],
				"additionalProperties": {"type": ["string", "null"]}
			}
		}
	}`,
}

type payloadSchemas struct {
	schemas map[string]*gojsonschema.Schema
}

func newPayloadSchemas() (*payloadSchemas, error) {
	ps := &payloadSchemas{schemas: make(map[string]*gojsonschema.Schema, len(payloadSchemaSources))}
	for name, src := range payloadSchemaSources {
		s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		ps.schemas[name] = s
	}
	return ps, nil
}

// validate checks doc against the named schema. Violations are returned as
// ErrInvalidArguments with one message per failing field.
func (ps *payloadSchemas) validate(name string, doc json.RawMessage) error {
	if len(doc) == 0 {
		doc = json.RawMessage("null")
	}
	res, err := ps.schemas[name].Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return ErrInvalidArguments.Wrap(err)
	}
	if res.Valid() {
		return nil
	}
	details := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		details = append(details, e.String())
	}
	return ErrInvalidArguments.WithDetails(details)
}
