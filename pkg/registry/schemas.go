package registry

import (
	"fmt"
	"strings"

	"github.com/lumera-app/lumera/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// actionConfigSchemas holds the JSON Schema for each action type's config.
// Publish-time validation runs configs through these so a misconfigured
// action is a builder error, not a runtime surprise.
var actionConfigSchemas = map[models.ActionType]map[string]any{
	models.ActionMessage: {
		"type":     "object",
		"required": []any{"channel", "content"},
		"properties": map[string]any{
			"channel":  map[string]any{"type": "string", "enum": []any{"whatsapp", "sms"}},
			"content":  map[string]any{"type": "string", "minLength": 1},
			"template": map[string]any{"type": "string"},
		},
	},
	models.ActionEmail: {
		"type":     "object",
		"required": []any{"subject", "content"},
		"properties": map[string]any{
			"subject":  map[string]any{"type": "string", "minLength": 1},
			"content":  map[string]any{"type": "string", "minLength": 1},
			"template": map[string]any{"type": "string"},
		},
	},
	models.ActionTag: {
		"type":     "object",
		"required": []any{"tag_name"},
		"properties": map[string]any{
			"tag_name": map[string]any{"type": "string", "minLength": 1},
			"remove":   map[string]any{"type": "boolean"},
		},
	},
	models.ActionNotification: {
		"type":     "object",
		"required": []any{"title"},
		"properties": map[string]any{
			"title": map[string]any{"type": "string", "minLength": 1},
			"body":  map[string]any{"type": "string"},
		},
	},
	models.ActionWait: {
		"type":     "object",
		"required": []any{"delay_ms"},
		"properties": map[string]any{
			"delay_ms": map[string]any{"type": "integer", "minimum": 0},
		},
	},
	models.ActionWebhook: {
		"type":     "object",
		"required": []any{"url"},
		"properties": map[string]any{
			"url":     map[string]any{"type": "string", "format": "uri"},
			"payload": map[string]any{"type": "object"},
		},
	},
}

// ValidateActionConfig validates one action's config against its schema.
func ValidateActionConfig(action models.Action) error {
	schema, ok := actionConfigSchemas[action.Type]
	if !ok {
		return fmt.Errorf("unknown action type %q", action.Type)
	}

	config := action.Config
	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		descs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descs = append(descs, desc.String())
		}

		return fmt.Errorf("action %s config invalid: %s", action.ID, strings.Join(descs, "; "))
	}

	return nil
}
