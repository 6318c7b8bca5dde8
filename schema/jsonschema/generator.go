// Package jsonschema renders a form class tree as a JSON Schema document so
// rendering layers and remote validators can share one field contract.
package jsonschema

import (
	"fmt"

	formstate "github.com/goliatone/go-formstate"
)

// Generate builds a JSON Schema document for root. Every class reachable
// through subform fields is published once under $defs and referenced by
// $ref, so recursive class trees produce finite documents.
func Generate(root *formstate.Class, opts ...Option) (map[string]any, error) {
	if root == nil || root.Form == nil {
		return nil, fmt.Errorf("jsonschema: root class has no form schema")
	}
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	registry := newDefRegistry()
	rootName := publish(root, registry, cfg)

	doc := map[string]any{
		"$schema": cfg.dialect,
		"$ref":    ref(rootName),
		"$defs":   registry.defs,
	}
	title := cfg.title
	if title == "" {
		title = root.Name
	}
	doc["title"] = title
	if cfg.id != "" {
		doc["$id"] = cfg.id
	}
	if cfg.description != "" {
		doc["description"] = cfg.description
	}
	return doc, nil
}

func publish(class *formstate.Class, registry *defRegistry, cfg generatorConfig) string {
	name, fresh := registry.name(class)
	if !fresh {
		return name
	}
	// reserve the slot before descending so cycles resolve to the ref
	registry.defs[name] = map[string]any{}

	properties := map[string]any{}
	required := []string{}
	for _, field := range class.Form.Fields() {
		prop := fieldSchema(field, registry, cfg)
		properties[field.Name] = prop
		if field.Validator == formstate.ValidatorRequired {
			required = append(required, field.Name)
		}
	}

	def := map[string]any{
		"type":                 "object",
		"title":                class.Name,
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		def["required"] = required
	}
	registry.defs[name] = def
	return name
}

func fieldSchema(field formstate.FieldDefinition, registry *defRegistry, cfg generatorConfig) map[string]any {
	var prop map[string]any
	switch field.Type {
	case formstate.FieldIdentity:
		prop = map[string]any{"type": []any{"string", "integer"}, "readOnly": true}
	case formstate.FieldText:
		prop = map[string]any{"type": "string"}
	case formstate.FieldInteger:
		prop = map[string]any{"type": "integer"}
	case formstate.FieldCheckbox:
		prop = map[string]any{"type": "boolean"}
	case formstate.FieldDropdown:
		keys := make([]any, 0, len(field.Options))
		labels := make([]any, 0, len(field.Options))
		for _, choice := range field.Options {
			keys = append(keys, string(choice.Key))
			labels = append(labels, map[string]any{"const": string(choice.Key), "title": choice.Label})
		}
		prop = map[string]any{"type": "string", "enum": keys}
		if len(labels) > 0 {
			prop["oneOf"] = labels
		}
	case formstate.FieldSubform:
		if field.Target == nil || field.Target.Form == nil {
			prop = map[string]any{}
			break
		}
		target := ref(publish(field.Target, registry, cfg))
		if field.Cardinality == formstate.Many {
			prop = map[string]any{"type": "array", "items": map[string]any{"$ref": target}}
		} else {
			prop = map[string]any{"$ref": target}
		}
	default:
		prop = map[string]any{}
	}

	applyValidatorKeywords(prop, field)
	if def, ok := jsonDefault(field.Default); ok {
		prop["default"] = def
	}
	if cfg.extensions {
		if field.Validator != "" {
			prop["x-validator"] = field.Validator
		}
		if field.CSSClass != "" {
			prop["x-css-class"] = field.CSSClass
		}
	}
	return prop
}

func applyValidatorKeywords(prop map[string]any, field formstate.FieldDefinition) {
	switch field.Validator {
	case formstate.ValidatorInRange:
		if lo, ok := formstate.CoerceInt(field.ValidatorArgs["min"]); ok {
			prop["minimum"] = lo
		}
		if hi, ok := formstate.CoerceInt(field.ValidatorArgs["max"]); ok {
			prop["maximum"] = hi
		}
	case formstate.ValidatorMaxLength:
		if hi, ok := formstate.CoerceInt(field.ValidatorArgs["max"]); ok {
			prop["maxLength"] = hi
		}
	case formstate.ValidatorRequired:
		if field.Type == formstate.FieldText {
			prop["minLength"] = 1
		}
	}
}

func jsonDefault(value any) (any, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, false
	case formstate.Key:
		return string(typed), true
	case string, bool, int, int32, int64, float64:
		return typed, true
	default:
		return nil, false
	}
}
