package formstate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-formstate/internal/hydrate"
	"gopkg.in/yaml.v3"
)

type classDocument struct {
	Classes []classSpec `json:"classes"`
}

type classSpec struct {
	Name     string      `json:"name"`
	Identity string      `json:"identity,omitempty"`
	Joins    []string    `json:"joins,omitempty"`
	Fields   []fieldSpec `json:"fields"`
}

type fieldSpec struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Default     any            `json:"default,omitempty"`
	Validator   string         `json:"validator,omitempty"`
	Args        map[string]any `json:"args,omitempty"`
	CSS         string         `json:"css,omitempty"`
	Cardinality string         `json:"cardinality,omitempty"`
	Target      string         `json:"target,omitempty"`
	Options     []choiceSpec   `json:"options,omitempty"`
}

type choiceSpec struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
}

var classDecoder = hydrate.NewDecoder[classDocument](
	hydrate.WithUseNumber[classDocument](),
	hydrate.WithDisallowUnknownFields[classDocument](),
	hydrate.WithPostHook[classDocument](checkClassDocument),
)

// LoadClassesJSON decodes a class document and returns the classes keyed by
// name. Subform targets refer to classes by name and may point at classes
// declared later in the same document, or at the class itself.
func LoadClassesJSON(source string, raw []byte) (map[string]*Class, error) {
	doc, err := classDecoder.DecodeJSON(hydrate.Context{Source: source}, raw)
	if err != nil {
		return nil, fmt.Errorf("formstate: load classes: %w", err)
	}
	return buildClasses(doc)
}

// LoadClassesYAML is LoadClassesJSON for YAML documents. Validator names
// ending in '?' may be left unquoted in block mappings; inside flow mappings
// ({...}) they must be quoted, since YAML ends a flow scalar at '?'.
func LoadClassesYAML(source string, raw []byte) (map[string]*Class, error) {
	var payload map[string]any
	if err := yaml.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("formstate: load classes: parse %q: %w", source, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	doc, err := classDecoder.Decode(hydrate.Context{Source: source}, payload)
	if err != nil {
		return nil, fmt.Errorf("formstate: load classes: %w", err)
	}
	return buildClasses(doc)
}

func checkClassDocument(ctx hydrate.Context, doc *classDocument) error {
	seen := map[string]bool{}
	for i, spec := range doc.Classes {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return fmt.Errorf("classes[%d]: name must not be empty", i)
		}
		if seen[name] {
			return fmt.Errorf("duplicate class %q", name)
		}
		seen[name] = true
	}
	return nil
}

func buildClasses(doc classDocument) (map[string]*Class, error) {
	classes := make(map[string]*Class, len(doc.Classes))
	for _, spec := range doc.Classes {
		opts := []ClassOption{WithJoins(classJoins(spec)...)}
		if spec.Identity != "" {
			opts = append(opts, WithIdentFunc(identityKey(spec.Name, spec.Identity)))
		}
		classes[spec.Name] = NewClass(spec.Name, opts...)
	}

	for _, spec := range doc.Classes {
		fields := make([]FieldDefinition, 0, len(spec.Fields))
		for _, fs := range spec.Fields {
			field, err := buildField(fs, classes)
			if err != nil {
				return nil, fmt.Errorf("formstate: class %q: %w", spec.Name, err)
			}
			fields = append(fields, field)
		}
		schema, err := NewFormSchema(fields...)
		if err != nil {
			return nil, fmt.Errorf("formstate: class %q: %w", spec.Name, err)
		}
		classes[spec.Name].Form = schema
	}
	return classes, nil
}

// classJoins defaults to every subform field when the document omits joins.
func classJoins(spec classSpec) []string {
	if spec.Joins != nil {
		return spec.Joins
	}
	joins := []string{}
	for _, fs := range spec.Fields {
		if FieldType(fs.Type) == FieldSubform {
			joins = append(joins, fs.Name)
		}
	}
	return joins
}

func identityKey(class, key string) IdentFunc {
	return func(entity Entity) (Ident, bool) {
		id, ok := entity[key]
		if !ok || id == nil {
			if overlay, found := entity.Overlay(); found {
				if state, ok := overlay.Fields[key]; ok && state.Value != nil {
					return Ident{Class: class, ID: state.Value}, true
				}
			}
			return Ident{}, false
		}
		return Ident{Class: class, ID: id}, true
	}
}

func buildField(fs fieldSpec, classes map[string]*Class) (FieldDefinition, error) {
	var opts []FieldOption
	if fs.Validator != "" {
		args, _ := normalizeNumber(fs.Args).(map[string]any)
		opts = append(opts, WithValidator(fs.Validator, args))
	}
	if fs.CSS != "" {
		opts = append(opts, WithCSSClass(fs.CSS))
	}
	if fs.Default != nil {
		opts = append(opts, WithDefault(normalizeNumber(fs.Default)))
	}

	switch FieldType(fs.Type) {
	case FieldIdentity:
		return IdentityField(fs.Name, opts...), nil
	case FieldText:
		return TextField(fs.Name, opts...), nil
	case FieldInteger:
		return IntegerField(fs.Name, opts...), nil
	case FieldCheckbox:
		return CheckboxField(fs.Name, opts...), nil
	case FieldDropdown:
		choices := make([]Choice, 0, len(fs.Options))
		for _, opt := range fs.Options {
			label := opt.Label
			if label == "" {
				label = opt.Key
			}
			choices = append(choices, Choice{Key: Key(opt.Key), Label: label})
		}
		if key, ok := fs.Default.(string); ok {
			opts = append(opts, WithDefault(Key(key)))
		}
		return DropdownField(fs.Name, choices, opts...), nil
	case FieldSubform:
		target, ok := classes[fs.Target]
		if !ok {
			return FieldDefinition{}, fmt.Errorf("field %q: unknown target class %q", fs.Name, fs.Target)
		}
		card := Cardinality(fs.Cardinality)
		if card == "" {
			card = One
		}
		return SubformField(fs.Name, target, card, opts...), nil
	default:
		return FieldDefinition{}, fmt.Errorf("field %q has unknown type %q", fs.Name, fs.Type)
	}
}

// normalizeNumber turns json.Number into int64 when integral and float64
// otherwise, descending into maps and slices.
func normalizeNumber(value any) any {
	switch typed := value.(type) {
	case json.Number:
		if i, err := typed.Int64(); err == nil {
			return i
		}
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	case map[string]any:
		if typed == nil {
			return nil
		}
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = normalizeNumber(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = normalizeNumber(v)
		}
		return out
	default:
		return value
	}
}
