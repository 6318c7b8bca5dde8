package jsonschema

// DefaultDialect is the JSON Schema dialect stamped on generated documents.
const DefaultDialect = "https://json-schema.org/draft/2020-12/schema"

type generatorConfig struct {
	dialect     string
	id          string
	title       string
	description string
	extensions  bool
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		dialect:    DefaultDialect,
		extensions: true,
	}
}

// Option configures document generation.
type Option func(*generatorConfig)

// WithDialect overrides the $schema URI. Empty strings retain the default.
func WithDialect(uri string) Option {
	return func(cfg *generatorConfig) {
		if uri == "" {
			return
		}
		cfg.dialect = uri
	}
}

// WithID sets the document $id.
func WithID(id string) Option {
	return func(cfg *generatorConfig) {
		cfg.id = id
	}
}

// WithTitle sets the document title. Defaults to the root class name.
func WithTitle(title string) Option {
	return func(cfg *generatorConfig) {
		cfg.title = title
	}
}

// WithDescription sets the document description.
func WithDescription(description string) Option {
	return func(cfg *generatorConfig) {
		cfg.description = description
	}
}

// WithoutExtensions drops the x-validator / x-css-class annotations.
func WithoutExtensions() Option {
	return func(cfg *generatorConfig) {
		cfg.extensions = false
	}
}
