package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// JSONSchema is the subset of JSON Schema used to describe YAML config files.
type JSONSchema struct {
	Schema               string                 `json:"$schema,omitempty"`
	ID                   string                 `json:"$id,omitempty"`
	Title                string                 `json:"title,omitempty"`
	Description          string                 `json:"description,omitempty"`
	Type                 string                 `json:"type,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Properties           map[string]*JSONSchema `json:"properties,omitempty"`
	AdditionalProperties *JSONSchema            `json:"additionalProperties,omitempty"`
	Items                *JSONSchema            `json:"items,omitempty"`
	Enum                 []any                  `json:"enum,omitempty"`
	Default              any                    `json:"default,omitempty"`
	Pattern              string                 `json:"pattern,omitempty"`
	Minimum              *float64               `json:"minimum,omitempty"`
	MinItems             *int                   `json:"minItems,omitempty"`
}

const schemaRef = "https://json-schema.org/draft/2020-12/schema"

// Generator builds JSON schemas from Go structs. Field names come from the yaml tag,
// then the json tag. The schema tag adds constraints: required, enum=a|b, default=x,
// pattern=re, minimum=n, minItems=n. The description tag sets the description.
type Generator struct {
	idPrefix string
}

func NewGenerator(idPrefix string) *Generator {
	return &Generator{idPrefix: strings.TrimRight(idPrefix, "/")}
}

func (g *Generator) GenerateSchema(t reflect.Type) (*JSONSchema, error) {
	schema, err := g.generateSchemaForType(t)
	if err != nil {
		return nil, err
	}
	schema.Schema = schemaRef
	schema.Title = t.Name()
	if g.idPrefix != "" {
		schema.ID = fmt.Sprintf("%s/%s", g.idPrefix, strings.ToLower(t.Name()))
	}
	return schema, nil
}

func (g *Generator) generateSchemaForType(t reflect.Type) (*JSONSchema, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		return g.generateStructSchema(t)
	case reflect.Slice, reflect.Array:
		items, err := g.generateSchemaForType(t.Elem())
		if err != nil {
			return nil, fmt.Errorf("array items: %w", err)
		}
		return &JSONSchema{Type: "array", Items: items}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type: %s", t.Key())
		}
		if t.Elem().Kind() == reflect.Interface {
			return &JSONSchema{Type: "object"}, nil
		}
		values, err := g.generateSchemaForType(t.Elem())
		if err != nil {
			return nil, fmt.Errorf("map values: %w", err)
		}
		return &JSONSchema{Type: "object", AdditionalProperties: values}, nil
	case reflect.Interface:
		return &JSONSchema{}, nil
	case reflect.String:
		return &JSONSchema{Type: "string"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &JSONSchema{Type: "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return &JSONSchema{Type: "number"}, nil
	case reflect.Bool:
		return &JSONSchema{Type: "boolean"}, nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", t.Kind())
	}
}

func (g *Generator) generateStructSchema(t reflect.Type) (*JSONSchema, error) {
	schema := &JSONSchema{
		Type:       "object",
		Properties: make(map[string]*JSONSchema),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, inline := fieldName(field)
		if name == "-" {
			continue
		}

		fieldSchema, err := g.generateSchemaForType(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		if inline {
			for k, v := range fieldSchema.Properties {
				schema.Properties[k] = v
			}
			schema.Required = append(schema.Required, fieldSchema.Required...)
			continue
		}

		if desc := field.Tag.Get("description"); desc != "" {
			fieldSchema.Description = desc
		}
		if tag := field.Tag.Get("schema"); tag != "" {
			if parseSchemaTag(tag, fieldSchema) {
				schema.Required = append(schema.Required, name)
			}
		}
		schema.Properties[name] = fieldSchema
	}

	return schema, nil
}

// parseSchemaTag applies tag constraints to schema and reports whether the field is required.
func parseSchemaTag(tag string, schema *JSONSchema) bool {
	required := false
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		key, value, _ := strings.Cut(part, "=")

		switch key {
		case "required":
			required = true
		case "enum":
			for _, e := range strings.Split(value, "|") {
				schema.Enum = append(schema.Enum, e)
			}
		case "default":
			schema.Default = typedDefault(schema.Type, value)
		case "pattern":
			schema.Pattern = value
		case "minimum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.Minimum = &v
			}
		case "minItems":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MinItems = &v
			}
		}
	}
	return required
}

func typedDefault(typ, value string) any {
	switch typ {
	case "integer":
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	case "number":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case "boolean":
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return value
}

func fieldName(field reflect.StructField) (string, bool) {
	for _, key := range []string{"yaml", "json"} {
		tag, ok := field.Tag.Lookup(key)
		if !ok {
			continue
		}
		parts := strings.Split(tag, ",")
		for _, opt := range parts[1:] {
			if opt == "inline" {
				return "", true
			}
		}
		if parts[0] != "" {
			return parts[0], false
		}
	}
	if field.Anonymous {
		return "", true
	}
	return strings.ToLower(field.Name), false
}

// GenerateJSONSchema returns the indented JSON schema of v's type.
func (g *Generator) GenerateJSONSchema(v any) (string, error) {
	schema, err := g.GenerateSchema(reflect.TypeOf(v))
	if err != nil {
		return "", err
	}

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(jsonBytes), nil
}
