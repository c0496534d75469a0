// Package payloadschema validates raw news item JSON before it enters the
// pipeline. Structural validation is a compiled JSON Schema; the semantic
// checks cover what a schema cannot express.
package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"finchwire.dev/newsvet/internal/globaltime"
	"finchwire.dev/newsvet/internal/news"
)

//go:embed news_item.schema.json
var newsItemSchemaJSON string

// ItemPayload is the wire form of an incoming raw news item.
type ItemPayload struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	Content     *string `json:"content,omitempty"`
	PublishedAt *string `json:"published_at,omitempty"`
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// ValidateItemPayload checks one raw item payload against the schema and the
// semantic rules, and converts it to the pipeline's internal form. A payload
// without published_at gets the current time.
func ValidateItemPayload(payload json.RawMessage) (news.RawItem, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return news.RawItem{}, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return news.RawItem{}, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return news.RawItem{}, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return news.RawItem{}, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var item ItemPayload
	if err := json.Unmarshal(normalized, &item); err != nil {
		return news.RawItem{}, fmt.Errorf("unmarshal payload: %w", err)
	}

	return toRawItem(item)
}

func toRawItem(item ItemPayload) (news.RawItem, error) {
	if strings.TrimSpace(item.Title) == "" {
		return news.RawItem{}, fmt.Errorf("title must not be empty")
	}
	if strings.TrimSpace(item.URL) == "" {
		return news.RawItem{}, fmt.Errorf("url must not be empty")
	}
	if strings.TrimSpace(item.Source) == "" {
		return news.RawItem{}, fmt.Errorf("source must not be empty")
	}

	raw := news.RawItem{
		Title:       item.Title,
		URL:         item.URL,
		Source:      item.Source,
		PublishedAt: globaltime.UTC(),
	}
	if item.Content != nil {
		raw.Content = *item.Content
	}
	if item.PublishedAt != nil {
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(*item.PublishedAt))
		if err != nil {
			return news.RawItem{}, fmt.Errorf("published_at must be RFC3339: %w", err)
		}
		raw.PublishedAt = ts.UTC()
	}
	return raw, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("news_item.schema.json", strings.NewReader(newsItemSchemaJSON)); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("news_item.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compileErr != nil {
		return nil, compileErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}
