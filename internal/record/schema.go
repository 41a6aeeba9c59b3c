// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package record defines the structured output contract between the agent
// loop and its callers: the format instructions handed to the model and the
// strict parser that turns the model's final text into a ResearchRecord.
package record

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Schema returns the JSON Schema of a ResearchRecord. Every property is
// required and additional properties are not allowed.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	return r.Reflect(&types.ResearchRecord{})
}

var formatInstructions = sync.OnceValue(func() string {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		panic(fmt.Sprintf("record: marshalling schema: %v", err))
	}
	return fmt.Sprintf(formatTemplate, data)
})

const formatTemplate = `Format your final answer as a single JSON object that conforms to the JSON schema below.

For the schema {"properties": {"items": {"type": "array", "items": {"type": "string"}}}, "required": ["items"]}
the object {"items": ["a", "b"]} is well formatted; the object {"properties": {"items": ["a", "b"]}} is not.

Every property is required. Use JSON strings for text and JSON arrays of strings for lists.
Do not wrap the object in commentary.

Here is the output schema:
` + "```json\n%s\n```"

// FormatInstructions returns the text that tells the model how to shape its
// final answer. The result is computed once and embedded in the system prompt.
func FormatInstructions() string {
	return formatInstructions()
}
