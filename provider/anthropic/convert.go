package anthropic

import (
	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/becomeliminal/strata-go-sdk/core"
	"github.com/becomeliminal/strata-go-sdk/prompt"
)

// ConvertTools maps tool specs onto the structured tool channel. Names
// pass through the same allowlist sanitizer the textual fallback uses.
func ConvertTools(specs []core.ToolSpec) []sdk.ToolUnionParam {
	if len(specs) == 0 {
		return nil
	}
	out := make([]sdk.ToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		tool := sdk.ToolParam{
			Name:        prompt.SanitizeToolName(spec.Name),
			InputSchema: convertSchema(spec.InputSchema),
		}
		if spec.Description != "" {
			tool.Description = sdk.String(spec.Description)
		}
		out = append(out, sdk.ToolUnionParam{OfTool: &tool})
	}
	return out
}

func convertSchema(schema map[string]interface{}) sdk.ToolInputSchemaParam {
	var param sdk.ToolInputSchemaParam
	if schema == nil {
		return param
	}
	if props, ok := schema["properties"]; ok {
		param.Properties = props
	}
	if required, ok := schema["required"].([]string); ok {
		param.Required = required
	} else if raw, ok := schema["required"].([]interface{}); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				param.Required = append(param.Required, s)
			}
		}
	}
	return param
}
