package core

// ToolSpec describes one tool offered to the model. The spec is the
// structured form: when the downstream target supports a dedicated tools
// channel (see provider/anthropic), it is passed through untouched. When
// only a textual channel exists, the prompt assembler renders a sanitized
// form into the TOOLS_DATA section instead.
type ToolSpec struct {
	// Name is the tool identifier. Rendered names are filtered to
	// [A-Za-z0-9_.-] in text mode.
	Name string

	// Description is free text from the tool author. Treated as untrusted.
	Description string

	// InputSchema is a JSON Schema object describing the parameters.
	// Build with the tools package helpers.
	InputSchema map[string]interface{}
}
