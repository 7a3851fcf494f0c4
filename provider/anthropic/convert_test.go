package anthropic_test

import (
	"testing"

	"github.com/becomeliminal/strata-go-sdk/core"
	"github.com/becomeliminal/strata-go-sdk/prompt"
	"github.com/becomeliminal/strata-go-sdk/provider/anthropic"
	"github.com/becomeliminal/strata-go-sdk/tools"
)

func TestBuildParams(t *testing.T) {
	messages := []prompt.Message{
		{Role: core.RoleSystem, Content: "policy"},
		{Role: core.RoleSystem, Content: "CONTEXT_DATA:\n  - \"quoted\""},
		{Role: core.RoleUser, Content: "question"},
	}

	params, err := anthropic.BuildParams("claude-sonnet-4-20250514", 1024, messages)
	if err != nil {
		t.Fatalf("Failed to build params: %v", err)
	}
	if len(params.System) != 2 {
		t.Errorf("Expected 2 system blocks, got %d", len(params.System))
	}
	if params.System[0].Text != "policy" {
		t.Errorf("Expected policy first, got %q", params.System[0].Text)
	}
	if len(params.Messages) != 1 {
		t.Errorf("Expected 1 conversation message, got %d", len(params.Messages))
	}
	if params.MaxTokens != 1024 {
		t.Errorf("Expected max tokens 1024, got %d", params.MaxTokens)
	}
}

func TestBuildParams_RejectsUnknownRole(t *testing.T) {
	_, err := anthropic.BuildParams("m", 10, []prompt.Message{{Role: "root", Content: "x"}})
	if err == nil {
		t.Error("Expected an error for an unknown role")
	}
}

func TestConvertTools(t *testing.T) {
	specs := []core.ToolSpec{
		tools.Spec("send money!", "Transfers funds",
			tools.ObjectSchema(map[string]interface{}{
				"amount": tools.NumberProperty("Amount in dollars"),
			}, "amount")),
	}

	converted := anthropic.ConvertTools(specs)
	if len(converted) != 1 {
		t.Fatalf("Expected 1 tool, got %d", len(converted))
	}
	tool := converted[0].OfTool
	if tool == nil {
		t.Fatal("Expected a plain tool param")
	}
	if tool.Name != "send_money_" && tool.Name != "send_money" {
		t.Errorf("Expected sanitized name, got %q", tool.Name)
	}
	if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "amount" {
		t.Errorf("Expected required [amount], got %v", tool.InputSchema.Required)
	}
}

func TestConvertTools_Empty(t *testing.T) {
	if got := anthropic.ConvertTools(nil); got != nil {
		t.Errorf("Expected nil for no specs, got %v", got)
	}
}
