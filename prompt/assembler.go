// Package prompt assembles memory items, tool descriptors, and the user
// query into a role-structured message list. It is the trust boundary of
// the pipeline: developer-authored system text is the only content that
// ever carries instruction authority; everything retrieved or
// user-supplied is rendered as quoted data inside labeled sections, and
// the whole prompt is held under a token budget with a fixed trim order.
package prompt

import (
	"fmt"
	"strings"

	"github.com/becomeliminal/strata-go-sdk/core"
)

// Message is one role-tagged block of the assembled prompt, ready for a
// provider collaborator.
type Message struct {
	Role    string
	Content string
}

// Assembly is the per-request input to Build. It does not persist past
// one call; Build never mutates it.
type Assembly struct {
	// System is the developer-authored policy text. Trusted. Never
	// trimmed.
	System string

	// Context holds retrieved/prior memory items, oldest first.
	// Untrusted; trimmed first when over budget.
	Context []core.MemoryItem

	// NegativeExamples are known-bad texts. Untrusted; trimmed after
	// context.
	NegativeExamples []string

	// Tools are descriptors for the textual fallback channel. Untrusted;
	// trimmed after context. Prefer the structured channel
	// (provider/anthropic) when the target supports one.
	Tools []core.ToolSpec

	// UserQuery is the current question. Untrusted, but never trimmed:
	// if it cannot fit, assembly fails.
	UserQuery string

	// Budget is the token ceiling. Zero selects DefaultBudget.
	Budget int
}

// Result is the emitted prompt plus assembly accounting.
type Result struct {
	Messages []Message

	// Tokens is the estimated size of the emitted prompt.
	Tokens int

	// Trimmed counts entries dropped per section to satisfy the budget.
	Trimmed map[string]int

	// CompressionRefs carries the traceability records of the context
	// items. Metadata alongside the prompt — never rendered into the
	// data sections themselves.
	CompressionRefs []core.CompressionRecord
}

// Assembler turns assemblies into message lists. Construct once and
// reuse; Build is safe for concurrent use.
type Assembler struct {
	counter TokenCounter
}

// NewAssembler builds an assembler with the given token counter; nil
// selects the heuristic CountTokens.
func NewAssembler(counter TokenCounter) *Assembler {
	if counter == nil {
		counter = CountTokens
	}
	return &Assembler{counter: counter}
}

// Build runs COLLECT -> CLASSIFY -> FORMAT -> BUDGET-CHECK -> TRIM ->
// EMIT. When even maximal trimming (all context, negatives, and tool
// text removed) cannot satisfy the budget while preserving the system
// policy and the user query, it returns core.ErrBudgetExceeded and no
// messages.
func (a *Assembler) Build(in Assembly) (*Result, error) {
	budget := in.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}

	// Per-call copies: trimming must never mutate the caller's slices.
	context := append([]core.MemoryItem(nil), in.Context...)
	negatives := append([]string(nil), in.NegativeExamples...)
	tools := append([]core.ToolSpec(nil), in.Tools...)

	trimmed := map[string]int{}

	for {
		messages := a.emit(in.System, context, negatives, tools, in.UserQuery)
		tokens := a.count(messages)
		if tokens <= budget {
			return &Result{
				Messages:        messages,
				Tokens:          tokens,
				Trimmed:         trimmed,
				CompressionRefs: compressionRefs(context),
			}, nil
		}

		// Fixed trim order: oldest context first, then negative examples
		// and tool data. The user query and system policy are never
		// trimmed.
		switch {
		case len(context) > 0:
			context = context[1:]
			trimmed[SectionContext]++
		case len(negatives) > 0:
			negatives = negatives[1:]
			trimmed[SectionNegatives]++
		case len(tools) > 0:
			tools = tools[1:]
			trimmed[SectionTools]++
		default:
			return nil, fmt.Errorf("assembly needs %d tokens with budget %d: %w",
				tokens, budget, core.ErrBudgetExceeded)
		}
	}
}

// emit renders the message list: the trusted system policy, one system
// message holding the labeled data sections, and the user query last.
func (a *Assembler) emit(system string, context []core.MemoryItem, negatives []string, tools []core.ToolSpec, userQuery string) []Message {
	var messages []Message
	if system != "" {
		messages = append(messages, Message{Role: core.RoleSystem, Content: system})
	}

	var sections []string
	if s := renderSection(SectionContext, contextEntries(context)); s != "" {
		sections = append(sections, s)
	}
	if s := renderSection(SectionNegatives, negativeEntries(negatives)); s != "" {
		sections = append(sections, s)
	}
	if s := renderSection(SectionTools, toolEntries(tools)); s != "" {
		sections = append(sections, s)
	}
	if len(sections) > 0 {
		messages = append(messages, Message{
			Role:    core.RoleSystem,
			Content: strings.Join(sections, "\n\n"),
		})
	}

	messages = append(messages, Message{Role: core.RoleUser, Content: sanitizeText(userQuery)})
	return messages
}

func (a *Assembler) count(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += a.counter(m.Content)
	}
	return total
}

func compressionRefs(context []core.MemoryItem) []core.CompressionRecord {
	var refs []core.CompressionRecord
	for _, item := range context {
		if item.Compression != nil {
			refs = append(refs, *item.Compression)
		}
	}
	return refs
}
