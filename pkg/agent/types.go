package agent

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the canonical conversation. Exactly one of the
// content forms is meaningful per message: plain text, tool-use blocks
// (assistant requesting calls, possibly alongside text), or tool-result
// blocks (the role-flipped reply carrying every outcome of a round).
// Provider adapters translate to and from wire formats; no provider-native
// types appear here.
type Message struct {
	Role        Role
	Content     string
	ToolCalls   []ToolCall
	ToolResults []ToolOutcome
}

// ToolCall is a model-issued request to invoke a named tool. The ID is
// opaque, unique within a round, and echoed back in the matching outcome.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]interface{}
}

// ToolOutcome is the result of exactly one tool call. Content carries either
// the tool's output or a rendered error description; IsError distinguishes
// the two.
type ToolOutcome struct {
	ID      string
	Name    string
	Content string
	IsError bool
}

// Usage tracks token consumption, accumulated additively across every
// provider call made during one run.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Add accumulates another usage reading into u.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// RunResult is the immutable outcome of one Run invocation. Structured is
// non-nil only when an output contract was configured and satisfied;
// otherwise Text carries the model's final free text (possibly empty when
// the iteration budget ran out).
type RunResult struct {
	Text          string
	Structured    map[string]interface{}
	Usage         Usage
	ProviderCalls int
}

// ToolChoiceMode selects how the model picks its next tool.
type ToolChoiceMode int

const (
	// ToolChoiceAuto lets the model decide whether and which tool to call.
	ToolChoiceAuto ToolChoiceMode = iota
	// ToolChoiceForced compels the model to call one specific tool.
	ToolChoiceForced
)

// ToolChoice is the explicit tool-selection directive carried on each
// provider call.
type ToolChoice struct {
	Mode ToolChoiceMode
	Name string
}

// AutoToolChoice returns the automatic-selection directive.
func AutoToolChoice() ToolChoice {
	return ToolChoice{Mode: ToolChoiceAuto}
}

// ForcedToolChoice returns a directive compelling the named tool.
func ForcedToolChoice(name string) ToolChoice {
	return ToolChoice{Mode: ToolChoiceForced, Name: name}
}

// RunParams contains the per-invocation inputs to Runner.Run.
type RunParams struct {
	// Message is the user's input. Required.
	Message string
	// Deps supplies values substituted into the system-prompt template
	// as {{.deps.field}}.
	Deps map[string]interface{}
	// MemoryID scopes the persistent record loaded into the system
	// prompt and updated after the run. Requires a configured store.
	MemoryID string
	// SkipMemoryUpdate suppresses the post-run memory-update call while
	// still loading the record for this run.
	SkipMemoryUpdate bool
}
