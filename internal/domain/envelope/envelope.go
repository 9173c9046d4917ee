package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopvoice/function-gateway/internal/domain/function"
)

var (
	// ErrMalformedBody means the body is not a JSON object.
	ErrMalformedBody = errors.New("request body is not a JSON object")
	// ErrMissingAssistant means no assistant id was found in any known location.
	ErrMissingAssistant = errors.New("assistant id is missing")
	// ErrUnsupportedMessage means the message kind is unknown or carries no function call.
	ErrUnsupportedMessage = errors.New("unsupported message")
)

// Kind is the closed set of variants Parse produces.
type Kind int

const (
	KindInvocation Kind = iota + 1
	KindIgnorable
)

func (k Kind) String() string {
	switch k {
	case KindInvocation:
		return "invocation"
	case KindIgnorable:
		return "ignorable"
	default:
		return "unknown"
	}
}

// Message types sent by the voice provider.
const (
	TypeStatusUpdate       = "status-update"
	TypeConversationUpdate = "conversation-update"
	TypeSpeechUpdate       = "speech-update"
	TypeToolCalls          = "tool-calls"
	TypeFunctionCall       = "function-call"
)

var ignorableTypes = map[string]struct{}{
	TypeStatusUpdate:       {},
	TypeConversationUpdate: {},
	TypeSpeechUpdate:       {},
}

// Envelope is the canonical form of one inbound webhook body.
type Envelope struct {
	AssistantID string
	Kind        Kind
	// MessageType is the discriminator as received, empty for untyped bodies.
	MessageType string
	// Invocation is set for KindInvocation.
	Invocation *function.Invocation
	// Unhandled counts tool calls in the batch beyond the first one.
	Unhandled int
}

type rawCall struct {
	Name       string          `json:"name"`
	Parameters json.RawMessage `json:"parameters"`
	Arguments  json.RawMessage `json:"arguments"`
}

type rawToolCall struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Function *rawCall `json:"function"`
}

type rawMessage struct {
	Type         string        `json:"type"`
	ToolCalls    []rawToolCall `json:"toolCalls"`
	ToolCallList []rawToolCall `json:"toolCallList"`
	FunctionCall *rawCall      `json:"functionCall"`
	Function     *rawCall      `json:"function"`
}

type rawBody struct {
	AssistantID      string `json:"assistantId"`
	AssistantIDSnake string `json:"assistant_id"`
	Assistant        *struct {
		ID string `json:"id"`
	} `json:"assistant"`
	Call *struct {
		AssistantID string `json:"assistantId"`
	} `json:"call"`

	Message      *rawMessage   `json:"message"`
	FunctionCall *rawCall      `json:"functionCall"`
	Function     *rawCall      `json:"function"`
	ToolCalls    []rawToolCall `json:"toolCalls"`
}

// Parse normalizes a provider webhook body. The assistant id is checked first,
// so a body without one fails with ErrMissingAssistant whatever its kind.
func Parse(body []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrMalformedBody
	}

	var raw rawBody
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	env := &Envelope{AssistantID: raw.assistantID()}
	if env.AssistantID == "" {
		return nil, ErrMissingAssistant
	}

	var msgType string
	if raw.Message != nil {
		msgType = strings.TrimSpace(raw.Message.Type)
	}
	env.MessageType = msgType

	if _, ok := ignorableTypes[msgType]; ok {
		env.Kind = KindIgnorable
		return env, nil
	}

	var (
		inv *function.Invocation
		err error
	)
	switch msgType {
	case TypeToolCalls:
		calls := raw.Message.ToolCalls
		if len(calls) == 0 {
			calls = raw.Message.ToolCallList
		}
		inv, env.Unhandled, err = fromToolCalls(calls)
	case TypeFunctionCall:
		call := raw.Message.FunctionCall
		if call == nil {
			call = raw.FunctionCall
		}
		inv, err = fromCall(call, "")
	case "":
		inv, env.Unhandled, err = raw.scan()
	default:
		return nil, fmt.Errorf("%w: message type %q", ErrUnsupportedMessage, msgType)
	}
	if err != nil {
		return nil, err
	}

	env.Kind = KindInvocation
	env.Invocation = inv
	return env, nil
}

// assistantID follows a fixed priority: assistantId, assistant_id, assistant.id, call.assistantId.
func (b *rawBody) assistantID() string {
	candidates := []string{b.AssistantID, b.AssistantIDSnake}
	if b.Assistant != nil {
		candidates = append(candidates, b.Assistant.ID)
	}
	if b.Call != nil {
		candidates = append(candidates, b.Call.AssistantID)
	}
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}

// scan looks for a function call in the locations older payload shapes used.
func (b *rawBody) scan() (*function.Invocation, int, error) {
	var msg rawMessage
	if b.Message != nil {
		msg = *b.Message
	}
	for _, call := range []*rawCall{b.FunctionCall, msg.FunctionCall, b.Function, msg.Function} {
		if call != nil {
			inv, err := fromCall(call, "")
			return inv, 0, err
		}
	}
	if len(b.ToolCalls) > 0 {
		return fromToolCalls(b.ToolCalls)
	}
	return nil, 0, fmt.Errorf("%w: no function call found", ErrUnsupportedMessage)
}

func fromToolCalls(calls []rawToolCall) (*function.Invocation, int, error) {
	if len(calls) == 0 {
		return nil, 0, fmt.Errorf("%w: tool-calls message has no calls", ErrUnsupportedMessage)
	}
	first := calls[0]
	inv, err := fromCall(first.Function, first.ID)
	if err != nil {
		return nil, 0, err
	}
	return inv, len(calls) - 1, nil
}

func fromCall(call *rawCall, callID string) (*function.Invocation, error) {
	if call == nil {
		return nil, fmt.Errorf("%w: function call payload is missing", ErrUnsupportedMessage)
	}
	name := strings.TrimSpace(call.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: function name is missing", ErrUnsupportedMessage)
	}

	args := call.Arguments
	if isAbsent(args) {
		args = call.Parameters
	}
	params, err := decodeArguments(args)
	if err != nil {
		return nil, err
	}
	return &function.Invocation{Name: name, Parameters: params, CallID: callID}, nil
}

// decodeArguments accepts an object or a JSON-encoded string holding one.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	params := map[string]any{}
	if isAbsent(raw) {
		return params, nil
	}

	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, fmt.Errorf("%w: arguments: %v", ErrMalformedBody, err)
		}
		if strings.TrimSpace(encoded) == "" {
			return params, nil
		}
		raw = json.RawMessage(encoded)
	}

	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("%w: arguments must be an object", ErrMalformedBody)
	}
	if params == nil {
		params = map[string]any{}
	}
	return params, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
