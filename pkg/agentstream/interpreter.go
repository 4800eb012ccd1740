package agentstream

import (
	"encoding/json"
	"errors"
	"strings"
)

// RoleAI marks a message produced by the agent. Only its content is output.
const RoleAI = "ai"

// Payload keys. They are matched exactly: "Type" or "MESSAGES" are other
// keys, not spellings of these.
const (
	keyMessages = "messages"
	keyType     = "type"
	keyContent  = "content"
	keyText     = "text"
)

var (
	errNotObject        = errors.New("payload is not a JSON object")
	errMessagesNotList  = errors.New("messages is not a list")
	errMessageNotObject = errors.New("message entry is not a JSON object")
)

// object is one JSON object level with its values left undecoded.
type object map[string]json.RawMessage

// Interpreter turns record payloads into assistant message deltas.
type Interpreter struct{}

// NewInterpreter returns a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Interpret parses a single record payload and returns the content of every
// non-empty "ai" message it carries, in order. A payload without a messages
// field, or with "messages": null, yields no deltas and no error. Anything
// else that does not have the event shape returns a *MalformedRecordError:
// invalid JSON, a top-level null, array or scalar, a messages value that is
// not a list, or a list entry that is not an object.
func (i *Interpreter) Interpret(record string) ([]string, error) {
	ev, err := decodeObject([]byte(record))
	if err != nil {
		return nil, &MalformedRecordError{Record: record, Err: err}
	}

	var messages []json.RawMessage
	if raw, ok := ev[keyMessages]; ok {
		if err := json.Unmarshal(raw, &messages); err != nil {
			return nil, &MalformedRecordError{Record: record, Err: errMessagesNotList}
		}
	}

	var deltas []string
	for _, raw := range messages {
		msg, err := decodeObject(raw)
		if err != nil {
			return nil, &MalformedRecordError{Record: record, Err: errMessageNotObject}
		}

		if stringField(msg, keyType) != RoleAI {
			continue
		}

		if text := contentText(msg[keyContent]); text != "" {
			deltas = append(deltas, text)
		}
	}

	return deltas, nil
}

// decodeObject decodes one object level. null decodes to a nil map without
// error in encoding/json, so it is rejected here explicitly.
func decodeObject(data []byte) (object, error) {
	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errNotObject
	}
	return obj, nil
}

// stringField returns obj[key] when it is a JSON string, else "".
func stringField(obj object, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// contentText returns message content as plain text. Content is either a
// JSON string or a list of content blocks, of which only "text" blocks
// count. Numbers, booleans, objects and null read as empty.
func contentText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var blocks []json.RawMessage
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}

	var b strings.Builder
	for _, rawBlock := range blocks {
		block, err := decodeObject(rawBlock)
		if err != nil || stringField(block, keyType) != keyText {
			continue
		}
		b.WriteString(stringField(block, keyText))
	}
	return b.String()
}
