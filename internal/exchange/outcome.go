package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"chatbox/internal/chatapi"
)

// Kind tags the terminal result of one exchange.
type Kind int

const (
	KindSuccess Kind = iota
	KindConnection
	KindServer
	KindFormat
	KindParse
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindConnection:
		return "connection_error"
	case KindServer:
		return "server_error"
	case KindFormat:
		return "format_error"
	case KindParse:
		return "parse_error"
	case KindUnknown:
		return "unknown_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	StatusReady      = "ready"
	StatusWorking    = "processing..."
	StatusConnection = "connection error"
	StatusServer     = "an error occurred"
	StatusFormat     = "format error"
	StatusParse      = "parse error"
	StatusUnknown    = "unknown error"
	StatusClearBusy  = "cannot clear while a reply is pending"
)

const (
	MessageConnection = "Unable to reach the server. Please check that the backend is running."
	MessageFormat     = "Server returned data in an unexpected format"
	MessageParse      = "Could not read the response from the server"
	MessageUnknown    = "Invalid response from server"
)

// Outcome is the classified result of one exchange. For KindSuccess, Message is the assistant
// reply; otherwise it is the text surfaced to the user.
type Outcome struct {
	Kind    Kind
	Message string
	Status  string
}

func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// Notice is the inline error line shown in the transcript view. Empty on success.
func (o Outcome) Notice() string {
	switch o.Kind {
	case KindSuccess:
		return ""
	case KindConnection:
		return o.Message
	default:
		return "Error: " + o.Message
	}
}

// Classify decides the outcome of an exchange. The checks form a strict priority chain:
// the first one that matches wins.
func Classify(reply chatapi.Reply, err error) Outcome {
	if err != nil {
		return Outcome{Kind: KindConnection, Message: MessageConnection, Status: StatusConnection}
	}

	if !reply.OK() {
		if payload, ok := decodeObject(reply.Body); ok && strings.TrimSpace(payload.Error) != "" {
			return Outcome{Kind: KindServer, Message: payload.Error, Status: StatusServer}
		}
		return Outcome{
			Kind:    KindServer,
			Message: fmt.Sprintf("HTTP %d: %s", reply.StatusCode, reply.StatusText),
			Status:  StatusServer,
		}
	}

	if !isJSON(reply.ContentType) {
		return Outcome{Kind: KindFormat, Message: MessageFormat, Status: StatusFormat}
	}

	if reply.ReadErr != nil {
		return Outcome{Kind: KindParse, Message: MessageParse, Status: StatusParse}
	}
	payload, ok := decodeObject(reply.Body)
	if !ok {
		return Outcome{Kind: KindParse, Message: MessageParse, Status: StatusParse}
	}

	switch {
	case strings.TrimSpace(payload.Response) != "":
		return Outcome{Kind: KindSuccess, Message: payload.Response, Status: StatusReady}
	case strings.TrimSpace(payload.Error) != "":
		return Outcome{Kind: KindServer, Message: payload.Error, Status: StatusServer}
	default:
		return Outcome{Kind: KindUnknown, Message: MessageUnknown, Status: StatusUnknown}
	}
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), chatapi.JSONMediaType)
}

// decodeObject accepts only a JSON object (or null) with string fields.
func decodeObject(body []byte) (chatapi.Response, bool) {
	var payload chatapi.Response
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return payload, false
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return payload, false
	}
	return payload, true
}
