package ai

import (
	"fmt"
	"net/http"
)

type Kind string

const (
	KindBadRequest          Kind = "bad_request"
	KindServerMisconfigured Kind = "server_misconfigured"
	KindUpstreamHTTP        Kind = "upstream_http"
	KindUpstreamError       Kind = "upstream_error"
	KindParseError          Kind = "parse_error"
	KindBadPlan             Kind = "bad_plan"
)

const maxRawLength = 2000

// Failure is a classified error: the kind selects the HTTP status and the envelope fields.
type Failure struct {
	Kind    Kind
	Status  int
	Body    string
	Message string
	Raw     string
}

func (f *Failure) Error() string {
	switch f.Kind {
	case KindUpstreamHTTP:
		return fmt.Sprintf("%s: status %d", f.Kind, f.Status)
	case KindParseError:
		return fmt.Sprintf("%s: model reply is not valid json", f.Kind)
	case KindBadPlan:
		return fmt.Sprintf("%s: model reply has no days", f.Kind)
	default:
		return fmt.Sprintf("%s: %s", f.Kind, f.Message)
	}
}

// HTTPStatus возвращает код ответа клиенту для данного вида ошибки.
func (f *Failure) HTTPStatus() int {
	switch f.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindServerMisconfigured:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// Envelope собирает тело ответа {"error": kind, ...}.
func (f *Failure) Envelope() map[string]any {
	out := map[string]any{"error": string(f.Kind)}
	switch f.Kind {
	case KindUpstreamHTTP:
		out["status"] = f.Status
		out["body"] = f.Body
	case KindParseError:
		out["raw"] = f.Raw
	case KindBadPlan:
	default:
		out["message"] = f.Message
	}
	return out
}

func BadRequest(message string) *Failure {
	return &Failure{Kind: KindBadRequest, Message: message}
}

func ServerMisconfigured(message string) *Failure {
	return &Failure{Kind: KindServerMisconfigured, Message: message}
}

func UpstreamError(err error) *Failure {
	return &Failure{Kind: KindUpstreamError, Message: err.Error()}
}

func UpstreamHTTP(status int, body []byte) *Failure {
	return &Failure{Kind: KindUpstreamHTTP, Status: status, Body: string(body)}
}

func ParseError(raw string) *Failure {
	return &Failure{Kind: KindParseError, Raw: truncateRunes(raw, maxRawLength)}
}

func BadPlan() *Failure {
	return &Failure{Kind: KindBadPlan}
}

func truncateRunes(value string, limit int) string {
	count := 0
	for i := range value {
		if count == limit {
			return value[:i]
		}
		count++
	}
	return value
}
