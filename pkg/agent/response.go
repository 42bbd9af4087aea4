package agent

import "net/http"

// MessageVersion is the envelope version written on every reply.
const MessageVersion = "1.0"

// Response is the tool reply envelope.
type Response struct {
	MessageVersion string       `json:"messageVersion"`
	Response       ResponseBody `json:"response"`
}

// ResponseBody echoes the routing fields of the request.
type ResponseBody struct {
	ActionGroup    string                  `json:"actionGroup"`
	APIPath        string                  `json:"apiPath"`
	HTTPMethod     string                  `json:"httpMethod"`
	HTTPStatusCode int                     `json:"httpStatusCode"`
	ResponseBody   map[string]MediaPayload `json:"responseBody"`
}

// MediaPayload wraps the body for one content type.
type MediaPayload struct {
	Body any `json:"body"`
}

// ErrorBody is the body of every error reply.
type ErrorBody struct {
	Error string `json:"error"`
}

// Respond wraps body in the reply envelope for ev. A nil event yields empty
// routing fields.
func Respond(ev *Event, status int, body any) Response {
	rb := ResponseBody{
		HTTPMethod:     http.MethodPost,
		HTTPStatusCode: status,
		ResponseBody:   map[string]MediaPayload{mediaJSON: {Body: body}},
	}
	if ev != nil {
		rb.ActionGroup = ev.ActionGroup
		rb.APIPath = ev.APIPath
		if ev.HTTPMethod != "" {
			rb.HTTPMethod = ev.HTTPMethod
		}
	}
	return Response{MessageVersion: MessageVersion, Response: rb}
}

// RespondError is Respond with an ErrorBody.
func RespondError(ev *Event, status int, msg string) Response {
	return Respond(ev, status, ErrorBody{Error: msg})
}

// StatusCode returns the wrapped HTTP status.
func (r Response) StatusCode() int {
	return r.Response.HTTPStatusCode
}

// Payload returns the wrapped JSON body.
func (r Response) Payload() any {
	return r.Response.ResponseBody[mediaJSON].Body
}
