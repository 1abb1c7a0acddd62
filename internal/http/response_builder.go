package http

import (
	"encoding/json"
	"net/http"
)

// ResponseBuilder assembles a response from status, headers and body.
type ResponseBuilder struct {
	statusCode int
	headers    http.Header
	body       []byte
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(http.Header),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers.Set(name, value)
	return b
}

func (b *ResponseBuilder) Text(s string) *ResponseBuilder {
	b.headers.Set("Content-Type", "text/plain; charset=utf-8")
	b.body = []byte(s)
	return b
}

// JSON sets v as the body. Encoding failures turn the response into a 500.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		b.statusCode = http.StatusInternalServerError
		return b.Text("encode response")
	}
	b.headers.Set("Content-Type", "application/json")
	b.body = data
	return b
}

func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, values := range b.headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// MethodNotAllowed lists the accepted methods in Allow.
func MethodNotAllowed(allowed string) *ResponseBuilder {
	return NewResponse().Status(http.StatusMethodNotAllowed).Header("Allow", allowed)
}

// ValidationFailed reports a rejected field to API clients.
func ValidationFailed(field, message string) *ResponseBuilder {
	return NewResponse().Status(http.StatusUnprocessableEntity).JSON(map[string]string{
		"error": message,
		"field": field,
	})
}
