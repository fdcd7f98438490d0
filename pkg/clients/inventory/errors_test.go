package inventory

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
)

func TestNormalizeResponse(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    models.ErrorKind
		message string
	}{
		{
			name:    "mensagem fallback on conflict",
			status:  409,
			body:    `{"mensagem":"Produto já cadastrado","codigo":409}`,
			kind:    models.ErrorConflict,
			message: "Produto já cadastrado",
		},
		{
			name:    "message on bad request",
			status:  400,
			body:    `{"message":"Bad input"}`,
			kind:    models.ErrorValidation,
			message: "Bad input",
		},
		{
			name:    "message wins over mensagem",
			status:  400,
			body:    `{"mensagem":"segundo","message":"first"}`,
			kind:    models.ErrorValidation,
			message: "first",
		},
		{
			name:    "empty message falls through to mensagem",
			status:  409,
			body:    `{"message":"","mensagem":"duplicado"}`,
			kind:    models.ErrorConflict,
			message: "duplicado",
		},
		{
			name:    "bare json string body",
			status:  400,
			body:    `"nome obrigatório"`,
			kind:    models.ErrorValidation,
			message: "nome obrigatório",
		},
		{
			name:    "plain text body is a bare string",
			status:  409,
			body:    "already exists",
			kind:    models.ErrorConflict,
			message: "already exists",
		},
		{
			name:    "object message is serialized",
			status:  400,
			body:    `{"message":{"field":"preco","reason":"negative"}}`,
			kind:    models.ErrorValidation,
			message: `{"field":"preco","reason":"negative"}`,
		},
		{
			name:    "other status with message is unknown",
			status:  404,
			body:    `{"mensagem":"Produto não encontrado","codigo":404}`,
			kind:    models.ErrorUnknown,
			message: "Produto não encontrado",
		},
		{
			name:    "structured body without message",
			status:  500,
			body:    `{"timestamp":"2024-01-01","error":"Internal Server Error"}`,
			kind:    models.ErrorUnknown,
			message: "request failed with status 500",
		},
		{
			name:    "array body has no message",
			status:  422,
			body:    `["a","b"]`,
			kind:    models.ErrorUnknown,
			message: "request failed with status 422",
		},
		{
			name:    "empty body",
			status:  502,
			body:    "",
			kind:    models.ErrorUnknown,
			message: "request failed with status 502",
		},
		{
			name:    "forbidden without body",
			status:  403,
			body:    "",
			kind:    models.ErrorUnauthorized,
			message: msgUnauthorized,
		},
		{
			name:    "unauthorized keeps server message",
			status:  401,
			body:    `{"message":"token expired"}`,
			kind:    models.ErrorUnauthorized,
			message: "token expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := normalizeResponse(tt.status, []byte(tt.body))

			assert.Equal(t, tt.kind, report.Kind)
			assert.Equal(t, tt.message, report.Message)
			assert.Equal(t, tt.status, report.Status())
		})
	}
}

func TestNormalizeTransport(t *testing.T) {
	refused := &url.Error{Op: "Get", URL: "http://127.0.0.1:1/produtos", Err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}}
	timeout := &url.Error{Op: "Get", URL: "http://x/produtos", Err: context.DeadlineExceeded}
	badURL := &url.Error{Op: "parse", URL: "::", Err: errors.New("missing protocol scheme")}

	assert.Equal(t, models.ErrorNetworkUnavailable, normalizeTransport(refused).Kind)
	assert.Equal(t, models.ErrorNetworkUnavailable, normalizeTransport(timeout).Kind)
	assert.Equal(t, models.ErrorUnknown, normalizeTransport(badURL).Kind)
	assert.Equal(t, models.ErrorUnknown, normalizeTransport(fmt.Errorf("json: unsupported value")).Kind)
	assert.Nil(t, normalizeTransport(refused).SourceStatus)
}

func TestConflictingMessages(t *testing.T) {
	assert.True(t, conflictingMessages([]byte(`{"message":"a","mensagem":"b"}`)))
	assert.False(t, conflictingMessages([]byte(`{"message":"a","mensagem":"a"}`)))
	assert.False(t, conflictingMessages([]byte(`{"mensagem":"b"}`)))
	assert.False(t, conflictingMessages([]byte(`"plain"`)))
	assert.False(t, conflictingMessages(nil))
}
