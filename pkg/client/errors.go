package client

import (
	"errors"
	"fmt"

	"github.com/joesantos1/querodesconto-parceiros/pkg/codeinput"
)

// Error codes carried in the "code" field of an API error body.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeAlreadyClaimed = "ALREADY_CLAIMED"
	CodeExhausted      = "EXHAUSTED"
	CodeUnavailable    = "UNAVAILABLE"
	CodeAlreadyUsed    = "ALREADY_USED"
	CodeExpired        = "EXPIRED"
	CodeCodeMismatch   = "CODE_MISMATCH"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeAlreadyMember  = "ALREADY_MEMBER"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeSessionRevoked = "SESSION_REVOKED"
	CodeInternal       = "INTERNAL"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyClaimed = errors.New("coupon already claimed")
	ErrExhausted      = errors.New("coupon sold out")
	ErrUnavailable    = errors.New("coupon unavailable")
	ErrAlreadyUsed    = errors.New("coupon already used")
	ErrExpired        = errors.New("coupon expired")
	ErrCodeMismatch   = errors.New("code does not belong to this user")
	ErrInvalidInput   = errors.New("invalid input")
	ErrAlreadyMember  = errors.New("already a team member")
	ErrUnauthorized   = errors.New("session invalid")
	ErrSessionRevoked = errors.New("session revoked")
	ErrServer         = errors.New("server error")

	// ErrNetwork wraps transport failures. Calls are never retried
	// automatically; the user retries by hand.
	ErrNetwork = errors.New("network error")
)

var kindByCode = map[string]error{
	CodeNotFound:       ErrNotFound,
	CodeAlreadyClaimed: ErrAlreadyClaimed,
	CodeExhausted:      ErrExhausted,
	CodeUnavailable:    ErrUnavailable,
	CodeAlreadyUsed:    ErrAlreadyUsed,
	CodeExpired:        ErrExpired,
	CodeCodeMismatch:   ErrCodeMismatch,
	CodeInvalidInput:   ErrInvalidInput,
	CodeAlreadyMember:  ErrAlreadyMember,
	CodeUnauthorized:   ErrUnauthorized,
	CodeForbidden:      ErrUnauthorized,
	CodeSessionRevoked: ErrSessionRevoked,
}

// APIError is a non-2xx response. It unwraps to one of the sentinel errors
// above so callers can match it with errors.Is.
type APIError struct {
	Status  int
	Code    string
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d %s", e.Status, e.Code)
	}
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	if kind, ok := kindByCode[e.Code]; ok {
		return kind
	}
	switch {
	case e.Status == 401 || e.Status == 403:
		return ErrUnauthorized
	case e.Status == 404:
		return ErrNotFound
	case e.Status == 410:
		return ErrExpired
	case e.Status >= 500:
		return ErrServer
	}
	return ErrInvalidInput
}

// endsSession reports whether the response must force a sign-out.
func (e *APIError) endsSession() bool {
	return e.Code == CodeSessionRevoked || e.Status == 401 || e.Status == 403
}

// Message is the text shown to the user for err. Every failure kind gets its
// own wording so a merchant can tell an unknown code from a used or expired one.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionRevoked):
		return "Sua conta foi acessada em outro dispositivo. Você foi desconectado por segurança."
	case errors.Is(err, ErrUnauthorized):
		return "Sua sessão expirou ou você não tem permissão para acessar este recurso."
	case errors.Is(err, codeinput.ErrEmptyCode):
		return "Digite o código do cupom."
	case errors.Is(err, ErrNetwork):
		return "Sem conexão com o servidor. Verifique sua internet e tente novamente."
	case errors.Is(err, ErrNotFound):
		return "Código inválido. Verifique o código e tente novamente."
	case errors.Is(err, ErrAlreadyUsed):
		return "Este cupom já foi utilizado."
	case errors.Is(err, ErrExpired):
		return "Este cupom está expirado."
	case errors.Is(err, ErrAlreadyClaimed):
		return "Você já possui este cupom."
	case errors.Is(err, ErrExhausted):
		return "Os cupons desta oferta se esgotaram."
	case errors.Is(err, ErrUnavailable):
		return "Este cupom não está disponível."
	case errors.Is(err, ErrCodeMismatch):
		return "O código não pertence a este cliente."
	case errors.Is(err, ErrAlreadyMember):
		return "Este lojista já faz parte da equipe."
	case errors.Is(err, ErrInvalidInput):
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message
		}
		return "Dados inválidos."
	}
	return "Não foi possível concluir a operação. Tente novamente mais tarde."
}
