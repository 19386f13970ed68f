package domain

import (
	"errors"
	"sort"
	"strings"
)

// ErrorKind classifica um erro para a camada de transporte.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthenticated
	KindPermissionDenied
	KindNotFound
	KindInvalidOperation
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindPermissionDenied:
		return "permission_denied"
	case KindNotFound:
		return "not_found"
	case KindInvalidOperation:
		return "invalid_operation"
	default:
		return "internal"
	}
}

// Error é o erro de aplicação. Message é segura para o cliente; Err guarda a causa
// e nunca é exposta fora do processo.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString(" [")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError anexa a causa err a um novo erro do tipo kind.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NewValidationError cria um erro de validação com mensagens por campo.
func NewValidationError(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: "Erro de validação", Fields: fields}
}

// NewFieldError é um atalho para um único campo inválido.
func NewFieldError(field, message string) *Error {
	return NewValidationError(map[string][]string{field: {message}})
}

func NewNotFoundError(message string) *Error {
	return NewError(KindNotFound, message)
}

func NewPermissionDeniedError(message string) *Error {
	return NewError(KindPermissionDenied, message)
}

func NewInvalidOperationError(message string) *Error {
	return NewError(KindInvalidOperation, message)
}

func NewInternalError(err error) *Error {
	return WrapError(KindInternal, "Erro interno do servidor.", err)
}

// KindOf devolve o tipo do primeiro *Error na cadeia de err, ou KindInternal.
func KindOf(err error) ErrorKind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind informa se err carrega um *Error do tipo kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
