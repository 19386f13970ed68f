package domain

// Query representa uma consulta sem efeitos colaterais.
type Query[T any] interface {
	QueryName() string
	Payload() T
}
