package domain

// IDGenerator produz identificadores novos para entidades.
type IDGenerator[T any] func() T
