package model

// Source yields captured frames in arrival order.
// Next returns io.EOF once the stream is exhausted.
type Source interface {
	Next() (Frame, error)
	Close() error
}
