package render

import "io"

type Renderer[T any] interface {
	Render(result T) error
}

// JSONRenderer writes any result as indented JSON.
type JSONRenderer[T any] struct {
	out io.Writer
}

// NewJSONRenderer creates a JSON renderer
func NewJSONRenderer[T any](out io.Writer) *JSONRenderer[T] {
	return &JSONRenderer[T]{out: out}
}

func (r *JSONRenderer[T]) Render(result T) error {
	return JSON(r.out, result)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc[T any] func(result T) error

func (f RendererFunc[T]) Render(result T) error {
	return f(result)
}
