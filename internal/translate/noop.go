// Package translate turns user keywords into the language of the tag vocabulary.
package translate

import "context"

// Noop returns its input unchanged. It is used when translation is disabled.
type Noop struct{}

// Name returns the identifier of this translator.
func (Noop) Name() string { return "none" }

// Translate returns text as is.
func (Noop) Translate(_ context.Context, text string) (string, error) { return text, nil }
