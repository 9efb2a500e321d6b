package domain

import "fmt"

// Warning describes degraded input that the pipeline worked around.
type Warning struct {
	Source  string
	Column  string
	Message string
}

func (w Warning) String() string {
	if w.Column != "" {
		return fmt.Sprintf("%s.%s: %s", w.Source, w.Column, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Source, w.Message)
}
