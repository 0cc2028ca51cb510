package retry

import "errors"

// ClassifiedError pairs a failure with its Descriptor so callers branch on
// an explicit tag instead of re-parsing error text.
type ClassifiedError struct {
	Descriptor Descriptor
	Err        error
}

// Classified wraps err with its classification. context is folded into
// validation messages, see Classify.
func Classified(err error, context string) *ClassifiedError {
	return &ClassifiedError{Descriptor: Classify(err, context), Err: err}
}

func (e *ClassifiedError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Descriptor.UserMessage
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Describe returns the Descriptor for err. A *ClassifiedError keeps the
// Descriptor it already carries; anything else is classified fresh.
func Describe(err error) Descriptor {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Descriptor
	}
	return Classify(err, "")
}
