package domainerrors

// Envelope is the uniform error body written to clients.
type Envelope struct {
	Success bool `json:"success"`
	Error   Body `json:"error"`
}

// Body is the error member of Envelope.
type Body struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// Translation is the result of mapping any error onto the taxonomy.
type Translation struct {
	Status   int
	Envelope Envelope
	// Fault is true when err was not constructed through the taxonomy. The
	// caller must log it; its text never reaches the client.
	Fault bool
	// Err is the taxonomy error the response was derived from. For faults it
	// is the generic server error wrapping the original.
	Err *Error
}

// Translate maps err onto the wire envelope. Taxonomy errors keep their code,
// message and details; everything else becomes a generic server error.
func Translate(err error) Translation {
	de, ok := As(err)
	fault := false
	if !ok {
		de = Wrap(err, CodeInternal, "")
		fault = true
	}

	return Translation{
		Status: de.Status(),
		Envelope: Envelope{
			Success: false,
			Error: Body{
				Code:    de.Code,
				Message: de.Message,
				Details: details(de),
			},
		},
		Fault: fault,
		Err:   de,
	}
}

// details always yields an object: the error's own payload when present,
// otherwise {"detail": message}.
func details(e *Error) map[string]any {
	if len(e.Details) > 0 {
		out := make(map[string]any, len(e.Details))
		for k, v := range e.Details {
			out[k] = v
		}
		return out
	}
	return map[string]any{"detail": e.Message}
}

// IsClientError reports whether the code maps to a 4xx status.
func (c Code) IsClientError() bool {
	s := c.Status()
	return s >= 400 && s < 500
}
