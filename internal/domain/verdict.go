package domain

// Messages attached to verdicts. Transport failures use the first two or
// "Request Error: <text>".
const (
	MessageOK              = "OK"
	MessageTimeout         = "Timeout"
	MessageConnectionError = "Connection Error"
	MessagePlaceholder     = "Placeholder URL"
)

// LinkCheck is the outcome of one network check of a URL. A failed check
// has IsValid false and StatusCode 0 when no response was received.
type LinkCheck struct {
	IsValid    bool   `json:"is_valid"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// VerdictKind is the tri-state outcome for one source in one run.
type VerdictKind string

const (
	VerdictValid       VerdictKind = "valid"
	VerdictInvalid     VerdictKind = "invalid"
	VerdictPlaceholder VerdictKind = "placeholder"
)

// Verdict is exactly one of Valid(status), Invalid(status, reason) or
// Placeholder. Placeholder verdicts never carry a status code.
type Verdict struct {
	Kind       VerdictKind `json:"kind"`
	StatusCode int         `json:"status_code"`
	Reason     string      `json:"reason,omitempty"`
}

// PlaceholderVerdict returns the verdict for a URL that was never checked.
func PlaceholderVerdict() Verdict {
	return Verdict{Kind: VerdictPlaceholder, Reason: MessagePlaceholder}
}

// VerdictFromCheck maps a network check onto Valid or Invalid.
func VerdictFromCheck(c LinkCheck) Verdict {
	if c.IsValid {
		return Verdict{Kind: VerdictValid, StatusCode: c.StatusCode}
	}
	return Verdict{Kind: VerdictInvalid, StatusCode: c.StatusCode, Reason: c.Message}
}

// IsValid reports whether the verdict is Valid.
func (v Verdict) IsValid() bool { return v.Kind == VerdictValid }

// IsPlaceholder reports whether the verdict is Placeholder.
func (v Verdict) IsPlaceholder() bool { return v.Kind == VerdictPlaceholder }

// ErrorMessage is the nullable reason stored in result details: nil for
// valid links, the failure reason otherwise.
func (v Verdict) ErrorMessage() *string {
	if v.Kind == VerdictValid {
		return nil
	}
	msg := v.Reason
	return &msg
}
