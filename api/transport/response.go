package transport

import "encoding/json"

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// FlowResponse tells the client where the login flow continues.
type FlowResponse struct {
	Next       string `json:"next"`
	State      string `json:"state"`
	Role       string `json:"role"`
	EmployeeID string `json:"employee_id"`
	Restricted bool   `json:"restricted"`
	Token      string `json:"token,omitempty"`
}

// LoginForm describes the login form to clients.
type LoginForm struct {
	Roles          []RoleOption `json:"roles"`
	Departments    []string     `json:"departments"`
	PINMaxLength   int          `json:"pin_max_length"`
	ProfileSetup   string       `json:"profile_setup"`
	Error          string       `json:"error,omitempty"`
	PendingSession bool         `json:"pending_session,omitempty"`
}

type RoleOption struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	Executive bool   `json:"executive"`
}
