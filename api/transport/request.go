package transport

// LoginRequest is the login form. Department and manager are only read for non-executive roles.
type LoginRequest struct {
	EmployeeID string `json:"employee_id"`
	PIN        string `json:"pin"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Manager    string `json:"manager"`
}

type ProfileSetupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}
