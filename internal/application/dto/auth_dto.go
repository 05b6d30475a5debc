package dto

// Roles de login.
const (
	LoginRoleCustomer = "customer"
	LoginRoleEmployee = "employee"
)

// CustomerSignupRequest alta de cliente (password en texto, se hashea en el almacén).
type CustomerSignupRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=100"`
	Age        int    `json:"age" validate:"required,min=1,max=119"`
	Email      string `json:"email" validate:"required,email"`
	Membership bool   `json:"membership"`
	Password   string `json:"password" validate:"required"`
}

// EmployeeSignupRequest alta de empleado.
type EmployeeSignupRequest struct {
	Name             string `json:"name" validate:"required,min=1,max=100"`
	Age              int    `json:"age" validate:"required,min=18,max=119"`
	DateOfEmployment string `json:"date_of_employment" validate:"required,datetime=2006-01-02"`
	Email            string `json:"email" validate:"required,email"`
	Role             string `json:"role" validate:"required,oneof=ADMIN MANAGER HEAD_OF_BRANCH STOCKER CASHIER"`
	Password         string `json:"password" validate:"required"`
}

// LoginRequest credenciales más la tabla donde buscar (customer | employee).
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=customer employee"`
}

// AuthResponse salida de signup/login. El token solo se incluye en login.
type AuthResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Email       string `json:"email"`
	Message     string `json:"message"`
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

// MeResponse principal autenticado.
type MeResponse struct {
	Subject string `json:"email"`
	Role    string `json:"role"`
	ID      int64  `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
}
