package entity

// Roles válidos para Employee.
const (
	RoleAdmin        = "ADMIN"
	RoleManager      = "MANAGER"
	RoleHeadOfBranch = "HEAD_OF_BRANCH"
	RoleStocker      = "STOCKER"
	RoleCashier      = "CASHIER"
)

// RoleCustomer rol que llevan los tokens emitidos a clientes.
const RoleCustomer = "CUSTOMER"

// Roles devuelve la enumeración cerrada de roles de empleado.
func Roles() []string {
	return []string{RoleAdmin, RoleManager, RoleHeadOfBranch, RoleStocker, RoleCashier}
}

// Employee empleado; DateOfEndOfEmployment nil = empleado activo.
type Employee struct {
	ID                    int64  `json:"id"`
	Name                  string `json:"name"`
	Age                   int64  `json:"age"`
	DateOfEmployment      Date   `json:"date_of_employment"`
	DateOfEndOfEmployment *Date  `json:"date_of_end_of_employment"`
	Email                 string `json:"email"`
	Role                  string `json:"role"`
	PasswordHash          string `json:"-"`
}

// Active indica si sigue empleado.
func (e *Employee) Active() bool { return e.DateOfEndOfEmployment == nil }

// EmployeeFromRecord decodifica una fila normalizada.
func EmployeeFromRecord(r Record) *Employee {
	if r == nil {
		return nil
	}
	return &Employee{
		ID:                    r.ID(),
		Name:                  r.String(ColName),
		Age:                   r.Int(ColAge),
		DateOfEmployment:      r.Date(ColDateOfEmployment),
		DateOfEndOfEmployment: r.DatePtr(ColDateOfEndOfEmployment),
		Email:                 r.String(ColEmail),
		Role:                  r.String(ColRole),
		PasswordHash:          r.String(ColPassword),
	}
}
