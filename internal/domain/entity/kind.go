package entity

import (
	"fmt"
	"strings"
)

// Kind es el conjunto cerrado de entidades persistidas. Cada caso lleva su tabla y sus reglas.
type Kind int

const (
	KindCustomer Kind = iota + 1
	KindEmployee
	KindProduct
	KindBranch
	KindTransaction
	KindTransactionLine
)

var allKinds = []Kind{KindCustomer, KindEmployee, KindProduct, KindBranch, KindTransaction, KindTransactionLine}

// Kinds devuelve todas las entidades en orden de dependencia (referenciadas primero).
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

func (k Kind) String() string {
	switch k {
	case KindCustomer:
		return "Customer"
	case KindEmployee:
		return "Employee"
	case KindProduct:
		return "Product"
	case KindBranch:
		return "Branch"
	case KindTransaction:
		return "Transaction"
	case KindTransactionLine:
		return "TransactionLine"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Valid indica si k pertenece al conjunto cerrado.
func (k Kind) Valid() bool {
	return k >= KindCustomer && k <= KindTransactionLine
}

// Schema devuelve la tabla de reglas de la entidad. Panic si k no es válido.
func (k Kind) Schema() *Schema {
	s, ok := schemas[k]
	if !ok {
		panic(fmt.Sprintf("entity: kind desconocido %d", int(k)))
	}
	return s
}

// Table nombre de la tabla de la entidad.
func (k Kind) Table() string { return k.Schema().Table }

// ParseKind acepta el nombre de la entidad o el de su recurso REST ("customers", "Customer").
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, k := range allKinds {
		sc := k.Schema()
		if norm == strings.ToLower(k.String()) || norm == sc.Table || norm == sc.Resource {
			return k, nil
		}
	}
	return 0, fmt.Errorf("entity: kind desconocido %q", s)
}

// FieldType tipo lógico de una columna.
type FieldType int

const (
	TypeText FieldType = iota + 1
	TypeInt
	TypeBool
	TypeMoney
	TypeDate
	TypeTime
	TypeEmail
	TypeEnum
	TypeSecret
	TypeRef
)

func (t FieldType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeInt:
		return "integer"
	case TypeBool:
		return "boolean"
	case TypeMoney:
		return "money"
	case TypeDate:
		return "date"
	case TypeTime:
		return "time"
	case TypeEmail:
		return "email"
	case TypeEnum:
		return "enum"
	case TypeSecret:
		return "secret"
	case TypeRef:
		return "reference"
	default:
		return "unknown"
	}
}

// Field regla de una columna. Min/Max acotan longitud en texto y valor en números.
type Field struct {
	Name      string
	Type      FieldType
	Required  bool
	Nullable  bool
	Immutable bool
	Min       *int64
	Max       *int64
	Enum      []string
	Ref       Kind // tabla referenciada cuando Type == TypeRef
	Owner     bool // la fila se elimina junto con la referenciada
}

// Schema reglas y nombre de tabla de una entidad.
type Schema struct {
	Kind     Kind
	Table    string
	Resource string // segmento REST
	Fields   []Field
	// WorkflowOwned: solo el flujo de ventas crea filas de esta entidad.
	WorkflowOwned bool
	// InsertOnly: sin update ni delete individual.
	InsertOnly bool
}

// Field busca la regla de una columna.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Columns nombres de columna en orden de declaración, sin id.
func (s *Schema) Columns() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}

// HasSecret indica si la entidad guarda credenciales.
func (s *Schema) HasSecret() bool {
	for _, f := range s.Fields {
		if f.Type == TypeSecret {
			return true
		}
	}
	return false
}

func bound(n int64) *int64 { return &n }

var schemas = map[Kind]*Schema{
	KindCustomer: {
		Kind:     KindCustomer,
		Table:    "customers",
		Resource: "customers",
		Fields: []Field{
			{Name: ColName, Type: TypeText, Required: true, Min: bound(1), Max: bound(100)},
			{Name: ColAge, Type: TypeInt, Required: true, Min: bound(1), Max: bound(119)},
			{Name: ColEmail, Type: TypeEmail, Required: true},
			{Name: ColMembership, Type: TypeBool, Required: true},
			{Name: ColPassword, Type: TypeSecret, Required: true, Min: bound(6)},
		},
	},
	KindEmployee: {
		Kind:     KindEmployee,
		Table:    "employees",
		Resource: "employees",
		Fields: []Field{
			{Name: ColName, Type: TypeText, Required: true, Min: bound(1), Max: bound(100)},
			{Name: ColAge, Type: TypeInt, Required: true, Min: bound(18), Max: bound(119)},
			{Name: ColDateOfEmployment, Type: TypeDate, Required: true},
			{Name: ColDateOfEndOfEmployment, Type: TypeDate, Nullable: true},
			{Name: ColEmail, Type: TypeEmail, Required: true, Immutable: true},
			{Name: ColRole, Type: TypeEnum, Required: true, Enum: Roles()},
			{Name: ColPassword, Type: TypeSecret, Required: true, Min: bound(6)},
		},
	},
	KindProduct: {
		Kind:     KindProduct,
		Table:    "products",
		Resource: "products",
		Fields: []Field{
			{Name: ColName, Type: TypeText, Required: true, Min: bound(1), Max: bound(100)},
			{Name: ColStock, Type: TypeInt, Required: true, Min: bound(0)},
			{Name: ColSellPrice, Type: TypeMoney, Required: true, Min: bound(0)},
			{Name: ColCost, Type: TypeMoney, Required: true, Min: bound(0)},
			{Name: ColCategoryID, Type: TypeText, Required: true, Min: bound(1), Max: bound(10)},
			{Name: ColCategory, Type: TypeText, Required: true, Min: bound(1), Max: bound(50)},
		},
	},
	KindBranch: {
		Kind:     KindBranch,
		Table:    "branches",
		Resource: "branches",
		Fields: []Field{
			{Name: ColName, Type: TypeText, Required: true, Min: bound(1), Max: bound(100)},
			{Name: ColLocation, Type: TypeText, Required: true, Min: bound(1), Max: bound(255)},
			{Name: ColSize, Type: TypeInt, Required: true, Min: bound(0)},
			{Name: ColTotalStock, Type: TypeInt, Required: true, Min: bound(0)},
		},
	},
	KindTransaction: {
		Kind:          KindTransaction,
		Table:         "transactions",
		Resource:      "transactions",
		WorkflowOwned: true,
		Fields: []Field{
			{Name: ColBranchID, Type: TypeRef, Nullable: true, Ref: KindBranch, Min: bound(1)},
			{Name: ColCustomerID, Type: TypeRef, Nullable: true, Ref: KindCustomer, Min: bound(1)},
			{Name: ColDateOfTransaction, Type: TypeDate, Required: true},
			{Name: ColTimeOfTransaction, Type: TypeTime, Required: true},
			{Name: ColTotalAmount, Type: TypeMoney, Required: true, Immutable: true, Min: bound(0)},
		},
	},
	KindTransactionLine: {
		Kind:          KindTransactionLine,
		Table:         "transaction_lines",
		Resource:      "details",
		WorkflowOwned: true,
		InsertOnly:    true,
		Fields: []Field{
			{Name: ColTransactionID, Type: TypeRef, Required: true, Ref: KindTransaction, Owner: true, Min: bound(1)},
			{Name: ColProductID, Type: TypeRef, Required: true, Ref: KindProduct, Min: bound(1)},
			{Name: ColQuantity, Type: TypeInt, Required: true, Min: bound(1)},
			{Name: ColPrice, Type: TypeMoney, Required: true, Min: bound(0)},
		},
	},
}

// Columnas conocidas.
const (
	ColID                    = "id"
	ColName                  = "name"
	ColAge                   = "age"
	ColEmail                 = "email"
	ColMembership            = "membership"
	ColPassword              = "password"
	ColDateOfEmployment      = "date_of_employment"
	ColDateOfEndOfEmployment = "date_of_end_of_employment"
	ColRole                  = "role"
	ColStock                 = "stock"
	ColSellPrice             = "sell_price"
	ColCost                  = "cost"
	ColCategoryID            = "category_id"
	ColCategory              = "category"
	ColLocation              = "location"
	ColSize                  = "size"
	ColTotalStock            = "total_stock"
	ColBranchID              = "branch_id"
	ColCustomerID            = "customer_id"
	ColDateOfTransaction     = "date_of_transaction"
	ColTimeOfTransaction     = "time_of_transaction"
	ColTotalAmount           = "total_amount"
	ColTransactionID         = "transaction_id"
	ColProductID             = "product_id"
	ColQuantity              = "quantity"
	ColPrice                 = "price"
)
