package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/supermercado-api/internal/application/dto"
	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/pkg/jwt"
	"github.com/jhoicas/supermercado-api/pkg/logger"
	"github.com/jhoicas/supermercado-api/pkg/password"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Store lo que auth necesita del almacén genérico.
type Store interface {
	Create(ctx context.Context, kind entity.Kind, fields entity.Fields) (int64, error)
	List(ctx context.Context, kind entity.Kind, filters entity.Filters, offset, limit int) ([]entity.Record, error)
	Update(ctx context.Context, kind entity.Kind, id int64, patch entity.Fields) (entity.Record, error)
	FindByEmail(ctx context.Context, kind entity.Kind, email string) (entity.Record, error)
}

// LoginObserver recibe el resultado de cada intento de login (métricas).
type LoginObserver interface {
	ObserveLogin(role string, ok bool)
}

type nopObserver struct{}

func (nopObserver) ObserveLogin(string, bool) {}

// UseCase registro, login y verificación de tokens de clientes y empleados.
type UseCase struct {
	store    Store
	jwtCfg   JWTConfig
	observer LoginObserver
	log      *logger.Logger
	now      func() time.Time
	verify   func(plaintext, encoded string) bool
}

// NewUseCase construye el caso de uso de auth. observer puede ser nil.
func NewUseCase(store Store, jwtCfg JWTConfig, observer LoginObserver, log *logger.Logger) *UseCase {
	if observer == nil {
		observer = nopObserver{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{store: store, jwtCfg: jwtCfg, observer: observer, log: log.Component("auth"), now: time.Now, verify: password.Verify}
}

// SignupCustomer crea un cliente. La contraseña debe cumplir la política y el email no puede existir
// ni en clientes ni en empleados.
func (uc *UseCase) SignupCustomer(ctx context.Context, in dto.CustomerSignupRequest) (*dto.AuthResponse, error) {
	email := strings.TrimSpace(in.Email)
	if err := uc.checkSignup(ctx, email, in.Password); err != nil {
		return nil, err
	}
	id, err := uc.store.Create(ctx, entity.KindCustomer, entity.Fields{
		entity.ColName:       in.Name,
		entity.ColAge:        in.Age,
		entity.ColEmail:      email,
		entity.ColMembership: in.Membership,
		entity.ColPassword:   in.Password,
	})
	if err != nil {
		return nil, signupError(err)
	}
	uc.log.Info().Int64("id", id).Str("email", email).Msg("cliente registrado")
	return &dto.AuthResponse{
		ID:      id,
		Name:    in.Name,
		Role:    dto.LoginRoleCustomer,
		Email:   email,
		Message: "Customer account created successfully",
	}, nil
}

// SignupEmployee crea un empleado con las mismas reglas que SignupCustomer.
func (uc *UseCase) SignupEmployee(ctx context.Context, in dto.EmployeeSignupRequest) (*dto.AuthResponse, error) {
	email := strings.TrimSpace(in.Email)
	if err := uc.checkSignup(ctx, email, in.Password); err != nil {
		return nil, err
	}
	id, err := uc.store.Create(ctx, entity.KindEmployee, entity.Fields{
		entity.ColName:             in.Name,
		entity.ColAge:              in.Age,
		entity.ColDateOfEmployment: in.DateOfEmployment,
		entity.ColEmail:            email,
		entity.ColRole:             in.Role,
		entity.ColPassword:         in.Password,
	})
	if err != nil {
		return nil, signupError(err)
	}
	uc.log.Info().Int64("id", id).Str("email", email).Str("role", in.Role).Msg("empleado registrado")
	return &dto.AuthResponse{
		ID:      id,
		Name:    in.Name,
		Role:    in.Role,
		Email:   email,
		Message: "Employee account created successfully",
	}, nil
}

// Login verifica email y contraseña en la tabla del rol indicado (customer por defecto) y emite un JWT.
// Usuario inexistente, sin credencial o contraseña incorrecta devuelven el mismo ErrInvalidCredentials.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error) {
	role := in.Role
	if role == "" {
		role = dto.LoginRoleCustomer
	}
	kind := entity.KindCustomer
	if role == dto.LoginRoleEmployee {
		kind = entity.KindEmployee
	}
	email := strings.TrimSpace(in.Email)

	rec, err := uc.store.FindByEmail(ctx, kind, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	// Los rechazos sin credencial también pagan una verificación completa.
	if rec == nil {
		uc.verify(in.Password, password.DummyHash())
		uc.log.Warn().Str("email", email).Str("role", role).Msg("login de usuario inexistente")
		return nil, uc.rejectLogin(role)
	}
	stored := rec.String(entity.ColPassword)
	if stored == "" {
		uc.verify(in.Password, password.DummyHash())
		uc.log.Warn().Str("email", email).Msg("usuario sin credencial almacenada")
		return nil, uc.rejectLogin(role)
	}
	if !uc.verify(in.Password, stored) {
		uc.log.Warn().Str("email", email).Msg("contraseña incorrecta")
		return nil, uc.rejectLogin(role)
	}
	if password.NeedsRehash(stored) {
		uc.log.Info().Str("email", email).Msg("credencial con parámetros antiguos, requiere rehash")
	}

	resp := &dto.AuthResponse{ID: rec.ID(), Name: rec.String(entity.ColName), Email: email, Message: "Login successful"}
	claimRole := entity.RoleCustomer
	resp.Role = dto.LoginRoleCustomer
	if kind == entity.KindEmployee {
		emp := entity.EmployeeFromRecord(rec)
		if emp.DateOfEndOfEmployment != nil && !emp.DateOfEndOfEmployment.After(uc.now()) {
			uc.log.Warn().Str("email", email).Msg("login de empleado dado de baja")
			uc.observer.ObserveLogin(role, false)
			return nil, domain.ErrForbidden
		}
		claimRole = emp.Role
		resp.Role = emp.Role
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, email, claimRole, uc.jwtCfg.Issuer, uc.jwtCfg.TTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	uc.observer.ObserveLogin(role, true)
	uc.log.Info().Str("email", email).Str("role", resp.Role).Msg("login exitoso")

	resp.AccessToken = token
	resp.TokenType = "bearer"
	resp.ExpiresIn = int(uc.jwtCfg.TTL.Seconds())
	return resp, nil
}

// Authenticate valida un token. Cualquier fallo es domain.ErrUnauthorized, sin detalle.
func (uc *UseCase) Authenticate(token string) (*jwt.Claims, error) {
	claims, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Me devuelve el principal del token tal como está guardado. Si ya no existe, ErrUnauthorized.
func (uc *UseCase) Me(ctx context.Context, claims *jwt.Claims) (*dto.MeResponse, error) {
	if claims == nil {
		return nil, domain.ErrUnauthorized
	}
	kind := entity.KindEmployee
	if claims.Role == entity.RoleCustomer {
		kind = entity.KindCustomer
	}
	rec, err := uc.store.FindByEmail(ctx, kind, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	if rec == nil {
		return nil, domain.ErrUnauthorized
	}
	return &dto.MeResponse{
		Subject: claims.Subject,
		Role:    claims.Role,
		ID:      rec.ID(),
		Name:    rec.String(entity.ColName),
	}, nil
}

func (uc *UseCase) checkSignup(ctx context.Context, email, plaintext string) error {
	if err := password.ValidateStrength(plaintext); err != nil {
		var pErr *password.PolicyError
		if errors.As(err, &pErr) {
			return &domain.ValidationError{Field: entity.ColPassword, Reason: pErr.Reason}
		}
		return err
	}
	for _, kind := range []entity.Kind{entity.KindCustomer, entity.KindEmployee} {
		rec, err := uc.store.FindByEmail(ctx, kind, email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if rec != nil {
			return domain.ErrEmailAlreadyExists
		}
	}
	return nil
}

func (uc *UseCase) rejectLogin(role string) error {
	uc.observer.ObserveLogin(role, false)
	return domain.ErrInvalidCredentials
}

// signupError traduce la violación de unicidad (alta concurrente con el mismo email).
func signupError(err error) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.ErrEmailAlreadyExists
	}
	return err
}
