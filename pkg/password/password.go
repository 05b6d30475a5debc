// Package password hashea y verifica credenciales con argon2id y aplica la política de fortaleza.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/argon2"
)

// Parámetros por defecto (los mismos que usa argon2-cffi).
const (
	DefaultMemory  uint32 = 64 * 1024
	DefaultTime    uint32 = 3
	DefaultThreads uint8  = 4
	DefaultKeyLen  uint32 = 32
	DefaultSaltLen        = 16
)

const prefix = "$argon2id$"

// MinLength longitud mínima exigida en el registro.
const MinLength = 8

var b64 = base64.RawStdEncoding

// PolicyError contraseña que no cumple la política de fortaleza.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string { return "password policy: " + e.Reason }

type params struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

// Hash devuelve la credencial codificada en formato PHC con sal aleatoria por llamada.
func Hash(plaintext string) (string, error) {
	salt := make([]byte, DefaultSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(plaintext), salt, DefaultTime, DefaultMemory, DefaultThreads, DefaultKeyLen)
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		prefix, argon2.Version, DefaultMemory, DefaultTime, DefaultThreads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify compara en tiempo constante. Un hash mal formado devuelve false y se registra.
func Verify(plaintext, encoded string) bool {
	p, err := decode(encoded)
	if err != nil {
		log.Warn().Err(err).Msg("hash de contraseña mal formado")
		return false
	}
	key := argon2.IDKey([]byte(plaintext), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(key, p.key) == 1
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// DummyHash hash de relleno con los parámetros actuales, calculado una sola vez. Verificar contra él
// cuesta lo mismo que contra una credencial real; el resultado debe descartarse.
func DummyHash() string {
	dummyOnce.Do(func() {
		h, err := Hash("supermercado-dummy")
		if err != nil {
			log.Error().Err(err).Msg("generar hash de relleno")
			return
		}
		dummyHash = h
	})
	return dummyHash
}

// NeedsRehash indica si el hash se generó con parámetros distintos a los actuales.
func NeedsRehash(encoded string) bool {
	p, err := decode(encoded)
	if err != nil {
		return true
	}
	return p.memory != DefaultMemory || p.time != DefaultTime || p.threads != DefaultThreads ||
		len(p.salt) != DefaultSaltLen || len(p.key) != int(DefaultKeyLen)
}

// IsHash indica si s ya es una credencial argon2id codificada.
func IsHash(s string) bool {
	_, err := decode(s)
	return err == nil
}

// ValidateStrength exige al menos 8 caracteres, una mayúscula, una minúscula y un dígito.
func ValidateStrength(plaintext string) error {
	if len([]rune(plaintext)) < MinLength {
		return &PolicyError{Reason: fmt.Sprintf("must be at least %d characters long", MinLength)}
	}
	var upper, lower, digit bool
	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return &PolicyError{Reason: "must contain at least one uppercase letter"}
	case !lower:
		return &PolicyError{Reason: "must contain at least one lowercase letter"}
	case !digit:
		return &PolicyError{Reason: "must contain at least one digit"}
	}
	return nil
}

var errMalformed = errors.New("argon2id: formato inválido")

func decode(encoded string) (*params, error) {
	if !strings.HasPrefix(encoded, prefix) {
		return nil, errMalformed
	}
	parts := strings.Split(encoded, "$")
	// "", "argon2id", "v=19", "m=...,t=...,p=...", salt, key
	if len(parts) != 6 {
		return nil, errMalformed
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, errMalformed
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("argon2id: versión %d no soportada", version)
	}
	p := &params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return nil, errMalformed
	}
	if p.memory == 0 || p.time == 0 || p.threads == 0 {
		return nil, errMalformed
	}
	var err error
	if p.salt, err = b64.DecodeString(parts[4]); err != nil || len(p.salt) == 0 {
		return nil, errMalformed
	}
	if p.key, err = b64.DecodeString(parts[5]); err != nil || len(p.key) == 0 {
		return nil, errMalformed
	}
	return p, nil
}
