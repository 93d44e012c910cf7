package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// Longitudes en bytes de los valores aleatorios por cuenta.
const (
	saltBytes  = 24
	tokenBytes = 32
)

// ComputeHash deriva el hash de credenciales a partir del password y
// el salt de la cuenta: SHA-256 sobre la concatenacion, codificado en
// base64. Determinista y sin estado.
func ComputeHash(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// GenerateToken devuelve un token opaco impredecible de byteLength
// bytes de entropia, codificado en base64 URL-safe. Se usa tanto para
// salts como para tokens de sesion; siempre sale de crypto/rand.
func GenerateToken(byteLength int) (string, error) {
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
