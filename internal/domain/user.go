package domain

import "time"

// User representa una cuenta del marketplace.
// Token, Hash y Salt son credenciales y nunca se serializan.
type User struct {
	ID         string    `json:"_id"`
	Email      string    `json:"email"`
	Account    Account   `json:"account"`
	Newsletter bool      `json:"newsletter"`
	Token      string    `json:"-"`
	Hash       string    `json:"-"`
	Salt       string    `json:"-"`
	CreatedAt  time.Time `json:"-"`
}

// Account es la proyeccion publica de una cuenta: lo unico que se
// expone de un usuario como dueño de una oferta.
type Account struct {
	Username string `json:"username"`
	Avatar   *Image `json:"avatar,omitempty"`
}
