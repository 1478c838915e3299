// Package auth contiene DTOs para endpoints de autenticación.
package auth

import "time"

// LoginRequest son los campos del form de login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPairResponse va en details de login (200) y refresh (201).
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// MeResponse es el eco del principal autenticado.
type MeResponse struct {
	Subject   string    `json:"subject"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"expiresAt"`
}
