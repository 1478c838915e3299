package auth

import svc "github.com/dropDatabas3/authgate/internal/http/services/auth"

// Controllers agrupa todos los controllers del dominio auth.
type Controllers struct {
	Login *LoginController
	Me    *MeController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Login: NewLoginController(s.Login),
		Me:    NewMeController(),
	}
}
