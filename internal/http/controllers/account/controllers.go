package account

import svc "github.com/dropDatabas3/authgate/internal/http/services/account"

// Controllers agrupa los controllers de cuenta, incluido el path admin.
type Controllers struct {
	Register *RegisterController
	Password *PasswordController
	Admin    *AdminController
}

func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Register: NewRegisterController(s.Register),
		Password: NewPasswordController(s.Password),
		Admin:    NewAdminController(s.Admin),
	}
}
