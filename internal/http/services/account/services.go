package account

// Services agrupa los services de cuenta.
type Services struct {
	Register RegisterService
	Password PasswordService
	Admin    AdminService
}

// NewServices crea el agregador de services de cuenta.
func NewServices(d Deps) Services {
	return Services{
		Register: NewRegisterService(d),
		Password: NewPasswordService(d),
		Admin:    NewAdminService(d),
	}
}
