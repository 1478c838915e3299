// Package auth contiene los services de autenticación.
package auth

// Services agrupa todos los services del dominio auth. Refresh y logout los
// resuelve el gateway antes de llegar a un controller.
type Services struct {
	Login LoginService
}

// NewServices crea el agregador de services auth.
func NewServices(d LoginDeps) Services {
	return Services{Login: NewLoginService(d)}
}
