// authctl opera el gateway sin pasar por HTTP: claves, migraciones, estado de
// cuentas y tokens.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authgate/internal/app"
	"github.com/dropDatabas3/authgate/internal/config"
	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/http/services/account"
	"github.com/dropDatabas3/authgate/internal/jwt"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/revocation"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

type cli struct {
	out        io.Writer
	configPath string
	timeout    time.Duration
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "authctl",
		Short:         "CLI de operación del auth gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// La salida del CLI es stdout; los logs del Container se descartan.
			logger.Replace(zap.NewNop())
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv("CONFIG_PATH"), "ruta al config YAML (opcional)")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "timeout de la operación")

	root.AddCommand(c.keygenCmd(), c.migrateCmd(), c.accountCmd(), c.tokenCmd())
	return root
}

// withContainer carga config, arma el Container y ejecuta fn.
func (c *cli) withContainer(fn func(ctx context.Context, ct *app.Container) error) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	ct, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer ct.Close()
	return fn(ctx, ct)
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Genera una signing key HS256 (base64:<...>)",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			k, err := jwt.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, k)
			return nil
		},
	}
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones del account store (postgres)",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return c.withContainer(func(ctx context.Context, ct *app.Container) error {
				if err := ct.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "ok")
				return nil
			})
		},
	}
}

type accountStatus struct {
	Subject        string   `json:"subject"`
	Username       string   `json:"username"`
	Status         string   `json:"status"`
	Roles          []string `json:"roles"`
	Verified       bool     `json:"verified"`
	FailedAttempts int64    `json:"failedAttempts"`
}

func (c *cli) accountCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "account", Short: "Estado administrativo de cuentas"}

	transition := func(use, short string, op func(account.AdminService, context.Context, string) (*repository.Account, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <subject>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return c.withContainer(func(ctx context.Context, ct *app.Container) error {
					admin := adminService(ct)
					if _, err := op(admin, ctx, args[0]); err != nil {
						return err
					}
					return c.printStatus(ctx, admin, args[0])
				})
			},
		}
	}

	cmd.AddCommand(
		transition("block", "Bloqueo administrativo", account.AdminService.Block),
		transition("unblock", "Levanta el bloqueo y limpia el contador", account.AdminService.Unblock),
		transition("suspend", "Suspensión permanente (irreversible)", account.AdminService.Suspend),
		&cobra.Command{
			Use:   "status <subject>",
			Short: "Muestra estado y fallos acumulados",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return c.withContainer(func(ctx context.Context, ct *app.Container) error {
					return c.printStatus(ctx, adminService(ct), args[0])
				})
			},
		},
	)
	return cmd
}

func adminService(ct *app.Container) account.AdminService {
	return account.NewAdminService(account.Deps{
		Accounts: ct.Accounts,
		Sessions: ct.Sessions,
		Sink:     ct.Sink,
		Lockout:  ct.Lockout,
	})
}

func (c *cli) printStatus(ctx context.Context, admin account.AdminService, subject string) error {
	acc, failures, err := admin.Status(ctx, subject)
	if err != nil {
		return err
	}
	return c.printJSON(accountStatus{
		Subject:        acc.ID,
		Username:       acc.Username,
		Status:         acc.Status.String(),
		Roles:          acc.Roles,
		Verified:       acc.Verified,
		FailedAttempts: failures,
	})
}

type tokenInfo struct {
	Subject     string    `json:"subject"`
	JTI         string    `json:"jti"`
	Purpose     string    `json:"purpose"`
	Roles       []string  `json:"roles"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Blacklisted bool      `json:"blacklisted"`
	Whitelisted bool      `json:"whitelisted"`
}

func (c *cli) tokenCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "token", Short: "Inspección y revocación de tokens"}

	inspect := &cobra.Command{
		Use:   "inspect <raw>",
		Short: "Verifica el token y muestra claims y estado en el registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.withContainer(func(ctx context.Context, ct *app.Container) error {
				claims, err := ct.Engine.Verify(args[0])
				if err != nil {
					return fmt.Errorf("token inválido (%s): %w", jwt.KindOf(err), err)
				}
				info := tokenInfo{
					Subject:   claims.Subject,
					JTI:       claims.ID,
					Purpose:   claims.Purpose.String(),
					Roles:     claims.Roles,
					ExpiresAt: claims.ExpiresAtTime(),
				}
				if claims.IssuedAt != nil {
					info.IssuedAt = claims.IssuedAt.Time
				}
				if info.Blacklisted, err = ct.Registry.IsBlacklisted(ctx, claims.ID); err != nil {
					return err
				}
				if claims.Purpose == jwt.PurposeRefresh {
					if info.Whitelisted, err = ct.Registry.IsWhitelisted(ctx, claims.ID); err != nil {
						return err
					}
				}
				return c.printJSON(info)
			})
		},
	}

	revoke := &cobra.Command{
		Use:   "revoke <raw>",
		Short: "Revoca un refresh token (equivalente a logout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.withContainer(func(ctx context.Context, ct *app.Container) error {
				claims, err := ct.Engine.Verify(args[0])
				if err != nil {
					return fmt.Errorf("token inválido (%s): %w", jwt.KindOf(err), err)
				}
				if err := ct.Sessions.Revoke(ctx, claims); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "revoked jti=%s ttl=%s\n", claims.ID,
					revocation.RemainingTTL(claims.ExpiresAtTime(), ct.Engine.Now()).Truncate(time.Second))
				return nil
			})
		},
	}

	cmd.AddCommand(inspect, revoke)
	return cmd
}
