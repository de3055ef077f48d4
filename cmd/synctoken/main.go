// synctoken emite un JWT con rol admin para POST /api/sync cuando SYNC_JWT_SECRET está definido.
//
// Uso: go run ./cmd/synctoken [-subject cron] [-minutes 60]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/Catalogo-api/pkg/config"
	"github.com/jhoicas/Catalogo-api/pkg/jwt"
)

func main() {
	subject := flag.String("subject", "cron", "sujeto del token")
	minutes := flag.Int("minutes", 0, "validez en minutos (0 = SYNC_JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	cfg, err := config.LoadRemoteOnly()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if !cfg.JWT.Enabled() {
		fmt.Fprintln(os.Stderr, "SYNC_JWT_SECRET no configurado: POST /api/sync no requiere token")
		os.Exit(1)
	}
	exp := *minutes
	if exp <= 0 {
		exp = cfg.JWT.Expiration
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *subject, jwt.RoleAdmin, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
