// cmd/token issues an access token for the write routes when
// AUTH_ENABLED=true. Tokens are signed with JWT_SECRET and JWT_ISSUER.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"bookshelf-backend/internal/config"
	"bookshelf-backend/pkg/jwt"
)

func main() {
	subject := flag.String("sub", "operator", "token subject, reported as requestedBy on link audits")
	role := flag.String("role", "admin", "role claim")
	ttl := flag.Duration("ttl", 0, "token lifetime (default JWT_ACCESS_EXPIRY minutes)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	expiry := time.Duration(cfg.JWT.AccessTokenExpiry) * time.Minute
	if *ttl > 0 {
		expiry = *ttl
	}

	token, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, expiry).GenerateAccessToken(*subject, *role)
	if err != nil {
		log.Fatalf("❌ Failed to sign token: %v", err)
	}

	fmt.Fprintln(os.Stdout, token)
}
