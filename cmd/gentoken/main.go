// cmd/gentoken/main.go — mints a development access token.
// Usage: go run cmd/gentoken/main.go -business <uuid> -role cashier
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/BrightonDube/BizPilot2-sub004/internal/config"
	"github.com/BrightonDube/BizPilot2-sub004/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	userID := flag.String("user", uuid.NewString(), "user_id claim")
	businessID := flag.String("business", uuid.NewString(), "business_id claim")
	username := flag.String("username", "dev", "username claim")
	role := flag.String("role", middleware.RoleAdmin, "role claim: cashier, supervisor or admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	now := time.Now()
	claims := middleware.JWTClaims{
		UserID:     *userID,
		BusinessID: *businessID,
		Username:   *username,
		Role:       *role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.JWTExpirationHours) * time.Hour)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatalf("sign error: %v", err)
	}
	fmt.Println(signed)
}
