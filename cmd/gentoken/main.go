// Test program to generate JWT tokens for local API testing
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tefa-events/server/internal/auth"
)

func main() {
	role := flag.String("role", "participant", "role claim (participant, organizer, admin)")
	subject := flag.String("user", "test-user", "subject claim (user ID)")
	expiry := flag.Duration("expiry", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "Error: JWT_SECRET is required")
		os.Exit(1)
	}
	if !auth.ValidRole(*role) {
		fmt.Fprintf(os.Stderr, "Error: unknown role %q\n", *role)
		os.Exit(1)
	}

	tokens := auth.NewJWTManager(secret, *expiry, "tefa-events")
	token, err := tokens.Generate(*subject, auth.NormalizeRole(*role))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("JWT Token:")
	fmt.Println(token)
	fmt.Println("\nTest with:")
	fmt.Printf("curl -H 'Authorization: Bearer %s' http://localhost:8080/api/v1/orders/me\n", token)
}
