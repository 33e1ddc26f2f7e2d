// cmd/hashpass/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/pkg/auth"
)

// hashpass prints a bcrypt hash at the configured cost, for seeding a user
// document by hand.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: hashpass <password>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	pm := auth.NewPasswordManager(cfg)
	hash, err := pm.HashPassword(os.Args[1])
	if err != nil {
		log.Fatal("Error generating hash: ", err)
	}
	if err := pm.VerifyPassword(os.Args[1], hash); err != nil {
		log.Fatal("Hash verification failed: ", err)
	}

	fmt.Println(hash)
}
