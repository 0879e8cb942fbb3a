// Command token mints a creator token for local testing. Posts and jokes
// created with it as a bearer token are attached to the given user.
package main

import (
	"fmt"
	"log"
	"time"

	"jokes-api/internal/config"
	"jokes-api/pkg/utils"

	flag "github.com/spf13/pflag"
)

func main() {
	userID := flag.StringP("user", "u", "", "user id to embed in the token")
	ttl := flag.DurationP("ttl", "t", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" {
		log.Fatal("--user is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if !cfg.Auth.Enabled() {
		log.Fatal("SIGN_KEY is not set")
	}

	token, err := utils.GenerateToken(cfg.Auth.SignKey, *userID, *ttl)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(token)
}
