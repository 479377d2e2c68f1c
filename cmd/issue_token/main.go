package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/yungbote/sunft-backend/internal/platform/config"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
	"github.com/yungbote/sunft-backend/internal/services"
)

type tokenConfig struct {
	JWTSecretKey   string        `env:"JWT_SECRET_KEY" envDefault:"defaultsecret"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
}

func main() {
	var addr string
	var ttl time.Duration
	flag.StringVar(&addr, "address", "", "caller address the token is issued for")
	flag.DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to ACCESS_TOKEN_TTL)")
	flag.Parse()

	var cfg tokenConfig
	if err := config.ParseEnv(&cfg); err != nil {
		config.Exitf("%v", err)
	}
	if ttl <= 0 {
		ttl = cfg.AccessTokenTTL
	}
	if addr == "" {
		config.Exitf("usage: issue_token -address 0x...")
	}

	token, expires, err := services.NewAuthService(logger.Nop(), cfg.JWTSecretKey, ttl).IssueToken(addr)
	if err != nil {
		config.Exitf("issue token: %v", err)
	}
	fmt.Println(token)
	fmt.Printf("# expires %s\n", expires.UTC().Format(time.RFC3339))
}
