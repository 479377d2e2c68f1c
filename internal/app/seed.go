package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/sunft-backend/internal/domain/address"
	types "github.com/yungbote/sunft-backend/internal/domain"
	"github.com/yungbote/sunft-backend/internal/domain/sunft"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
	"github.com/yungbote/sunft-backend/internal/services"
)

// Seed is the dev fixture file: funded accounts and registered assets.
type Seed struct {
	Accounts []SeedAccount `yaml:"accounts"`
	Assets   []SeedAsset   `yaml:"assets"`
}

type SeedAccount struct {
	Address   string `yaml:"address"`
	Balance   string `yaml:"balance"`
	Allowance string `yaml:"allowance"`
}

type SeedAsset struct {
	Owner       string `yaml:"owner"`
	ContractRef string `yaml:"contract_ref"`
	AssetID     string `yaml:"asset_id"`
	URI         string `yaml:"uri"`
	Approve     bool   `yaml:"approve"`
}

func LoadSeed(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return &seed, nil
}

// ApplySeed is safe to run on every start: accounts are only funded while
// their balance is zero and already registered assets are skipped.
func ApplySeed(ctx context.Context, log *logger.Logger, dev services.DevLedgerService, seed *Seed) error {
	for _, a := range seed.Accounts {
		acct, err := dev.Account(ctx, a.Address)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", a.Address, err)
		}
		if a.Balance != "" && acct.Balance.IsZero() {
			bal, err := sunft.ParseAmount(a.Balance)
			if err != nil {
				return fmt.Errorf("seed account %s balance: %w", a.Address, err)
			}
			if bal.Sign() > 0 {
				if _, err := dev.Faucet(ctx, a.Address, bal); err != nil {
					return fmt.Errorf("seed account %s: %w", a.Address, err)
				}
			}
		}
		if a.Allowance != "" {
			allowance, err := sunft.ParseAmount(a.Allowance)
			if err != nil {
				return fmt.Errorf("seed account %s allowance: %w", a.Address, err)
			}
			if err := dev.ApprovePayment(ctx, a.Address, allowance); err != nil {
				return fmt.Errorf("seed account %s: %w", a.Address, err)
			}
		}
	}

	registered := 0
	for _, s := range seed.Assets {
		if strings.TrimSpace(s.ContractRef) == "" || strings.TrimSpace(s.AssetID) == "" {
			return fmt.Errorf("seed asset: contract_ref and asset_id are required")
		}
		if _, err := address.Normalize(s.Owner); err != nil {
			return fmt.Errorf("seed asset owner %q: %w", s.Owner, err)
		}
		ref := types.AssetRef{ContractRef: s.ContractRef, AssetID: s.AssetID}
		if _, err := dev.RegisterAsset(ctx, s.Owner, ref, s.URI); err != nil {
			// already registered on a previous start
			if errors.Is(err, sunft.ErrInvalidArgument) {
				continue
			}
			return fmt.Errorf("seed asset %s/%s: %w", s.ContractRef, s.AssetID, err)
		}
		registered++
		if s.Approve {
			if err := dev.ApproveAsset(ctx, s.Owner, ref); err != nil {
				return fmt.Errorf("seed asset %s/%s approve: %w", s.ContractRef, s.AssetID, err)
			}
		}
	}
	log.Info("Seed applied", "accounts", len(seed.Accounts), "assets_registered", registered)
	return nil
}

