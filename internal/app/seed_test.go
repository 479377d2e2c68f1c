package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/yungbote/sunft-backend/internal/data/repos"
	"github.com/yungbote/sunft-backend/internal/data/repos/testutil"
	"github.com/yungbote/sunft-backend/internal/services"
)

const (
	seedOwner   = "0x2222222222222222222222222222222222222222"
	seedCustody = "0x5555555555555555555555555555555555555555"
)

const seedYAML = `
accounts:
  - address: "0x2222222222222222222222222222222222222222"
    balance: "1000"
    allowance: "400"
assets:
  - owner: "0x2222222222222222222222222222222222222222"
    contract_ref: "0xart"
    asset_id: "1"
    uri: "ipfs://one"
    approve: true
  - owner: "0x2222222222222222222222222222222222222222"
    contract_ref: "0xart"
    asset_id: "2"
`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestApplySeedIsRepeatable(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	dev := services.NewDevLedgerService(
		db, log,
		repos.NewPaymentLedgerRepo(db, log, seedCustody),
		repos.NewAssetCustodyRepo(db, log, seedCustody),
		repos.NewBundleTokenRepo(db, log),
		services.NewManualClock(1),
	)

	seed, err := LoadSeed(writeSeed(t, seedYAML))
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if len(seed.Accounts) != 1 || len(seed.Assets) != 2 || !seed.Assets[0].Approve {
		t.Fatalf("parsed seed: got=%+v", seed)
	}

	for i := 0; i < 2; i++ {
		if err := ApplySeed(ctx, log, dev, seed); err != nil {
			t.Fatalf("ApplySeed run %d: %v", i, err)
		}
	}

	acct, err := dev.Account(ctx, seedOwner)
	if err != nil {
		t.Fatalf("Account: %v", err)
	}
	if !acct.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance after two runs: want=1000 got=%s", acct.Balance)
	}
	if !acct.Allowance.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("allowance: want=400 got=%s", acct.Allowance)
	}
	if len(acct.Assets) != 2 {
		t.Fatalf("assets: want=2 got=%d", len(acct.Assets))
	}
}

func TestLoadSeedErrors(t *testing.T) {
	if _, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing file: want error")
	}
	if _, err := LoadSeed(writeSeed(t, "accounts: [")); err == nil {
		t.Fatalf("malformed yaml: want error")
	}

	db := testutil.DB(t)
	log := testutil.Logger(t)
	dev := services.NewDevLedgerService(
		db, log,
		repos.NewPaymentLedgerRepo(db, log, seedCustody),
		repos.NewAssetCustodyRepo(db, log, seedCustody),
		repos.NewBundleTokenRepo(db, log),
		services.NewManualClock(1),
	)
	bad := &Seed{Accounts: []SeedAccount{{Address: seedOwner, Balance: "1.5"}}}
	if err := ApplySeed(context.Background(), log, dev, bad); err == nil {
		t.Fatalf("fractional balance: want error")
	}
}
