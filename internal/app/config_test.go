package app

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yungbote/sunft-backend/internal/domain/sunft"
)

const testQueen = "0x4444444444444444444444444444444444444444"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SUNFT_QUEEN_ADDRESS", testQueen)
	t.Setenv("SUNFT_MINTING_FEE", "25")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.QueenAddress != testQueen {
		t.Fatalf("queen: want=%s got=%s", testQueen, cfg.QueenAddress)
	}
	if !cfg.MintingFee().Equal(decimal.NewFromInt(25)) {
		t.Fatalf("fee: want=25 got=%s", cfg.MintingFee())
	}
	if cfg.Clock != ClockSystem || cfg.CostModel != CostCumulative {
		t.Fatalf("enums: clock=%s cost=%s", cfg.Clock, cfg.CostModel)
	}
	if cfg.AccessTokenTTL != time.Hour || cfg.HTTPAddr != ":8080" {
		t.Fatalf("defaults: ttl=%v addr=%s", cfg.AccessTokenTTL, cfg.HTTPAddr)
	}
	if cfg.SweepInterval != 0 || cfg.SweepConcurrency != 4 {
		t.Fatalf("sweep defaults: interval=%v concurrency=%d", cfg.SweepInterval, cfg.SweepConcurrency)
	}
	if got := cfg.Redis.LockPrefix(); got != "sunft:lock" {
		t.Fatalf("lock prefix: want=sunft:lock got=%s", got)
	}
	if _, ok := cfg.costModel().(sunft.CumulativeCost); !ok {
		t.Fatalf("cost model: got=%T", cfg.costModel())
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SUNFT_QUEEN_ADDRESS", testQueen)
	t.Setenv("SUNFT_CLOCK", " Manual ")
	t.Setenv("SUNFT_CLOCK_START", "1000")
	t.Setenv("SUNFT_COST_MODEL", "per_item")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("SUNFT_UNLOCK_SWEEP_INTERVAL", "15s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Clock != ClockManual || cfg.ClockStart != 1000 {
		t.Fatalf("clock: mode=%s start=%d", cfg.Clock, cfg.ClockStart)
	}
	if _, ok := newClock(cfg).(interface{ Advance(int64) int64 }); !ok {
		t.Fatalf("manual clock: got=%T", newClock(cfg))
	}
	if _, ok := cfg.costModel().(sunft.PerItemCost); !ok {
		t.Fatalf("cost model: got=%T", cfg.costModel())
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("cors: got=%v", cfg.CORSOrigins)
	}
	if cfg.SweepInterval != 15*time.Second {
		t.Fatalf("sweep interval: got=%v", cfg.SweepInterval)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing queen", map[string]string{}, "SUNFT_QUEEN_ADDRESS"},
		{"bad queen", map[string]string{"SUNFT_QUEEN_ADDRESS": "queen"}, "SUNFT_QUEEN_ADDRESS"},
		{"fractional fee", map[string]string{"SUNFT_QUEEN_ADDRESS": testQueen, "SUNFT_MINTING_FEE": "1.5"}, "SUNFT_MINTING_FEE"},
		{"negative fee", map[string]string{"SUNFT_QUEEN_ADDRESS": testQueen, "SUNFT_MINTING_FEE": "-1"}, "SUNFT_MINTING_FEE"},
		{"bad clock", map[string]string{"SUNFT_QUEEN_ADDRESS": testQueen, "SUNFT_CLOCK": "wall"}, "SUNFT_CLOCK"},
		{"bad cost model", map[string]string{"SUNFT_QUEEN_ADDRESS": testQueen, "SUNFT_COST_MODEL": "flat"}, "SUNFT_COST_MODEL"},
		{"bad custody", map[string]string{"SUNFT_QUEEN_ADDRESS": testQueen, "SUNFT_CUSTODY_ADDRESS": "0x12"}, "SUNFT_CUSTODY_ADDRESS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("SUNFT_QUEEN_ADDRESS", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("want error mentioning %s got=%v", tc.want, err)
			}
		})
	}
}
