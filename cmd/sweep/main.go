package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/yungbote/sunft-backend/internal/app"
	"github.com/yungbote/sunft-backend/internal/platform/config"
	"github.com/yungbote/sunft-backend/internal/platform/dbctx"
)

type idList []uint64

func (l *idList) String() string {
	parts := make([]string, 0, len(*l))
	for _, id := range *l {
		parts = append(parts, strconv.FormatUint(id, 10))
	}
	return strings.Join(parts, ",")
}

func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid bundle id %q", v)
	}
	*l = append(*l, id)
	return nil
}

// sweep runs tryUnlock once over the given bundles, or over every bundle
// that still holds locked items.
func main() {
	var ids idList
	var dryRun bool
	flag.Var(&ids, "bundle", "bundle id to unlock (repeatable)")
	flag.BoolVar(&dryRun, "dry-run", false, "print progress without unlocking")
	flag.Parse()

	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		config.Exitf("init app: %v", err)
	}
	defer application.Close()

	if len(ids) == 0 && !dryRun {
		n, err := application.Services.Sweeper.SweepOnce(ctx)
		if err != nil {
			config.Exitf("sweep: %v", err)
		}
		fmt.Printf("released %d items\n", n)
		return
	}

	if len(ids) == 0 {
		ids, err = activeIDs(ctx, application)
		if err != nil {
			config.Exitf("list active bundles: %v", err)
		}
	}

	released := 0
	for _, id := range ids {
		if dryRun {
			p, err := application.Services.Bundles.GetProgress(ctx, id)
			if err != nil {
				fmt.Printf("bundle %d: %v\n", id, err)
				continue
			}
			fmt.Printf("bundle %d: progress=%d\n", id, p)
			continue
		}
		n, err := application.Services.Bundles.TryUnlock(ctx, id)
		if err != nil {
			fmt.Printf("bundle %d: %v\n", id, err)
			continue
		}
		released += n
		fmt.Printf("bundle %d: released=%d\n", id, n)
	}
	if !dryRun {
		fmt.Printf("released %d items\n", released)
	}
}

func activeIDs(ctx context.Context, application *app.App) (idList, error) {
	const page = 500
	var out idList
	var after uint64
	for {
		batch, err := application.Repos.Bundle.ListActiveIDs(dbctx.Context{Ctx: ctx}, after, page)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
		if len(batch) < page {
			return out, nil
		}
		after = batch[len(batch)-1]
	}
}
