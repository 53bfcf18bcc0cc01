package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sparkcrackers/storefront/app/payment"
	"github.com/sparkcrackers/storefront/app/services"
	"github.com/sparkcrackers/storefront/config"
	"github.com/sparkcrackers/storefront/pkg/cache"
	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/session"
	"github.com/sparkcrackers/storefront/pkg/storage"
)

// openStorefront restores the persisted session and loads content. The
// content cache is only used when CONTENT_CACHE=redis; the media disk is
// opened on demand by the commands that upload.
func openStorefront(ctx context.Context, media bool) (*services.Storefront, error) {
	store, err := session.Open()
	if err != nil {
		return nil, err
	}

	deps := services.Deps{
		Gateway:    payment.NewSandbox(config.PaymentKeySecret()),
		ContentTTL: config.ContentCacheTTL(),
	}
	if config.Get("CONTENT_CACHE", "") == "redis" {
		if c, err := cache.Connect(config.RedisAddr(), config.RedisPassword()); err == nil {
			deps.Cache = c
		} else {
			logger.Warn("storefront: content cache unavailable", "error", err)
		}
	}
	if media {
		disk, err := storage.Open(config.MediaDisk())
		if err != nil {
			return nil, err
		}
		deps.Media = disk
	}

	sf := services.Open(config.APIBaseURL(), store, deps)
	if err := sf.Bootstrap(ctx); err != nil {
		sf.Close()
		return nil, err
	}
	return sf, nil
}

// requireLogin fails early with a hint when no shopper is signed in.
func requireLogin(sf *services.Storefront) error {
	if !sf.Session.IsAuthenticated() {
		return fmt.Errorf("not logged in; run `storefront login` first")
	}
	return nil
}

// prompt reads one line from stdin when value is empty.
func prompt(label, value string) string {
	if value != "" {
		return value
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func rupees(v float64) string { return fmt.Sprintf("₹%.2f", v) }
