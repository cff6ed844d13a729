package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"orderbot/internal/config"
	"orderbot/internal/monitor"
	"orderbot/internal/receipt"

	"github.com/spf13/cobra"
)

// doctorCmd checks the local environment: config loads, required ids are
// set, the QR payload URL is sane, the store path is writable, and the
// website responds.
func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and environment problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			failures := 0
			check := func(name string, err error) {
				if err != nil {
					failures++
					fmt.Printf("✗ %s: %v\n", name, err)
					return
				}
				fmt.Printf("✓ %s\n", name)
			}

			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			check("config loads ("+cfgPath+")", err)
			if err != nil {
				return fmt.Errorf("%d problem(s) found", failures)
			}

			_, err = url.ParseRequestURI(cfg.Orders.QRPayloadURL)
			check("qr payload url parses", err)

			_, err = receipt.EncodeQR(cfg.Orders.QRPayloadURL)
			check("qr code encodes", err)

			check("store directory writable", writableDir(filepath.Dir(cfg.Store.DBPath)))

			if cfg.Monitor.WebsiteURL != "" {
				_, err = monitor.NewChecker(cfg.Monitor.WebsiteURL).Check(cmd.Context())
				check("website reachable", err)
			}

			if failures > 0 {
				return fmt.Errorf("%d problem(s) found", failures)
			}
			fmt.Println("All checks passed.")
			return nil
		},
	}
}

func writableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
