package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RigelNana/cinexnema/services/video-service/service"
	"github.com/RigelNana/cinexnema/services/video-service/storage"
)

func getBucketsCmd() *cobra.Command {
	var checkOnly bool
	bucketsCmd := &cobra.Command{
		Use:   "buckets",
		Short: "Create the storage buckets, or report missing ones with --check",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			if !cfg.Storage.Configured() {
				return errors.New("object storage is not configured: set MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY")
			}
			store, err := storage.NewMinioStore(cfg.Storage)
			if err != nil {
				return err
			}
			svc := service.NewStorageService(store, cfg.Storage, log)
			out := cmd.OutOrStdout()

			if checkOnly {
				check, err := svc.CheckBuckets(cmd.Context())
				if err != nil {
					return err
				}
				for _, b := range check.Existing {
					fmt.Fprintf(out, "ok       %s\n", b)
				}
				for _, b := range check.Missing {
					fmt.Fprintf(out, "missing  %s\n", b)
				}
				if !check.AllConfigured {
					return errors.New("some buckets are missing")
				}
				return nil
			}

			results, err := svc.EnsureBuckets(cmd.Context())
			if err != nil {
				return err
			}
			failed := 0
			for _, r := range results {
				fmt.Fprintf(out, "%-8s %s %s\n", r.Status, r.Bucket, r.Error)
				if r.Error != "" {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d bucket(s) could not be created", failed)
			}
			return nil
		},
	}
	bucketsCmd.Flags().BoolVar(&checkOnly, "check", false, "only report which buckets are missing")
	return bucketsCmd
}
