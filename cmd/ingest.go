package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/vkadlec/photogate/internal/constants"
	"github.com/vkadlec/photogate/internal/model"
	"github.com/vkadlec/photogate/internal/normalize"
	"github.com/vkadlec/photogate/internal/storage"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory]",
	Short: "Run a directory of images through the validation pipeline",
	Long: `Ingest every supported image in a directory as if it had been uploaded.
Each image is normalized, validated, stored and recorded, exactly like an
upload through the web server. With --dry-run the images are only
validated and nothing is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().Bool("dry-run", false, "Validate only, do not store or record anything")
}

// listImages returns the supported image files in dir, non-recursively.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if constants.AllowedExtensions[ext] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	dryRun := mustGetBool(cmd, "dry-run")

	// A dry run validates only, so the storage tiers stay unwired and
	// S3 credentials are not needed.
	application, err := buildApp(ctx, !dryRun)
	if err != nil {
		return err
	}
	defer application.close()

	files, err := listImages(args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("No supported images found in %s\n", args[0])
		return nil
	}

	bar := progressbar.Default(int64(len(files)), "ingesting")

	var accepted, rejected, failed int
	reasons := make(map[string][]string)

	for _, path := range files {
		name := filepath.Base(path)

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("\nSkipping %s: %v\n", name, err)
			failed++
			_ = bar.Add(1)
			continue
		}
		mimeType := storage.ContentTypeForFilename(name)

		if dryRun {
			normalized, _, _, err := normalize.Normalize(data, mimeType, name)
			if err != nil {
				failed++
				_ = bar.Add(1)
				continue
			}
			outcome := application.orchestrator.Validate(ctx, normalized)
			if outcome.Accepted {
				accepted++
			} else {
				rejected++
				reasons[name] = outcome.Reasons
			}
			_ = bar.Add(1)
			continue
		}

		record, outcome, err := application.coordinator.Ingest(ctx, model.ImageUpload{
			Data:     data,
			MimeType: mimeType,
			Filename: name,
			Size:     int64(len(data)),
		})
		if err != nil {
			failed++
			_ = bar.Add(1)
			continue
		}
		if err := application.images.Create(ctx, record); err != nil {
			return fmt.Errorf("failed to record %s: %w", name, err)
		}
		if outcome.Accepted {
			accepted++
		} else {
			rejected++
			reasons[name] = outcome.Reasons
		}
		_ = bar.Add(1)
	}

	fmt.Printf("\nDone: %d accepted, %d rejected, %d failed\n", accepted, rejected, failed)
	for _, path := range files {
		name := filepath.Base(path)
		if rs, ok := reasons[name]; ok {
			fmt.Printf("  %s: %s\n", name, strings.Join(rs, "; "))
		}
	}
	return nil
}
