package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photogate",
	Short: "An image ingestion and validation service",
	Long: `Photogate accepts photo uploads, validates them (resolution, sharpness,
face detection, near-duplicate detection) and stores every upload together
with its validation verdict. Rejected photos are kept along with the
reasons, so clients can tell users exactly what to fix.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
