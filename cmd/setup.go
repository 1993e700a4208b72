package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bhadri2015-SB/Bedrock/internal/credentials"
)

var (
	setupEnvFile    string
	setupVerifyOnly bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure AWS credentials and verify access",
	Long: `
Interactively collect AWS credentials and project settings, save them to an
env file, and verify them by resolving the caller identity with STS. With
--verify, skip the prompts and only check the current credentials.

Examples:
  bedrock setup
  bedrock setup --verify
  bedrock setup --env-file ./deploy/.env
`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringVar(&setupEnvFile, "env-file", ".env", "Path of the env file to write")
	setupCmd.Flags().BoolVar(&setupVerifyOnly, "verify", false, "Only verify the current credentials")
}

func runSetup(cmd *cobra.Command, args []string) error {
	if !setupVerifyOnly {
		if err := credentials.Setup(os.Stdin, os.Stdout, setupEnvFile); err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	awsConfig, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}

	identity, err := credentials.NewVerifier(awsConfig).Verify(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Credentials verified:")
	fmt.Printf("  Account: %s\n", identity.Account)
	fmt.Printf("  ARN:     %s\n", identity.ARN)
	fmt.Printf("  Region:  %s\n", cfg.AWSRegion)
	return nil
}
