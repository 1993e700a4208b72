package credentials

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/joho/godotenv"
)

// STSAPI is the subset of the STS client used for identity checks
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Identity describes the AWS principal the current credentials resolve to
type Identity struct {
	Account string
	ARN     string
	UserID  string
}

// Verifier checks that AWS credentials are usable
type Verifier struct {
	client STSAPI
}

// NewVerifier creates a verifier from an AWS configuration
func NewVerifier(awsConfig aws.Config) *Verifier {
	return &Verifier{client: sts.NewFromConfig(awsConfig)}
}

// Verify resolves the caller identity for the configured credentials
func (v *Verifier) Verify(ctx context.Context) (*Identity, error) {
	out, err := v.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to verify AWS credentials: %w", err)
	}

	return &Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}

// setupPrompts lists the variables collected during interactive setup,
// in prompt order
var setupPrompts = []struct {
	Key    string
	Label  string
	Secret bool
}{
	{Key: "AWS_ACCESS_KEY_ID", Label: "AWS Access Key ID"},
	{Key: "AWS_SECRET_ACCESS_KEY", Label: "AWS Secret Access Key", Secret: true},
	{Key: "AWS_REGION", Label: "AWS Region"},
	{Key: "AWS_S3_BUCKET", Label: "S3 bucket for documents"},
	{Key: "KNOWLEDGE_BASE_ID", Label: "Knowledge base ID (leave blank if not created yet)"},
}

// Setup interactively collects credentials and settings, merges them into
// the env file at envPath, and exports them into the current process.
// Blank answers keep the existing value.
func Setup(in io.Reader, out io.Writer, envPath string) error {
	existing, err := godotenv.Read(envPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read env file: %w", err)
		}
		existing = map[string]string{}
	}

	reader := bufio.NewReader(in)
	for _, prompt := range setupPrompts {
		current := existing[prompt.Key]
		if current == "" {
			current = os.Getenv(prompt.Key)
		}

		if current != "" && !prompt.Secret {
			fmt.Fprintf(out, "%s [%s]: ", prompt.Label, current)
		} else if current != "" {
			fmt.Fprintf(out, "%s [%s]: ", prompt.Label, maskSecret(current))
		} else {
			fmt.Fprintf(out, "%s: ", prompt.Label)
		}

		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read input: %w", err)
		}
		value := strings.TrimSpace(line)
		if value == "" {
			value = current
		}
		if value != "" {
			existing[prompt.Key] = value
		}
		if err == io.EOF {
			break
		}
	}

	if err := godotenv.Write(existing, envPath); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}

	for key, value := range existing {
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	fmt.Fprintf(out, "Saved configuration to %s\n", envPath)
	return nil
}

func maskSecret(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
