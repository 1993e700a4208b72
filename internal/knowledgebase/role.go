package knowledgebase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
)

const (
	executionRoleName = "AmazonBedrockExecutionRoleForKnowledgeBase"

	// Trust policy allowing the Bedrock service to assume the role
	executionRoleTrustPolicy = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": {"Service": "bedrock.amazonaws.com"},
      "Action": "sts:AssumeRole"
    }
  ]
}`
)

var executionRolePolicies = []string{
	"arn:aws:iam::aws:policy/AmazonBedrockFullAccess",
	"arn:aws:iam::aws:policy/AmazonS3ReadOnlyAccess",
}

// IAMAPI is the subset of the IAM client used by the role provisioner
type IAMAPI interface {
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
	CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error)
}

// RoleProvisioner gets or creates the knowledge base execution role
type RoleProvisioner struct {
	client IAMAPI
}

// NewRoleProvisioner creates a provisioner from an AWS configuration
func NewRoleProvisioner(awsConfig aws.Config) *RoleProvisioner {
	return &RoleProvisioner{client: iam.NewFromConfig(awsConfig)}
}

// EnsureRole returns the ARN of the Bedrock knowledge base execution role,
// creating the role and attaching its managed policies when missing
func (p *RoleProvisioner) EnsureRole(ctx context.Context) (string, error) {
	out, err := p.client.GetRole(ctx, &iam.GetRoleInput{
		RoleName: aws.String(executionRoleName),
	})
	if err == nil {
		if out.Role == nil || out.Role.Arn == nil {
			return "", fmt.Errorf("get role response missing role ARN")
		}
		return *out.Role.Arn, nil
	}

	var notFound *iamtypes.NoSuchEntityException
	if !errors.As(err, &notFound) {
		return "", fmt.Errorf("failed to look up execution role: %w", err)
	}

	log.Printf("Creating IAM role: %s", executionRoleName)
	created, err := p.client.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(executionRoleName),
		AssumeRolePolicyDocument: aws.String(executionRoleTrustPolicy),
		Description:              aws.String("Execution role for Amazon Bedrock Knowledge Base"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create execution role: %w", err)
	}
	if created.Role == nil || created.Role.Arn == nil {
		return "", fmt.Errorf("create role response missing role ARN")
	}

	for _, policyARN := range executionRolePolicies {
		_, err := p.client.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
			RoleName:  aws.String(executionRoleName),
			PolicyArn: aws.String(policyARN),
		})
		if err != nil {
			return "", fmt.Errorf("failed to attach policy %s: %w", policyARN, err)
		}
	}

	return *created.Role.Arn, nil
}
