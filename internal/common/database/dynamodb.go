// internal/common/database/dynamodb.go
package database

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	awsclient "franchise-inventory/internal/common/aws"
	"franchise-inventory/internal/common/config"
)

// DynamoDBClient wraps the DynamoDB client for the dynamodb backend.
type DynamoDBClient struct {
	Client *dynamodb.Client
	Tables config.DynamoDBTables
}

func NewDynamoDB(ctx context.Context, cfg config.DynamoDBConfig) (*DynamoDBClient, error) {
	awsCfg, err := awsclient.LoadConfig(ctx, awsclient.Options{
		Region:          cfg.Region,
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &DynamoDBClient{Client: client, Tables: cfg.Tables}, nil
}

// Ping describes the branches table, which every request path needs.
func (c *DynamoDBClient) Ping(ctx context.Context) error {
	_, err := c.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(c.Tables.Branches),
	})
	if err != nil {
		return fmt.Errorf("dynamodb ping failed: %w", err)
	}
	return nil
}
