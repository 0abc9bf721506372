// Package dynamo implements the repository gateways on DynamoDB.
//
// Tables:
//
//	franchises  PK=FRANCHISE#<id>  SK=METADATA
//	branches    PK=BRANCH#<id>     SK=METADATA   products=[embedded...]
//	            GSI1: GSI1PK=FRANCHISE#<franchiseId>
//	products    PK=PRODUCT#<id>    SK=METADATA   separated record
//	            GSI1: GSI1PK=BRANCH#<branchId>
//	            GSI2: GSI2PK=FRANCHISE#<franchiseId>, GSI2SK=stock
//	products    PK=PRODUCT#<id>    SK=LOCATION   branchId of an embedded product
//
// The LOCATION item is the reverse index for embedded products. It is written
// in the same transaction as the embedded append and is never trusted on its
// own: readers verify the branch still embeds the product.
package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"franchise-inventory/internal/common/config"
	"franchise-inventory/internal/common/logger"
	"franchise-inventory/internal/common/metrics"
)

const (
	franchisePrefix = "FRANCHISE#"
	branchPrefix    = "BRANCH#"
	productPrefix   = "PRODUCT#"
	metadataSK      = "METADATA"
	locationSK      = "LOCATION"

	branchIndex    = "GSI1"
	franchiseIndex = "GSI2"

	// branchFranchiseIndex is the GSI on the branches table.
	branchFranchiseIndex = "GSI1"
)

// API is the subset of *dynamodb.Client used by the gateways.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store groups the three gateways over one client.
type Store struct {
	api    API
	tables config.DynamoDBTables
	logger logger.Logger
}

func New(api API, tables config.DynamoDBTables, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{api: api, tables: tables, logger: log}
}

func (s *Store) Franchises() *FranchiseRepository { return &FranchiseRepository{s: s} }
func (s *Store) Branches() *BranchRepository { return &BranchRepository{s: s} }
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

func observe(operation string, started time.Time) {
	metrics.StorageOperationDuration.WithLabelValues("dynamodb", operation).Observe(time.Since(started).Seconds())
}
