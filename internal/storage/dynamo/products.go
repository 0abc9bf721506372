package dynamo

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/models"
)

// ProductRepository stores separated products.
type ProductRepository struct{ s *Store }

var _ inventory.ProductRepository = (*ProductRepository)(nil)

func (r *ProductRepository) Save(ctx context.Context, p models.Product) (models.Product, error) {
	defer observe("saveProduct", time.Now())

	item, err := attributevalue.MarshalMap(toProductItem(p))
	if err != nil {
		return models.Product{}, apperrors.NewInternalError(err)
	}
	if _, err := r.s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.s.tables.Products),
		Item:      item,
	}); err != nil {
		return models.Product{}, apperrors.NewStorageFailureError("saveProduct", err)
	}
	return p, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (models.Product, error) {
	defer observe("findProduct", time.Now())

	out, err := r.s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.s.tables.Products),
		Key:            itemKey(productPrefix+id, metadataSK),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return models.Product{}, apperrors.NewStorageFailureError("findProduct", err)
	}
	if len(out.Item) == 0 {
		return models.Product{}, apperrors.NewNotFoundError("product", id)
	}

	var item productItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return models.Product{}, apperrors.NewInternalError(err)
	}
	return item.toModel(), nil
}

func (r *ProductRepository) FindByBranchID(ctx context.Context, branchID string) ([]models.Product, error) {
	defer observe("findProductsByBranch", time.Now())

	return r.query(ctx, "findProductsByBranch", &dynamodb.QueryInput{
		TableName:              aws.String(r.s.tables.Products),
		IndexName:              aws.String(branchIndex),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: branchPrefix + branchID},
		},
	}, 0)
}

func (r *ProductRepository) FindByFranchiseID(ctx context.Context, franchiseID string) ([]models.Product, error) {
	defer observe("findProductsByFranchise", time.Now())

	return r.query(ctx, "findProductsByFranchise", franchiseQuery(r.s.tables.Products, franchiseID), 0)
}

// FindTopStockByFranchise walks GSI2 (sorted by stock) backwards.
func (r *ProductRepository) FindTopStockByFranchise(ctx context.Context, franchiseID string, limit int) ([]models.Product, error) {
	defer observe("findTopStockByFranchise", time.Now())

	input := franchiseQuery(r.s.tables.Products, franchiseID)
	input.ScanIndexForward = aws.Bool(false)
	if limit > 0 {
		input.Limit = aws.Int32(int32(min(limit, math.MaxInt32)))
	}
	return r.query(ctx, "findTopStockByFranchise", input, limit)
}

func franchiseQuery(table, franchiseID string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(franchiseIndex),
		KeyConditionExpression: aws.String("GSI2PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: franchisePrefix + franchiseID},
		},
	}
}

// query pages through input, stopping once max items are collected (0 = all).
func (r *ProductRepository) query(ctx context.Context, op string, input *dynamodb.QueryInput, max int) ([]models.Product, error) {
	paginator := dynamodb.NewQueryPaginator(r.s.api, input)

	var out []models.Product
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.NewStorageFailureError(op, err)
		}
		var items []productItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		for _, item := range items {
			out = append(out, item.toModel())
		}
		if max > 0 && len(out) >= max {
			return out[:max], nil
		}
	}
	return out, nil
}

func (r *ProductRepository) DeleteByID(ctx context.Context, id string) (models.Product, error) {
	defer observe("deleteProduct", time.Now())

	out, err := r.s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.s.tables.Products),
		Key:                 itemKey(productPrefix+id, metadataSK),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ReturnValues:        types.ReturnValueAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return models.Product{}, apperrors.NewNotFoundError("product", id)
		}
		return models.Product{}, apperrors.NewStorageFailureError("deleteProduct", err)
	}

	var item productItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return models.Product{}, apperrors.NewInternalError(err)
	}
	removed := item.toModel()
	removed.ID = id
	return removed, nil
}
