package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/models"
)

type FranchiseRepository struct{ s *Store }

var _ inventory.FranchiseRepository = (*FranchiseRepository)(nil)

func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

func (r *FranchiseRepository) Save(ctx context.Context, f models.Franchise) (models.Franchise, error) {
	defer observe("saveFranchise", time.Now())

	item, err := attributevalue.MarshalMap(toFranchiseItem(f))
	if err != nil {
		return models.Franchise{}, apperrors.NewInternalError(err)
	}
	if _, err := r.s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.s.tables.Franchises),
		Item:      item,
	}); err != nil {
		return models.Franchise{}, apperrors.NewStorageFailureError("saveFranchise", err)
	}
	return f, nil
}

func (r *FranchiseRepository) FindByID(ctx context.Context, id string) (models.Franchise, error) {
	defer observe("findFranchise", time.Now())

	out, err := r.s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.s.tables.Franchises),
		Key:            itemKey(franchisePrefix+id, metadataSK),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return models.Franchise{}, apperrors.NewStorageFailureError("findFranchise", err)
	}
	if len(out.Item) == 0 {
		return models.Franchise{}, apperrors.NewNotFoundError("franchise", id)
	}

	var item franchiseItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return models.Franchise{}, apperrors.NewInternalError(err)
	}
	return item.toModel(), nil
}

func (r *FranchiseRepository) FindAll(ctx context.Context) ([]models.Franchise, error) {
	defer observe("findAllFranchises", time.Now())

	paginator := dynamodb.NewScanPaginator(r.s.api, &dynamodb.ScanInput{
		TableName:        aws.String(r.s.tables.Franchises),
		FilterExpression: aws.String("SK = :meta"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":meta": &types.AttributeValueMemberS{Value: metadataSK},
		},
	})

	var out []models.Franchise
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.NewStorageFailureError("findAllFranchises", err)
		}
		var items []franchiseItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		for _, item := range items {
			out = append(out, item.toModel())
		}
	}
	return out, nil
}

func (r *FranchiseRepository) DeleteByID(ctx context.Context, id string) error {
	defer observe("deleteFranchise", time.Now())

	if _, err := r.s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.s.tables.Franchises),
		Key:       itemKey(franchisePrefix+id, metadataSK),
	}); err != nil {
		return apperrors.NewStorageFailureError("deleteFranchise", err)
	}
	return nil
}
