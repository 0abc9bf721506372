package dynamo

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/models"
)

const appendCondition = "attribute_exists(PK) AND #strategy <> :separated AND " +
	"(attribute_not_exists(#products) OR size(#products) < :limit)"

type BranchRepository struct{ s *Store }

var (
	_ inventory.BranchRepository  = (*BranchRepository)(nil)
	_ inventory.LocationForgetter = (*BranchRepository)(nil)
)

func (r *BranchRepository) Save(ctx context.Context, b models.Branch) (models.Branch, error) {
	defer observe("saveBranch", time.Now())

	item := toBranchItem(b)
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return models.Branch{}, apperrors.NewInternalError(err)
	}
	if _, err := r.s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.s.tables.Branches),
		Item:      av,
	}); err != nil {
		return models.Branch{}, apperrors.NewStorageFailureError("saveBranch", err)
	}
	return item.toModel(), nil
}

func (r *BranchRepository) FindByID(ctx context.Context, id string) (models.Branch, error) {
	defer observe("findBranch", time.Now())

	out, err := r.s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.s.tables.Branches),
		Key:            itemKey(branchPrefix+id, metadataSK),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return models.Branch{}, apperrors.NewStorageFailureError("findBranch", err)
	}
	if len(out.Item) == 0 {
		return models.Branch{}, apperrors.NewNotFoundError("branch", id)
	}

	var item branchItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return models.Branch{}, apperrors.NewInternalError(err)
	}
	return item.toModel(), nil
}

func (r *BranchRepository) FindByFranchiseID(ctx context.Context, franchiseID string) ([]models.Branch, error) {
	defer observe("findBranchesByFranchise", time.Now())

	paginator := dynamodb.NewQueryPaginator(r.s.api, &dynamodb.QueryInput{
		TableName:              aws.String(r.s.tables.Branches),
		IndexName:              aws.String(branchFranchiseIndex),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: franchisePrefix + franchiseID},
		},
	})

	var out []models.Branch
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.NewStorageFailureError("findBranchesByFranchise", err)
		}
		var items []branchItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		for _, item := range items {
			out = append(out, item.toModel())
		}
	}
	return out, nil
}

func (r *BranchRepository) scan(ctx context.Context, op string, input *dynamodb.ScanInput) ([]models.Branch, error) {
	paginator := dynamodb.NewScanPaginator(r.s.api, input)

	var out []models.Branch
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.NewStorageFailureError(op, err)
		}
		var items []branchItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		for _, item := range items {
			out = append(out, item.toModel())
		}
	}
	return out, nil
}

func (r *BranchRepository) DeleteByID(ctx context.Context, id string) error {
	defer observe("deleteBranch", time.Now())

	if _, err := r.s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.s.tables.Branches),
		Key:       itemKey(branchPrefix+id, metadataSK),
	}); err != nil {
		return apperrors.NewStorageFailureError("deleteBranch", err)
	}
	return nil
}

// AppendEmbeddedProduct appends with list_append under a size condition and
// writes the product's LOCATION item in the same transaction.
func (r *BranchRepository) AppendEmbeddedProduct(ctx context.Context, branchID string, p models.Product, limit int) (models.Branch, error) {
	defer observe("appendEmbeddedProduct", time.Now())

	embedded, err := attributevalue.MarshalMap(toEmbeddedItem(p))
	if err != nil {
		return models.Branch{}, apperrors.NewInternalError(err)
	}
	location, err := attributevalue.MarshalMap(locationItem{
		PK:       productPrefix + p.ID,
		SK:       locationSK,
		BranchID: branchID,
	})
	if err != nil {
		return models.Branch{}, apperrors.NewInternalError(err)
	}

	_, err = r.s.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName:           aws.String(r.s.tables.Branches),
					Key:                 itemKey(branchPrefix+branchID, metadataSK),
					UpdateExpression:    aws.String("SET #products = list_append(if_not_exists(#products, :empty), :new)"),
					ConditionExpression: aws.String(appendCondition),
					ExpressionAttributeNames: map[string]string{
						"#products": "products",
						"#strategy": "storageStrategy",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":empty":     &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
						":new":       &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberM{Value: embedded}}},
						":separated": &types.AttributeValueMemberS{Value: string(models.StrategySeparated)},
						":limit":     &types.AttributeValueMemberN{Value: strconv.Itoa(limit)},
					},
					ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(r.s.tables.Products),
					Item:      location,
				},
			},
		},
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) && len(canceled.CancellationReasons) > 0 {
			reason := canceled.CancellationReasons[0]
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				if len(reason.Item) == 0 {
					return models.Branch{}, apperrors.NewNotFoundError("branch", branchID)
				}
				return models.Branch{}, inventory.ErrEmbeddedListFull
			}
		}
		return models.Branch{}, apperrors.NewStorageFailureError("appendEmbeddedProduct", err)
	}

	return r.FindByID(ctx, branchID)
}

// Forget drops the LOCATION item of a product removed from an embedded list.
// A failure leaves a stale item that readers already verify against the branch.
func (r *BranchRepository) Forget(ctx context.Context, productID string) {
	defer observe("forgetProductLocation", time.Now())

	if _, err := r.s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.s.tables.Products),
		Key:       itemKey(productPrefix+productID, locationSK),
	}); err != nil {
		r.s.logger.Warn("Failed to delete product location", map[string]interface{}{
			"productId": productID,
			"error":     err.Error(),
		})
	}
}

// FindBranchIDByProductID reads the product's LOCATION item and, when there
// is none, scans every branch for the embedded product.
func (r *BranchRepository) FindBranchIDByProductID(ctx context.Context, productID string) (string, error) {
	defer observe("findBranchIdByProductId", time.Now())

	out, err := r.s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.s.tables.Products),
		Key:       itemKey(productPrefix+productID, locationSK),
	})
	if err != nil {
		return "", apperrors.NewStorageFailureError("findBranchIdByProductId", err)
	}
	if len(out.Item) > 0 {
		var loc locationItem
		if err := attributevalue.UnmarshalMap(out.Item, &loc); err != nil {
			return "", apperrors.NewInternalError(err)
		}
		if loc.BranchID != "" {
			return loc.BranchID, nil
		}
	}

	r.s.logger.Warn("Reverse lookup fell back to a branch scan", map[string]interface{}{
		"productId": productID,
	})
	branches, err := r.scan(ctx, "scanBranches", &dynamodb.ScanInput{
		TableName:        aws.String(r.s.tables.Branches),
		FilterExpression: aws.String("attribute_exists(#products)"),
		ExpressionAttributeNames: map[string]string{
			"#products": "products",
		},
	})
	if err != nil {
		return "", err
	}
	for _, b := range branches {
		if _, ok := b.FindEmbedded(productID); ok {
			return b.ID, nil
		}
	}
	return "", apperrors.NewNotFoundError("product", productID)
}
