package dynamo

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"franchise-inventory/internal/common/config"
	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/models"
)

var now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

var tables = config.DynamoDBTables{Franchises: "franchises", Branches: "branches", Products: "products"}

// fakeAPI serves canned items keyed by table and PK/SK and records every input.
type fakeAPI struct {
	items       map[string]map[string]types.AttributeValue
	scanItems   []map[string]types.AttributeValue
	queryItems  []map[string]types.AttributeValue
	transactErr error
	deleteErr   error

	gets      []*dynamodb.GetItemInput
	deletes   []*dynamodb.DeleteItemInput
	queries   []*dynamodb.QueryInput
	scans     []*dynamodb.ScanInput
	transacts []*dynamodb.TransactWriteItemsInput
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{items: make(map[string]map[string]types.AttributeValue)}
}

func keyOf(table string, key map[string]types.AttributeValue) string {
	pk := key["PK"].(*types.AttributeValueMemberS).Value
	sk := key["SK"].(*types.AttributeValueMemberS).Value
	return table + "|" + pk + "|" + sk
}

func (f *fakeAPI) put(t *testing.T, table string, v interface{}) {
	t.Helper()
	av, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	f.items[keyOf(table, av)] = av
}

func (f *fakeAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.gets = append(f.gets, in)
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(*in.TableName, in.Key)]}, nil
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.items[keyOf(*in.TableName, in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.deletes = append(f.deletes, in)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	key := keyOf(*in.TableName, in.Key)
	old, ok := f.items[key]
	if !ok && aws.ToString(in.ConditionExpression) != "" {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	delete(f.items, key)

	out := &dynamodb.DeleteItemOutput{}
	if in.ReturnValues == types.ReturnValueAllOld {
		out.Attributes = old
	}
	return out, nil
}

func (f *fakeAPI) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, in)
	return &dynamodb.QueryOutput{Items: f.queryItems}, nil
}

func (f *fakeAPI) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scans = append(f.scans, in)
	return &dynamodb.ScanOutput{Items: f.scanItems}, nil
}

func (f *fakeAPI) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.transacts = append(f.transacts, in)
	if f.transactErr != nil {
		return nil, f.transactErr
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func cancellation(item map[string]types.AttributeValue) error {
	return &types.TransactionCanceledException{
		Message: aws.String("Transaction cancelled"),
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("ConditionalCheckFailed"), Item: item},
			{Code: aws.String("None")},
		},
	}
}

func TestBranchItem_SeparatedDropsEmbeddedList(t *testing.T) {
	b := models.NewBranch("b1", "f1", "Main", models.StrategySeparated, now)
	b.Products = []models.Product{{ID: "p1"}}

	item := toBranchItem(b)
	assert.Nil(t, item.Products)
	assert.Equal(t, "BRANCH#b1", item.PK)
}

func TestEmbeddedItem_OmitsBranchID(t *testing.T) {
	av, err := attributevalue.MarshalMap(toEmbeddedItem(models.NewProduct("p1", "f1", "b1", "Latte", 3, now)))
	require.NoError(t, err)
	assert.NotContains(t, av, "branchId")
	assert.Contains(t, av, "stock")
}

func TestAppendEmbeddedProduct_WritesListAndLocationTogether(t *testing.T) {
	api := newFakeAPI()
	api.put(t, tables.Branches, toBranchItem(models.NewBranch("b1", "f1", "Main", models.StrategyEmbedded, now)))
	store := New(api, tables, nil)

	_, err := store.Branches().AppendEmbeddedProduct(context.Background(), "b1",
		models.NewProduct("p1", "f1", "", "Latte", 3, now), 100)
	require.NoError(t, err)

	require.Len(t, api.transacts, 1)
	items := api.transacts[0].TransactItems
	require.Len(t, items, 2)

	update := items[0].Update
	require.NotNil(t, update)
	assert.Equal(t, tables.Branches, aws.ToString(update.TableName))
	assert.Equal(t, appendCondition, aws.ToString(update.ConditionExpression))
	assert.Equal(t, &types.AttributeValueMemberN{Value: "100"}, update.ExpressionAttributeValues[":limit"])
	assert.Equal(t, types.ReturnValuesOnConditionCheckFailureAllOld, update.ReturnValuesOnConditionCheckFailure)

	put := items[1].Put
	require.NotNil(t, put)
	assert.Equal(t, tables.Products, aws.ToString(put.TableName))
	var loc locationItem
	require.NoError(t, attributevalue.UnmarshalMap(put.Item, &loc))
	assert.Equal(t, locationItem{PK: "PRODUCT#p1", SK: locationSK, BranchID: "b1"}, loc)
}

func TestAppendEmbeddedProduct_ConditionFailures(t *testing.T) {
	full, err := attributevalue.MarshalMap(toBranchItem(models.NewBranch("b1", "f1", "Main", models.StrategyEmbedded, now)))
	require.NoError(t, err)

	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, err error)
	}{
		{
			name: "existing branch means the list is full",
			err:  cancellation(full),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, inventory.ErrEmbeddedListFull)
			},
		},
		{
			name: "missing branch",
			err:  cancellation(nil),
			check: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsNotFound(err))
			},
		},
		{
			name: "other failure",
			err:  errors.New("throttled"),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, apperrors.ErrStorage)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.transactErr = tt.err
			_, err := New(api, tables, nil).Branches().AppendEmbeddedProduct(context.Background(), "b1", models.Product{ID: "p1"}, 100)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestFindBranchIDByProductID_UsesLocationItem(t *testing.T) {
	api := newFakeAPI()
	api.put(t, tables.Products, locationItem{PK: "PRODUCT#p1", SK: locationSK, BranchID: "b7"})

	id, err := New(api, tables, nil).Branches().FindBranchIDByProductID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "b7", id)
	assert.Empty(t, api.scans)
}

func TestFindBranchIDByProductID_FallsBackToScan(t *testing.T) {
	api := newFakeAPI()
	b := models.NewBranch("b2", "f1", "Second", models.StrategyEmbedded, now)
	b.Products = []models.Product{{ID: "p9", Name: "Mocha"}}
	av, err := attributevalue.MarshalMap(toBranchItem(b))
	require.NoError(t, err)
	api.scanItems = []map[string]types.AttributeValue{av}
	store := New(api, tables, nil)

	id, err := store.Branches().FindBranchIDByProductID(context.Background(), "p9")
	require.NoError(t, err)
	assert.Equal(t, "b2", id)
	require.Len(t, api.scans, 1)

	_, err = store.Branches().FindBranchIDByProductID(context.Background(), "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFindTopStockByFranchise_QueriesStockIndexDescending(t *testing.T) {
	api := newFakeAPI()
	for _, p := range []models.Product{
		models.NewProduct("p1", "f1", "b1", "A", 50, now),
		models.NewProduct("p2", "f1", "b2", "B", 30, now),
		models.NewProduct("p3", "f1", "b2", "C", 10, now),
	} {
		av, err := attributevalue.MarshalMap(toProductItem(p))
		require.NoError(t, err)
		api.queryItems = append(api.queryItems, av)
	}

	top, err := New(api, tables, nil).Products().FindTopStockByFranchise(context.Background(), "f1", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "p1", top[0].ID)
	assert.Equal(t, "b1", top[0].BranchID)

	require.Len(t, api.queries, 1)
	q := api.queries[0]
	assert.Equal(t, franchiseIndex, aws.ToString(q.IndexName))
	assert.False(t, aws.ToBool(q.ScanIndexForward))
	assert.Equal(t, int32(2), aws.ToInt32(q.Limit))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "FRANCHISE#f1"}, q.ExpressionAttributeValues[":pk"])
}

func TestFindTopStockByFranchise_ClampsPageSize(t *testing.T) {
	api := newFakeAPI()

	_, err := New(api, tables, nil).Products().FindTopStockByFranchise(context.Background(), "f1", 3_000_000_000)
	require.NoError(t, err)
	require.Len(t, api.queries, 1)
	assert.Equal(t, int32(math.MaxInt32), aws.ToInt32(api.queries[0].Limit))
}

func TestBranchFindByFranchiseID_QueriesFranchiseIndex(t *testing.T) {
	api := newFakeAPI()
	av, err := attributevalue.MarshalMap(toBranchItem(models.NewBranch("b1", "f1", "Downtown", models.StrategyEmbedded, now)))
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "FRANCHISE#f1"}, av["GSI1PK"])
	api.queryItems = []map[string]types.AttributeValue{av}

	branches, err := New(api, tables, nil).Branches().FindByFranchiseID(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, "b1", branches[0].ID)
	assert.Empty(t, api.scans)

	require.Len(t, api.queries, 1)
	q := api.queries[0]
	assert.Equal(t, tables.Branches, aws.ToString(q.TableName))
	assert.Equal(t, branchFranchiseIndex, aws.ToString(q.IndexName))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "FRANCHISE#f1"}, q.ExpressionAttributeValues[":pk"])
}

func TestForget_DeletesLocationItem(t *testing.T) {
	api := newFakeAPI()
	api.put(t, tables.Products, locationItem{PK: "PRODUCT#p1", SK: locationSK, BranchID: "b7"})
	api.put(t, tables.Products, toProductItem(models.NewProduct("p2", "f1", "b7", "Tea", 3, now)))
	branches := New(api, tables, nil).Branches()

	branches.Forget(context.Background(), "p1")

	assert.NotContains(t, api.items, "products|PRODUCT#p1|LOCATION")
	assert.Contains(t, api.items, "products|PRODUCT#p2|METADATA")
	require.Len(t, api.deletes, 1)
	assert.Equal(t, tables.Products, aws.ToString(api.deletes[0].TableName))

	api.deleteErr = errors.New("throttled")
	assert.NotPanics(t, func() { branches.Forget(context.Background(), "p1") })
}

func TestProductDeleteByID_ReturnsRemovedRecord(t *testing.T) {
	api := newFakeAPI()
	api.put(t, tables.Products, toProductItem(models.NewProduct("p1", "f1", "b1", "Mocha", 50, now)))
	store := New(api, tables, nil)

	removed, err := store.Products().DeleteByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "b1", removed.BranchID)
	assert.Equal(t, "f1", removed.FranchiseID)
	assert.Equal(t, "Mocha", removed.Name)
	assert.Equal(t, 50, removed.Stock)
	assert.Equal(t, types.ReturnValueAllOld, api.deletes[0].ReturnValues)
	assert.NotContains(t, api.items, "products|PRODUCT#p1|METADATA")

	_, err = store.Products().DeleteByID(context.Background(), "p1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProductDeleteByID(t *testing.T) {
	api := newFakeAPI()
	api.deleteErr = &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	_, err := New(api, tables, nil).Products().DeleteByID(context.Background(), "p1")
	assert.True(t, apperrors.IsNotFound(err))

	api.deleteErr = errors.New("timeout")
	_, err = New(api, tables, nil).Products().DeleteByID(context.Background(), "p1")
	assert.ErrorIs(t, err, apperrors.ErrStorage)
}

func TestFranchiseRoundTrip(t *testing.T) {
	api := newFakeAPI()
	store := New(api, tables, nil)
	ctx := context.Background()

	_, err := store.Franchises().Save(ctx, models.NewFranchise("f1", "Cafe", now))
	require.NoError(t, err)

	got, err := store.Franchises().FindByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Cafe", got.Name)
	assert.True(t, api.gets[0].ConsistentRead != nil && *api.gets[0].ConsistentRead)

	require.NoError(t, store.Franchises().DeleteByID(ctx, "f1"))
	_, err = store.Franchises().FindByID(ctx, "f1")
	assert.True(t, apperrors.IsNotFound(err))
}
