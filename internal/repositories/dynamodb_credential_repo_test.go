package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/BradenHooton/zkvault/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamoDB is an in-memory table keyed by the "username" attribute
type fakeDynamoDB struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue

	// hideItems makes reads miss, simulating a winner that is not yet visible
	hideItems bool
	err       error
}

func newFakeDynamoDB() *fakeDynamoDB {
	return &fakeDynamoDB{items: make(map[string]map[string]types.AttributeValue)}
}

func usernameOf(item map[string]types.AttributeValue) string {
	if s, ok := item["username"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamoDB) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if f.hideItems {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: f.items[usernameOf(in.Key)]}, nil
}

func (f *fakeDynamoDB) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	name := usernameOf(in.Item)
	if _, exists := f.items[name]; exists && aws.ToString(in.ConditionExpression) == "attribute_not_exists(username)" {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	f.items[name] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableName: in.TableName}}, nil
}

func TestDynamoDBCredentialRepository(t *testing.T) {
	runCredentialRepositorySuite(t, func(t *testing.T) CredentialRepository {
		return NewDynamoDBCredentialRepository(newFakeDynamoDB(), "UsernameSecrets")
	})
}

func TestDynamoDBCredentialRepository_ItemShape(t *testing.T) {
	fake := newFakeDynamoDB()
	repo := NewDynamoDBCredentialRepository(fake, "UsernameSecrets")

	_, err := repo.CreateIfAbsent(context.Background(), &models.UserCredential{Username: "alice", SecretOne: "ONE", SecretTwo: "TWO"})
	require.NoError(t, err)

	item := fake.items["alice"]
	require.NotNil(t, item)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "ONE"}, item["secret_one"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "TWO"}, item["secret_two"])
}

func TestDynamoDBCredentialRepository_InvisibleWinner(t *testing.T) {
	fake := newFakeDynamoDB()
	repo := NewDynamoDBCredentialRepository(fake, "UsernameSecrets")
	ctx := context.Background()

	_, err := repo.CreateIfAbsent(ctx, &models.UserCredential{Username: "alice", SecretOne: "ONE", SecretTwo: "TWO"})
	require.NoError(t, err)

	fake.hideItems = true
	_, err = repo.CreateIfAbsent(ctx, &models.UserCredential{Username: "alice", SecretOne: "X", SecretTwo: "Y"})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestDynamoDBCredentialRepository_ClientError(t *testing.T) {
	fake := newFakeDynamoDB()
	fake.err = errors.New("throttled")
	repo := NewDynamoDBCredentialRepository(fake, "UsernameSecrets")
	ctx := context.Background()

	_, err := repo.Get(ctx, "alice")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)

	_, err = repo.CreateIfAbsent(ctx, &models.UserCredential{Username: "alice"})
	assert.Error(t, err)

	assert.Error(t, repo.HealthCheck(ctx))
}
