package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/BradenHooton/zkvault/internal/config"
	"github.com/BradenHooton/zkvault/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI is the subset of the DynamoDB client the repository uses
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// NewDynamoDBClient builds a client from the default AWS credential chain.
// A non-empty Endpoint targets a local DynamoDB.
func NewDynamoDBClient(ctx context.Context, cfg config.DynamoDBConfig) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

type dynamoCredentialRepo struct {
	client DynamoDBAPI
	table  string
}

// NewDynamoDBCredentialRepository stores credentials in a table keyed by username
func NewDynamoDBCredentialRepository(client DynamoDBAPI, table string) CredentialRepository {
	return &dynamoCredentialRepo{client: client, table: table}
}

func (r *dynamoCredentialRepo) key(username string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"username": &types.AttributeValueMemberS{Value: username},
	}
}

func (r *dynamoCredentialRepo) Get(ctx context.Context, username string) (*models.UserCredential, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            r.key(username),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, models.ErrNotFound
	}

	var cred models.UserCredential
	if err := attributevalue.UnmarshalMap(out.Item, &cred); err != nil {
		return nil, fmt.Errorf("failed to decode credential: %w", err)
	}
	return &cred, nil
}

func (r *dynamoCredentialRepo) CreateIfAbsent(ctx context.Context, cred *models.UserCredential) (*models.UserCredential, error) {
	rec := prepareCredential(cred)

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode credential: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(username)"),
	})
	if err == nil {
		return rec, nil
	}

	var condErr *types.ConditionalCheckFailedException
	if !errors.As(err, &condErr) {
		return nil, fmt.Errorf("failed to put credential: %w", err)
	}

	existing, err := r.Get(ctx, rec.Username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *dynamoCredentialRepo) HealthCheck(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	if err != nil {
		return fmt.Errorf("dynamodb health check failed: %w", err)
	}
	return nil
}
