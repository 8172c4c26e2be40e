// internal/matching/audit.go

package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// AuditSink receives committed interactions. The interaction table written
// inside each transaction is authoritative; a sink is a mirror.
type AuditSink interface {
	Record(ctx context.Context, interactions []*MatchInteraction) error
}

type nopAuditSink struct{}

func (nopAuditSink) Record(context.Context, []*MatchInteraction) error { return nil }

// DynamoPutter is the subset of the DynamoDB client used by the audit sink
type DynamoPutter interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoAuditSink appends interactions to a DynamoDB table keyed by id
type DynamoAuditSink struct {
	client DynamoPutter
	table  string
}

// NewDynamoAuditSink creates an audit sink writing to table
func NewDynamoAuditSink(client DynamoPutter, table string) *DynamoAuditSink {
	return &DynamoAuditSink{client: client, table: table}
}

// NewDynamoClient loads the default AWS configuration for region
func NewDynamoClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// Record puts every interaction. Items are never overwritten; a replayed
// interaction is ignored.
func (s *DynamoAuditSink) Record(ctx context.Context, interactions []*MatchInteraction) error {
	var errs []error
	for _, i := range interactions {
		item, err := attributevalue.MarshalMap(i)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to marshal interaction %s: %w", i.ID, err))
			continue
		}

		_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(s.table),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		})
		var exists *types.ConditionalCheckFailedException
		if err != nil && !errors.As(err, &exists) {
			errs = append(errs, fmt.Errorf("failed to put interaction %s in table '%s': %w", i.ID, s.table, err))
		}
	}
	return errors.Join(errs...)
}
