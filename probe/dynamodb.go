package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jonwraymond/healthops/health"
)

// DefaultDynamoDBTimeout is the DynamoDB probe deadline.
const DefaultDynamoDBTimeout = 5 * time.Second

// DynamoDBAPI is the subset of the DynamoDB client the probe uses.
type DynamoDBAPI interface {
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoDB checks the status of a table.
type DynamoDB struct {
	Base
	client DynamoDBAPI
	table  string
}

// NewDynamoDB creates a DynamoDB probe over client.
func NewDynamoDB(client DynamoDBAPI, table string, opts Options) (*DynamoDB, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if table == "" {
		return nil, ErrMissingTable
	}
	return &DynamoDB{Base: newBase(opts, "dynamodb", DefaultDynamoDBTimeout, false), client: client, table: table}, nil
}

// Check describes the table. ACTIVE is healthy, UPDATING is degraded and
// any other state is unhealthy.
func (p *DynamoDB) Check(ctx context.Context) health.Result {
	out, err := p.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(p.table)})
	if err != nil {
		return health.Unhealthy("DynamoDB connection failed", err)
	}
	if out.Table == nil {
		return health.Unhealthy("DynamoDB table not described", fmt.Errorf("%w: empty table description", ErrUnexpectedResult))
	}

	status := out.Table.TableStatus
	meta := map[string]any{
		"table":      p.table,
		"status":     string(status),
		"item_count": aws.ToInt64(out.Table.ItemCount),
	}
	switch status {
	case types.TableStatusActive:
		return health.Healthy("DynamoDB table operational").WithMetadata(meta)
	case types.TableStatusUpdating:
		return health.Degraded("DynamoDB table updating").WithMetadata(meta)
	default:
		return health.Unhealthy("DynamoDB table unavailable", fmt.Errorf("%w: table status %s", ErrUnexpectedResult, status)).
			WithMetadata(meta)
	}
}

var _ health.Probe = (*DynamoDB)(nil)
