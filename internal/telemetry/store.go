package telemetry

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"carbonmarket/ledger-backend/internal/core"
)

// ReadingItem is the DynamoDB shape of an accepted sensor reading.
// Partition key sensor_id, sort key ts, the same (sensor, timestamp)
// key the engine uses.
type ReadingItem struct {
	SensorID    string `dynamodbav:"sensor_id"`
	Timestamp   uint64 `dynamodbav:"ts"`
	ProjectID   uint64 `dynamodbav:"project_id"`
	CO2Grams    uint64 `dynamodbav:"co2_grams"`
	Temperature int32  `dynamodbav:"temperature"`
	Humidity    uint32 `dynamodbav:"humidity"`
	DataHash    string `dynamodbav:"data_hash"`
	Verified    bool   `dynamodbav:"verified"`
}

// Store defines the interface for the sensor reading hot store
type Store interface {
	PutReading(ctx context.Context, reading core.SensorReading) error
	GetReading(ctx context.Context, sensorID string, timestamp uint64) (*core.SensorReading, error)
	ListSensorReadings(ctx context.Context, sensorID string, limit int32) ([]core.SensorReading, error)
}

type dynamoStore struct {
	client *dynamodb.Client
	table  string
}

func NewStore(client *dynamodb.Client, table string) Store {
	return &dynamoStore{client: client, table: table}
}

func (s *dynamoStore) PutReading(ctx context.Context, reading core.SensorReading) error {
	item, err := attributevalue.MarshalMap(ReadingItem{
		SensorID:    reading.SensorID,
		Timestamp:   reading.Timestamp,
		ProjectID:   reading.ProjectID,
		CO2Grams:    reading.CO2Grams,
		Temperature: reading.Temperature,
		Humidity:    reading.Humidity,
		DataHash:    reading.DataHash,
		Verified:    reading.Verified,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to store reading: %w", err)
	}
	return nil
}

func (s *dynamoStore) GetReading(ctx context.Context, sensorID string, timestamp uint64) (*core.SensorReading, error) {
	key, err := attributevalue.MarshalMap(map[string]interface{}{
		"sensor_id": sensorID,
		"ts":        timestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key: %w", err)
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item ReadingItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reading: %w", err)
	}
	return itemToReading(item), nil
}

func (s *dynamoStore) ListSensorReadings(ctx context.Context, sensorID string, limit int32) ([]core.SensorReading, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("sensor_id = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: sensorID},
		},
		ScanIndexForward: aws.Bool(false), // newest first
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}

	var items []ReadingItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal readings: %w", err)
	}

	readings := make([]core.SensorReading, 0, len(items))
	for _, item := range items {
		readings = append(readings, *itemToReading(item))
	}
	return readings, nil
}

func itemToReading(item ReadingItem) *core.SensorReading {
	return &core.SensorReading{
		SensorID:    item.SensorID,
		Timestamp:   item.Timestamp,
		ProjectID:   item.ProjectID,
		CO2Grams:    item.CO2Grams,
		Temperature: item.Temperature,
		Humidity:    item.Humidity,
		DataHash:    item.DataHash,
		Verified:    item.Verified,
	}
}
