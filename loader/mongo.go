package loader

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"git.fiblab.net/sim/fare/fare"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const MONGO_TIMEOUT = 30 * time.Second

// 文档字段名与CSV列名一致
type mongoRecord struct {
	ReferenceStation string      `bson:"Reference Station"`
	Station          string      `bson:"Station"`
	Route            string      `bson:"Route"`
	Distance         interface{} `bson:"Distance"`
}

func getDistanceString(x interface{}) (string, error) {
	switch x := x.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case string:
		return x, nil
	default:
		return "", fmt.Errorf("%w: unsupported distance %v (%T)", fare.ErrMalformedRecord, x, x)
	}
}

func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, MONGO_TIMEOUT)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// LoadMongo 读取集合中全部距离记录
func LoadMongo(ctx context.Context, client *mongo.Client, db, col string) ([]fare.RouteRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, MONGO_TIMEOUT)
	defer cancel()
	cur, err := client.Database(db).Collection(col).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	docs := make([]mongoRecord, 0)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	records, err := convertMongoRecords(docs)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", db, col, err)
	}
	log.Infof("loaded %d records from %s.%s", len(records), db, col)
	return records, nil
}

func convertMongoRecords(docs []mongoRecord) ([]fare.RouteRecord, error) {
	records := make([]fare.RouteRecord, 0, len(docs))
	for i, doc := range docs {
		distance, err := getDistanceString(doc.Distance)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		record, err := fare.ParseRecord(doc.ReferenceStation, doc.Station, doc.Route, distance)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}
