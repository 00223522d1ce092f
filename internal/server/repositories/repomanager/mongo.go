package repomanager

import (
	"context"
	"fmt"

	"github.com/s-fanou/feed/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoRepositoryManager struct {
	client *mongo.Client
	users  *users.MongoRepository
}

func NewMongoRepositoryManager(uri, database string) (*MongoRepositoryManager, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return &MongoRepositoryManager{
		client: client,
		users:  users.NewMongoRepository(client.Database(database)),
	}, nil
}

func (m *MongoRepositoryManager) Users() users.Repository {
	return m.users
}

// RunMigrations has no schema to apply; it makes sure the unique email
// index exists.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	return m.users.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
