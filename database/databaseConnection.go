package database

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func DBinstance() *mongo.Client {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("no .env file found, relying on environment")
	}

	MongoDb := os.Getenv("MONGODB_URL")
	if MongoDb == "" {
		MongoDb = "mongodb://localhost:27017"
	}

	client, err := mongo.NewClient(options.Client().ApplyURI(MongoDb))
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = client.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("connected to mongodb")

	return client
}

var Client *mongo.Client = DBinstance()

func OpenCollection(client *mongo.Client, collectionName string) *mongo.Collection {
	databaseName := os.Getenv("MONGODB_DATABASE")
	if databaseName == "" {
		databaseName = "restaurant-pos"
	}
	return client.Database(databaseName).Collection(collectionName)
}

// EnsureIndexes creates the unique indexes the lifecycle invariants rely on:
// session QR codes, branch codes and user emails.
func EnsureIndexes(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)

	type idx struct {
		collection string
		keys       bson.D
	}
	for _, it := range []idx{
		{"session", bson.D{{Key: "qr_code", Value: 1}}},
		{"branch", bson.D{{Key: "code", Value: 1}}},
		{"user", bson.D{{Key: "email", Value: 1}}},
	} {
		_, err := OpenCollection(client, it.collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    it.keys,
			Options: unique,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
