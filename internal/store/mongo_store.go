package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/config"
	"github.com/lnmn249/faire-lightspeed-lite/internal/domain"
)

// MongoStore persists each entity kind in its own collection, upserting
// per entity by synthesized id. The three batches commit independently so
// a failure in one kind never blocks the others.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

type productDoc struct {
	Key     string         `bson:"_id"`
	Product domain.Product `bson:"product"`
}

type supplierDoc struct {
	Key      string          `bson:"_id"`
	Supplier domain.Supplier `bson:"supplier"`
}

type brandDoc struct {
	Key   string       `bson:"_id"`
	Brand domain.Brand `bson:"brand"`
}

type metaDoc struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects and pings the deployment
func NewMongoStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		db:     client.Database(cfg.MongoDB),
		logger: logger,
	}, nil
}

// Close disconnects the underlying client
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// productKey synthesizes a stable document id when the vendor omits one
func productKey(p domain.Product) string {
	if p.ID != "" {
		return p.ID
	}
	return p.SupplierCode
}

func (s *MongoStore) SaveCatalog(ctx context.Context, snapshot *domain.CatalogSnapshot) error {
	var errs []error

	productKeys := make([]string, 0, len(snapshot.Products))
	productModels := make([]mongo.WriteModel, 0, len(snapshot.Products))
	for _, p := range snapshot.Products {
		key := productKey(p)
		if key == "" {
			continue
		}
		productKeys = append(productKeys, key)
		productModels = append(productModels, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": key}).
			SetReplacement(productDoc{Key: key, Product: p}).
			SetUpsert(true))
	}
	if err := s.replaceCollection(ctx, "products", productKeys, productModels); err != nil {
		errs = append(errs, fmt.Errorf("products batch: %w", err))
	}

	supplierKeys := make([]string, 0, len(snapshot.Suppliers))
	supplierModels := make([]mongo.WriteModel, 0, len(snapshot.Suppliers))
	for _, sup := range snapshot.Suppliers {
		key := sup.ID
		if key == "" {
			key = sup.Name
		}
		if key == "" {
			continue
		}
		supplierKeys = append(supplierKeys, key)
		supplierModels = append(supplierModels, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": key}).
			SetReplacement(supplierDoc{Key: key, Supplier: sup}).
			SetUpsert(true))
	}
	if err := s.replaceCollection(ctx, "suppliers", supplierKeys, supplierModels); err != nil {
		errs = append(errs, fmt.Errorf("suppliers batch: %w", err))
	}

	brandKeys := make([]string, 0, len(snapshot.Brands))
	brandModels := make([]mongo.WriteModel, 0, len(snapshot.Brands))
	for _, b := range snapshot.Brands {
		key := b.ID
		if key == "" {
			key = b.Name
		}
		if key == "" {
			continue
		}
		brandKeys = append(brandKeys, key)
		brandModels = append(brandModels, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": key}).
			SetReplacement(brandDoc{Key: key, Brand: b}).
			SetUpsert(true))
	}
	if err := s.replaceCollection(ctx, "brands", brandKeys, brandModels); err != nil {
		errs = append(errs, fmt.Errorf("brands batch: %w", err))
	}

	s.logger.Info("Saved catalog to mongo",
		zap.Int("products", len(productModels)),
		zap.Int("suppliers", len(supplierModels)),
		zap.Int("brands", len(brandModels)),
	)
	return errors.Join(errs...)
}

// replaceCollection upserts the batch, then prunes documents that fell out
// of the snapshot so the collection mirrors it exactly
func (s *MongoStore) replaceCollection(ctx context.Context, collection string, keys []string, models []mongo.WriteModel) error {
	coll := s.db.Collection(collection)
	if len(models) == 0 {
		_, err := coll.DeleteMany(ctx, bson.M{})
		return err
	}
	if _, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		s.logger.Error("Bulk write failed", zap.String("collection", collection), zap.Error(err))
		return err
	}
	_, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": keys}})
	return err
}

func (s *MongoStore) LoadCatalog(ctx context.Context) (*domain.CatalogSnapshot, error) {
	snapshot := domain.EmptySnapshot()

	cur, err := s.db.Collection("products").Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	var pdocs []productDoc
	if err := cur.All(ctx, &pdocs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	for _, d := range pdocs {
		snapshot.Products = append(snapshot.Products, d.Product)
	}

	cur, err = s.db.Collection("suppliers").Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load suppliers: %w", err)
	}
	var sdocs []supplierDoc
	if err := cur.All(ctx, &sdocs); err != nil {
		return nil, fmt.Errorf("failed to decode suppliers: %w", err)
	}
	for _, d := range sdocs {
		snapshot.Suppliers = append(snapshot.Suppliers, d.Supplier)
	}

	cur, err = s.db.Collection("brands").Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load brands: %w", err)
	}
	var bdocs []brandDoc
	if err := cur.All(ctx, &bdocs); err != nil {
		return nil, fmt.Errorf("failed to decode brands: %w", err)
	}
	for _, d := range bdocs {
		snapshot.Brands = append(snapshot.Brands, d.Brand)
	}

	return snapshot, nil
}

func (s *MongoStore) SetMeta(ctx context.Context, key, value string) error {
	doc := metaDoc{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := s.db.Collection("meta").ReplaceOne(ctx,
		bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to set meta %s: %w", key, err)
	}
	return nil
}

func (s *MongoStore) GetMeta(ctx context.Context, key string) (string, bool, error) {
	var doc metaDoc
	err := s.db.Collection("meta").FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get meta %s: %w", key, err)
	}
	return doc.Value, true, nil
}
