package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/lottoworks/luckydraw-backend/internal/models"
	"github.com/lottoworks/luckydraw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SettingsRepository implements the repositories.SettingsRepository interface
type SettingsRepository struct {
	collection *mongo.Collection
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *mongo.Database) repositories.SettingsRepository {
	return &SettingsRepository{
		collection: db.Collection("system_settings"),
	}
}

// FindByKey finds a setting by key
func (r *SettingsRepository) FindByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	var setting models.SystemSetting
	err := r.collection.FindOne(ctx, bson.M{"key": key}).Decode(&setting)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrSettingNotFound
		}
		return nil, err
	}
	return &setting, nil
}

// UpsertByKey creates or updates a setting
func (r *SettingsRepository) UpsertByKey(ctx context.Context, key string, value interface{}, description string) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$set": bson.M{
			"value":       value,
			"description": description,
			"updatedAt":   time.Now(),
		}},
		opts,
	)
	return err
}
