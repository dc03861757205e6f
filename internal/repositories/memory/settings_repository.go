package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lottoworks/luckydraw-backend/internal/models"
	"github.com/lottoworks/luckydraw-backend/internal/repositories"
)

// SettingsRepository is an in-memory repositories.SettingsRepository
type SettingsRepository struct {
	mu       sync.Mutex
	settings map[string]*models.SystemSetting
}

// NewSettingsRepository creates a new in-memory SettingsRepository
func NewSettingsRepository() repositories.SettingsRepository {
	return &SettingsRepository{settings: make(map[string]*models.SystemSetting)}
}

func (r *SettingsRepository) FindByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	setting, ok := r.settings[key]
	if !ok {
		return nil, models.ErrSettingNotFound
	}
	copied := *setting
	return &copied, nil
}

func (r *SettingsRepository) UpsertByKey(ctx context.Context, key string, value interface{}, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[key] = &models.SystemSetting{
		Key:         key,
		Value:       value,
		Description: description,
		UpdatedAt:   time.Now(),
	}
	return nil
}
