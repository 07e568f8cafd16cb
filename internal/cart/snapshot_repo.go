package cart

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/basho-studio/storefront/pkg/db"
	"github.com/basho-studio/storefront/pkg/db/models"
)

// SnapshotRepository persists cart documents in the cart_snapshots table.
// It satisfies Persister.
type SnapshotRepository struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewSnapshotRepository binds the repository to the provided GORM handle. A
// positive ttl makes snapshots expire after that much inactivity.
func NewSnapshotRepository(conn *gorm.DB, ttl time.Duration) *SnapshotRepository {
	return &SnapshotRepository{db: conn, ttl: ttl, now: time.Now}
}

// Load returns the stored document. Expired rows read as missing.
func (r *SnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var row models.CartSnapshot
	err := r.db.WithContext(ctx).
		Where("cart_key = ?", key).
		Where("expires_at IS NULL OR expires_at > ?", r.now().UTC()).
		First(&row).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(row.Payload), nil
}

// Save upserts the document and refreshes its expiry.
func (r *SnapshotRepository) Save(ctx context.Context, key string, doc []byte) error {
	now := r.now().UTC()
	row := models.CartSnapshot{
		Key:       key,
		Payload:   string(doc),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if r.ttl > 0 {
		expires := now.Add(r.ttl)
		row.ExpiresAt = &expires
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at", "updated_at"}),
		}).
		Create(&row).Error
}

func (r *SnapshotRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("cart_key = ?", key).
		Delete(&models.CartSnapshot{}).Error
}

// PurgeExpired removes snapshots whose expiry has passed and reports how many
// were deleted.
func (r *SnapshotRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", r.now().UTC()).
		Delete(&models.CartSnapshot{})
	return res.RowsAffected, res.Error
}
