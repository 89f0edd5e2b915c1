package mongostore

import (
	"context"

	"doclocker-admin/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// ActivityLogStore（只追加，无更新/删除操作）
// ============================================================================

func (s *Store) AppendActivity(ctx context.Context, entry *model.ActivityLog) error {
	return insertOne(ctx, s.col(ColActivityLogs), entry)
}

func (s *Store) ListActivityByUser(ctx context.Context, userID string) ([]*model.ActivityLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	return findMany[model.ActivityLog](ctx, s.col(ColActivityLogs),
		bson.D{{Key: "user_id", Value: userID}}, opts)
}

func (s *Store) SampleActivity(ctx context.Context, n int) ([]*model.ActivityLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(n))
	return findMany[model.ActivityLog](ctx, s.col(ColActivityLogs), bson.D{}, opts)
}
