package mongostore

import (
	"context"
	"regexp"
	"time"

	"doclocker-admin/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// DocumentStore
// ============================================================================

func (s *Store) CreateDocument(ctx context.Context, doc *model.Document) error {
	return insertOne(ctx, s.col(ColDocuments), doc)
}

func (s *Store) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	return findOne[model.Document](ctx, s.col(ColDocuments), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListDocumentsByOwner(ctx context.Context, studentID string) ([]*model.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Document](ctx, s.col(ColDocuments),
		bson.D{{Key: "student_id", Value: studentID}}, opts)
}

// SearchDocumentsByOwner 属主范围内文件名大小写不敏感子串匹配
// 查询串先做 QuoteMeta，避免用户输入被当作正则元字符
func (s *Store) SearchDocumentsByOwner(ctx context.Context, studentID, query string) ([]*model.Document, error) {
	filter := bson.D{
		{Key: "student_id", Value: studentID},
		{Key: "file_name", Value: bson.D{
			{Key: "$regex", Value: regexp.QuoteMeta(query)},
			{Key: "$options", Value: "i"},
		}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Document](ctx, s.col(ColDocuments), filter, opts)
}

func (s *Store) ListAllDocuments(ctx context.Context) ([]*model.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Document](ctx, s.col(ColDocuments), bson.D{}, opts)
}

func (s *Store) SetDocumentFavorite(ctx context.Context, id string, favorite bool) error {
	return updateFields(ctx, s.col(ColDocuments), id, bson.D{
		{Key: "is_favorite", Value: favorite},
		{Key: "updated_at", Value: time.Now()},
	})
}

func (s *Store) IncrementDownloadCount(ctx context.Context, id string) error {
	return incFields(ctx, s.col(ColDocuments), id, bson.D{{Key: "download_count", Value: int64(1)}})
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColDocuments), id)
}

func (s *Store) DeleteDocumentsByOwner(ctx context.Context, studentID string) (int64, error) {
	res, err := s.col(ColDocuments).DeleteMany(ctx, bson.D{{Key: "student_id", Value: studentID}})
	if err != nil {
		return 0, wrapError(err)
	}
	return res.DeletedCount, nil
}
