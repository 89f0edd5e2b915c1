package mongostore

import (
	"context"
	"time"

	"doclocker-admin/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return insertOne(ctx, s.col(ColUsers), user)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
}

// GetUserByIdentifier 登录标识符可以是邮箱或学号
func (s *Store) GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "email", Value: identifier}},
		bson.D{{Key: "student_id", Value: identifier}},
	}}}
	return findOne[model.User](ctx, s.col(ColUsers), filter)
}

// GetUserByEmailOrStudentID 注册前的重复性预检
func (s *Store) GetUserByEmailOrStudentID(ctx context.Context, email, studentID string) (*model.User, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "student_id", Value: studentID}},
	}}}
	return findOne[model.User](ctx, s.col(ColUsers), filter)
}

func (s *Store) UpdateUserLocation(ctx context.Context, id, ip, location string) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "ip", Value: ip},
		{Key: "location", Value: location},
		{Key: "updated_at", Value: time.Now()},
	})
}

func (s *Store) UpdateUserDepartment(ctx context.Context, id, department string) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "department", Value: department},
		{Key: "updated_at", Value: time.Now()},
	})
}

// AddUserStorage 管道更新：累加后用 $max 保证计数不落到 0 以下
func (s *Store) AddUserStorage(ctx context.Context, id string, delta int64) error {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "storage_used", Value: bson.D{{Key: "$max", Value: bson.A{
				int64(0),
				bson.D{{Key: "$add", Value: bson.A{
					bson.D{{Key: "$ifNull", Value: bson.A{"$storage_used", int64(0)}}},
					delta,
				}}},
			}}}},
			{Key: "updated_at", Value: "$$NOW"},
		}}},
	}
	res, err := s.col(ColUsers).UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, pipeline)
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return wrapError(mongo.ErrNoDocuments)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.User](ctx, s.col(ColUsers), bson.D{}, opts)
}

func (s *Store) SampleUsers(ctx context.Context, n int) ([]*model.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(n))
	return findMany[model.User](ctx, s.col(ColUsers), bson.D{}, opts)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColUsers), id)
}
