package story

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fabula/internal/model/story"
	"fabula/internal/pkg/id"
)

// ErrNotFound 故事不存在
var ErrNotFound = errors.New("story not found")

// StoryRepository 故事仓库接口
type StoryRepository interface {
	Create(ctx context.Context, s *story.Story) error
	FindAll(ctx context.Context) ([]*story.Story, error)
	FindByID(ctx context.Context, storyID string) (*story.Story, error)
	// UpdateAudioPath 仅更新 audio_path 字段；id 不存在时返回 false 且不创建记录
	UpdateAudioPath(ctx context.Context, storyID, audioPath string) (bool, error)
	// Delete 物理删除，返回记录是否存在
	Delete(ctx context.Context, storyID string) (bool, error)
}

// StoryRepo 故事仓库实现（MongoDB）
type StoryRepo struct {
	coll *mongo.Collection
}

// NewStoryRepo 创建故事仓库
func NewStoryRepo(db *mongo.Database) *StoryRepo {
	var s story.Story
	return &StoryRepo{coll: db.Collection(s.Collection())}
}

// Create 创建故事记录
func (r *StoryRepo) Create(ctx context.Context, s *story.Story) error {
	if s.ID == "" {
		s.ID = id.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	_, err := r.coll.InsertOne(ctx, s)
	return err
}

// FindAll 查询全部故事，按创建时间倒序
// created_at 是毫秒精度，可能相等；id 按生成时间单调，作为第二排序键保证顺序稳定
func (r *StoryRepo) FindAll(ctx context.Context) ([]*story.Story, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "id", Value: -1},
	})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stories []*story.Story
	if err := cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// FindByID 根据ID查询故事
func (r *StoryRepo) FindByID(ctx context.Context, storyID string) (*story.Story, error) {
	var s story.Story
	if err := r.coll.FindOne(ctx, bson.M{"id": storyID}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// UpdateAudioPath 补挂音频路径（创建后唯一允许的字段更新）
func (r *StoryRepo) UpdateAudioPath(ctx context.Context, storyID, audioPath string) (bool, error) {
	result, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": storyID},
		bson.M{"$set": bson.M{"audio_path": audioPath}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// Delete 物理删除故事
func (r *StoryRepo) Delete(ctx context.Context, storyID string) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"id": storyID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
