package story

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Story 生成的故事实体
// 说明：content 创建后不可改写；唯一允许的更新是补挂 audio_path（语音合成成功后）
type Story struct {
	ID            string    `bson:"id" json:"id"`                                           // 故事ID（UUID）
	Title         string    `bson:"title,omitempty" json:"title,omitempty"`                 // 标题（可选）
	Content       string    `bson:"content" json:"content"`                                 // 故事正文（必填）
	ImageAnalysis string    `bson:"image_analysis,omitempty" json:"image_analysis,omitempty"` // 图片分析文本
	ImagePath     string    `bson:"image_path,omitempty" json:"image_path,omitempty"`       // 图片存储路径
	AudioPath     string    `bson:"audio_path,omitempty" json:"audio_path,omitempty"`       // 音频存储路径
	Prompt        string    `bson:"prompt,omitempty" json:"prompt,omitempty"`               // 重新生成时的自定义指令
	WordCount     int       `bson:"word_count,omitempty" json:"word_count,omitempty"`       // 正文词数
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`                           // 创建时间（不可变）
}

// Collection 返回集合名称
func (s *Story) Collection() string {
	return "stories"
}

// EnsureIndexes 创建和维护索引
func (s *Story) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(s.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
