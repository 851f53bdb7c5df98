package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"fabula/internal/model"
	"fabula/internal/model/story"
	"fabula/internal/pkg/id"
	"fabula/internal/pkg/imagestore"
	"fabula/internal/pkg/storage/local"
	storyRepo "fabula/internal/repository/story"
)

// fakeNarrator 确定性的图片分析/故事生成实现
type fakeNarrator struct {
	analyzeCalls int
	storyCalls   int
	lastPrompt   string
	lastLang     model.Language
	analyzeErr   error
	storyErr     error
}

func (f *fakeNarrator) AnalyzeImage(ctx context.Context, imageB64 string, lang model.Language) (string, error) {
	f.analyzeCalls++
	f.lastLang = lang
	if f.analyzeErr != nil {
		return "", f.analyzeErr
	}
	return fmt.Sprintf("analysis #%d", f.analyzeCalls), nil
}

func (f *fakeNarrator) GenerateStory(ctx context.Context, analysis, customPrompt string, lang model.Language) (string, error) {
	f.storyCalls++
	f.lastPrompt = customPrompt
	f.lastLang = lang
	if f.storyErr != nil {
		return "", f.storyErr
	}
	return fmt.Sprintf("story from %s", analysis), nil
}

// fakeSynthesizer 确定性的语音合成实现
type fakeSynthesizer struct {
	lastText string
	lastLang model.Language
	err      error
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text string, lang model.Language) ([]byte, error) {
	f.lastText = text
	f.lastLang = lang
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3:" + text), nil
}

// fakeStoryRepo 内存版故事仓库
type fakeStoryRepo struct {
	stories map[string]*story.Story
	order   []string
}

func newFakeStoryRepo() *fakeStoryRepo {
	return &fakeStoryRepo{stories: make(map[string]*story.Story)}
}

func (r *fakeStoryRepo) Create(ctx context.Context, s *story.Story) error {
	if s.ID == "" {
		s.ID = id.New()
	}
	r.stories[s.ID] = s
	r.order = append(r.order, s.ID)
	return nil
}

func (r *fakeStoryRepo) FindAll(ctx context.Context) ([]*story.Story, error) {
	out := make([]*story.Story, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.stories[r.order[i]])
	}
	return out, nil
}

func (r *fakeStoryRepo) FindByID(ctx context.Context, storyID string) (*story.Story, error) {
	s, ok := r.stories[storyID]
	if !ok {
		return nil, storyRepo.ErrNotFound
	}
	return s, nil
}

func (r *fakeStoryRepo) UpdateAudioPath(ctx context.Context, storyID, audioPath string) (bool, error) {
	s, ok := r.stories[storyID]
	if !ok {
		return false, nil
	}
	s.AudioPath = audioPath
	return true, nil
}

func (r *fakeStoryRepo) Delete(ctx context.Context, storyID string) (bool, error) {
	if _, ok := r.stories[storyID]; !ok {
		return false, nil
	}
	delete(r.stories, storyID)
	return true, nil
}

// writeTestImage 生成一张 PNG 测试图片文件
func writeTestImage(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "upload.png")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return path
}

type testEnv struct {
	narrator *fakeNarrator
	synth    *fakeSynthesizer
	repo     *fakeStoryRepo
	svc      StoryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st, err := local.NewLocalStorage(t.TempDir(), "")
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	env := &testEnv{
		narrator: &fakeNarrator{},
		synth:    &fakeSynthesizer{},
		repo:     newFakeStoryRepo(),
	}
	env.svc = NewStoryService(env.narrator, env.synth, imagestore.New(st), env.repo, st, 1024)
	return env
}

func TestGenerateFromImage(t *testing.T) {
	Convey("上传图片生成故事", t, func() {
		ctx := context.Background()
		env := newTestEnv(t)
		sess := model.NewSessionData()

		Convey("完整流程：暂存、分析、生成、落库、更新会话", func() {
			imagePath := writeTestImage(t, 200, 100)

			result, err := env.svc.GenerateFromImage(ctx, sess, imagePath)
			So(err, ShouldBeNil)
			So(result.ImageAnalysis, ShouldEqual, "analysis #1")
			So(result.Story, ShouldEqual, "story from analysis #1")
			So(result.StoryID, ShouldNotBeEmpty)
			So(result.ImageData, ShouldStartWith, "data:image/jpeg;base64,")

			// 会话记录了图片与最近故事
			So(sess.ImageID, ShouldNotBeEmpty)
			So(sess.LastStoryID, ShouldEqual, result.StoryID)

			// 记录已落库且带词数
			saved, err := env.repo.FindByID(ctx, result.StoryID)
			So(err, ShouldBeNil)
			So(saved.Content, ShouldEqual, result.Story)
			So(saved.ImageAnalysis, ShouldEqual, result.ImageAnalysis)
			So(saved.WordCount, ShouldBeGreaterThan, 0)
		})

		Convey("会话语言传给生成器", func() {
			sess.Language = model.LanguageZH
			imagePath := writeTestImage(t, 50, 50)

			_, err := env.svc.GenerateFromImage(ctx, sess, imagePath)
			So(err, ShouldBeNil)
			So(env.narrator.lastLang, ShouldEqual, model.LanguageZH)
		})

		Convey("分析失败时图片ID仍留在会话中", func() {
			env.narrator.analyzeErr = errors.New("model down")
			imagePath := writeTestImage(t, 50, 50)

			_, err := env.svc.GenerateFromImage(ctx, sess, imagePath)
			So(err, ShouldNotBeNil)
			So(sess.ImageID, ShouldNotBeEmpty)
			So(sess.LastStoryID, ShouldBeEmpty)
		})

		Convey("文件不是图片时报错", func() {
			badPath := filepath.Join(t.TempDir(), "fake.png")
			So(os.WriteFile(badPath, []byte("not an image"), 0o644), ShouldBeNil)

			_, err := env.svc.GenerateFromImage(ctx, sess, badPath)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRegenerate(t *testing.T) {
	Convey("重新生成故事", t, func() {
		ctx := context.Background()
		env := newTestEnv(t)
		sess := model.NewSessionData()

		Convey("会话没有图片时返回 ErrNoImage", func() {
			_, err := env.svc.Regenerate(ctx, sess, "")
			So(err, ShouldEqual, ErrNoImage)
		})

		Convey("每次重新生成都重新分析图片", func() {
			imagePath := writeTestImage(t, 100, 100)
			_, err := env.svc.GenerateFromImage(ctx, sess, imagePath)
			So(err, ShouldBeNil)
			So(env.narrator.analyzeCalls, ShouldEqual, 1)

			result, err := env.svc.Regenerate(ctx, sess, "make it spooky")
			So(err, ShouldBeNil)
			So(env.narrator.analyzeCalls, ShouldEqual, 2)
			So(env.narrator.lastPrompt, ShouldEqual, "make it spooky")
			So(result.StoryID, ShouldNotEqual, "")

			// 新记录保存了自定义指令
			saved, err := env.repo.FindByID(ctx, result.StoryID)
			So(err, ShouldBeNil)
			So(saved.Prompt, ShouldEqual, "make it spooky")
			So(sess.LastStoryID, ShouldEqual, result.StoryID)
		})

		Convey("暂存图片丢失时返回 ErrNoImage", func() {
			sess.ImageID = "gone"
			_, err := env.svc.Regenerate(ctx, sess, "")
			So(err, ShouldEqual, ErrNoImage)
		})
	})
}

func TestGenerateSpeech(t *testing.T) {
	Convey("语音合成", t, func() {
		ctx := context.Background()
		env := newTestEnv(t)
		sess := model.NewSessionData()

		Convey("空文本在任何调用前被拒绝", func() {
			_, err := env.svc.GenerateSpeech(ctx, sess, "   ", "")
			So(err, ShouldEqual, ErrEmptyText)
			So(env.synth.lastText, ShouldBeEmpty)
		})

		Convey("合成音频并挂接到指定故事", func() {
			record := &story.Story{Content: "a story"}
			So(env.repo.Create(ctx, record), ShouldBeNil)

			result, err := env.svc.GenerateSpeech(ctx, sess, "read me", record.ID)
			So(err, ShouldBeNil)
			So(result.AudioPath, ShouldStartWith, "audio/")
			So(result.AudioPath, ShouldEndWith, ".mp3")
			So(result.StoryID, ShouldEqual, record.ID)

			saved, _ := env.repo.FindByID(ctx, record.ID)
			So(saved.AudioPath, ShouldEqual, result.AudioPath)

			// 音频可以读回
			reader, err := env.svc.OpenAudio(ctx, filepath.Base(result.AudioPath))
			So(err, ShouldBeNil)
			reader.Close()
		})

		Convey("未指定故事时挂到会话最近一篇", func() {
			record := &story.Story{Content: "latest"}
			So(env.repo.Create(ctx, record), ShouldBeNil)
			sess.LastStoryID = record.ID

			result, err := env.svc.GenerateSpeech(ctx, sess, "read me", "")
			So(err, ShouldBeNil)
			So(result.StoryID, ShouldEqual, record.ID)
		})

		Convey("故事ID不存在时音频仍生成，但不挂接", func() {
			result, err := env.svc.GenerateSpeech(ctx, sess, "read me", "missing-id")
			So(err, ShouldBeNil)
			So(result.AudioPath, ShouldNotBeEmpty)
			So(result.StoryID, ShouldBeEmpty)
		})

		Convey("合成语言跟随会话", func() {
			sess.Language = model.LanguageZH
			_, err := env.svc.GenerateSpeech(ctx, sess, "你好", "")
			So(err, ShouldBeNil)
			So(env.synth.lastLang, ShouldEqual, model.LanguageZH)
		})
	})
}

func TestStoryQueries(t *testing.T) {
	Convey("故事查询与删除", t, func() {
		ctx := context.Background()
		env := newTestEnv(t)

		Convey("不存在的故事返回 ErrStoryNotFound", func() {
			_, err := env.svc.GetStory(ctx, "missing")
			So(err, ShouldEqual, ErrStoryNotFound)

			So(env.svc.DeleteStory(ctx, "missing"), ShouldEqual, ErrStoryNotFound)
		})

		Convey("列表按创建时间倒序", func() {
			first := &story.Story{Content: "first"}
			second := &story.Story{Content: "second"}
			So(env.repo.Create(ctx, first), ShouldBeNil)
			So(env.repo.Create(ctx, second), ShouldBeNil)

			stories, err := env.svc.ListStories(ctx)
			So(err, ShouldBeNil)
			So(len(stories), ShouldEqual, 2)
			So(stories[0].Content, ShouldEqual, "second")
		})

		Convey("删除后查询不到", func() {
			record := &story.Story{Content: "doomed"}
			So(env.repo.Create(ctx, record), ShouldBeNil)
			So(env.svc.DeleteStory(ctx, record.ID), ShouldBeNil)

			_, err := env.svc.GetStory(ctx, record.ID)
			So(err, ShouldEqual, ErrStoryNotFound)
		})

		Convey("不存在的音频返回 ErrAudioNotFound", func() {
			_, err := env.svc.OpenAudio(ctx, "nope.mp3")
			So(err, ShouldEqual, ErrAudioNotFound)
		})
	})
}
