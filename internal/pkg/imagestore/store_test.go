package imagestore

import (
	"context"
	"encoding/base64"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"fabula/internal/pkg/storage/local"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := local.NewLocalStorage(t.TempDir(), "")
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}
	return New(st)
}

func TestImageStore(t *testing.T) {
	Convey("图片暂存仓库", t, func() {
		ctx := context.Background()
		store := newTestStore(t)

		Convey("写入后可按ID读回相同内容", func() {
			payload := base64.StdEncoding.EncodeToString([]byte("fake jpeg bytes"))

			payloadID, err := store.Put(ctx, payload)
			So(err, ShouldBeNil)
			So(payloadID, ShouldNotBeEmpty)

			got, err := store.Get(ctx, payloadID)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, payload)
		})

		Convey("每次写入分配不同的ID", func() {
			payload := base64.StdEncoding.EncodeToString([]byte("same bytes"))

			id1, err := store.Put(ctx, payload)
			So(err, ShouldBeNil)
			id2, err := store.Put(ctx, payload)
			So(err, ShouldBeNil)
			So(id1, ShouldNotEqual, id2)
		})

		Convey("未知ID返回 ErrNotFound", func() {
			_, err := store.Get(ctx, "missing-id")
			So(err, ShouldEqual, ErrNotFound)
		})

		Convey("非法 base64 写入失败", func() {
			_, err := store.Put(ctx, "!!! not base64 !!!")
			So(err, ShouldNotBeNil)
		})
	})
}
