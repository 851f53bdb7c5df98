package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// encodePNG 生成指定尺寸的测试图片
func encodePNG(t *testing.T, width, height int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return &buf
}

func TestValidFilename(t *testing.T) {
	Convey("上传文件名校验", t, func() {
		cases := []struct {
			name string
			want bool
		}{
			{"photo.jpg", true},
			{"photo.JPG", true},
			{"photo.jpeg", true},
			{"photo.png", true},
			{"animation.gif", true},
			{"archive.zip", false},
			{"script.sh", false},
			{"noext", false},
			{"", false},
			{"double.tar.gz", false},
		}
		for _, tc := range cases {
			So(ValidFilename(tc.name), ShouldEqual, tc.want)
		}
	})
}

func TestNormalize(t *testing.T) {
	Convey("图片归一化", t, func() {
		Convey("超出最大边长的图片按长边等比缩小", func() {
			buf := encodePNG(t, 2000, 1000)

			result, err := Normalize(buf, 1024)
			So(err, ShouldBeNil)
			So(result.Width, ShouldEqual, 1024)
			So(result.Height, ShouldEqual, 512)

			// 结果应是合法的 JPEG
			raw, err := base64.StdEncoding.DecodeString(result.Base64)
			So(err, ShouldBeNil)
			decoded, format, err := image.Decode(bytes.NewReader(raw))
			So(err, ShouldBeNil)
			So(format, ShouldEqual, "jpeg")
			So(decoded.Bounds().Dx(), ShouldEqual, 1024)
			So(decoded.Bounds().Dy(), ShouldEqual, 512)
		})

		Convey("竖图按高度缩小", func() {
			buf := encodePNG(t, 500, 2048)

			result, err := Normalize(buf, 1024)
			So(err, ShouldBeNil)
			So(result.Width, ShouldEqual, 250)
			So(result.Height, ShouldEqual, 1024)
		})

		Convey("不超限的图片保持原尺寸", func() {
			buf := encodePNG(t, 640, 480)

			result, err := Normalize(buf, 1024)
			So(err, ShouldBeNil)
			So(result.Width, ShouldEqual, 640)
			So(result.Height, ShouldEqual, 480)
		})

		Convey("maxDim 为 0 时使用默认值", func() {
			buf := encodePNG(t, 100, 100)

			result, err := Normalize(buf, 0)
			So(err, ShouldBeNil)
			So(result.Width, ShouldEqual, 100)
		})

		Convey("非图片数据返回 ErrNotImage", func() {
			_, err := Normalize(strings.NewReader("definitely not an image"), 1024)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, ErrNotImage.Error())
		})

		Convey("DataURI 携带 JPEG 前缀", func() {
			buf := encodePNG(t, 10, 10)

			result, err := Normalize(buf, 1024)
			So(err, ShouldBeNil)
			So(result.DataURI(), ShouldStartWith, "data:image/jpeg;base64,")
		})
	})
}

func TestNormalizeFile(t *testing.T) {
	Convey("文件不存在时返回错误", t, func() {
		_, err := NormalizeFile("/nonexistent/path.png", 1024)
		So(err, ShouldNotBeNil)
	})
}
