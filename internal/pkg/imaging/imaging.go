// Package imaging 实现上传图片的校验与归一化：
// 解码、铺平透明通道、按最大边长等比缩小、重编码为 JPEG 并输出 base64。
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif" // GIF 解码器注册
	_ "image/png" // PNG 解码器注册

	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
)

const (
	// DefaultMaxDimension 默认最大边长（像素）
	DefaultMaxDimension = 1024

	// jpegQuality 重编码质量
	jpegQuality = 85
)

// ErrNotImage 输入不是可解码的图片
var ErrNotImage = errors.New("data is not a decodable image")

// allowedExts 允许的上传扩展名
var allowedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// ValidFilename 校验上传文件名：非空且扩展名在允许集合内
func ValidFilename(name string) bool {
	if name == "" {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return allowedExts[ext]
}

// Normalized 归一化结果
type Normalized struct {
	Base64 string // JPEG 数据的 base64 编码
	Width  int    // 最终宽度
	Height int    // 最终高度
}

// DataURI 返回可直接内嵌到页面的 data URI
func (n *Normalized) DataURI() string {
	return "data:image/jpeg;base64," + n.Base64
}

// Normalize 解码图片并归一化
// 超出 maxDim 的图片按长边等比缩小到 maxDim；不放大小图
func Normalize(r io.Reader, maxDim int) (*Normalized, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}

	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	log.Debug().
		Str("format", format).
		Int("width", width).
		Int("height", height).
		Msg("decoded upload")

	newWidth, newHeight := fitWithin(width, height, maxDim)

	// 铺平到不透明 RGB 画布；需要缩小时使用 Catmull-Rom 重采样
	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
	if newWidth == width && newHeight == height {
		xdraw.Draw(dst, dst.Bounds(), src, bounds.Min, xdraw.Over)
	} else {
		log.Debug().
			Int("new_width", newWidth).
			Int("new_height", newHeight).
			Msg("resizing upload")
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &Normalized{
		Base64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:  newWidth,
		Height: newHeight,
	}, nil
}

// NormalizeFile 从文件路径读取并归一化
func NormalizeFile(path string, maxDim int) (*Normalized, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	return Normalize(file, maxDim)
}

// fitWithin 计算等比缩小后的尺寸，长边等于 maxDim；不超限时原样返回
func fitWithin(width, height, maxDim int) (int, int) {
	if width <= maxDim && height <= maxDim {
		return width, height
	}
	if width > height {
		h := int(float64(height) * (float64(maxDim) / float64(width)))
		if h < 1 {
			h = 1
		}
		return maxDim, h
	}
	w := int(float64(width) * (float64(maxDim) / float64(height)))
	if w < 1 {
		w = 1
	}
	return w, maxDim
}
