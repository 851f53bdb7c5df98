package storagefactory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"fabula/internal/config"
	"fabula/internal/pkg/storage"
)

func TestNewStorage(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr bool
	}{
		{
			name: "valid local storage config",
			cfg: &config.StorageConfig{
				Type: "local",
				Local: &config.LocalConfig{
					BasePath: t.TempDir(),
					BaseURL:  "http://localhost:5000/storage",
				},
			},
			wantErr: false,
		},
		{
			name: "missing local config",
			cfg: &config.StorageConfig{
				Type:  "local",
				Local: nil,
			},
			wantErr: true,
		},
		{
			name: "unsupported storage type",
			cfg: &config.StorageConfig{
				Type: "invalid",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := NewStorage(tt.cfg)

			if tt.wantErr {
				if err == nil {
					t.Errorf("NewStorage() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("NewStorage() unexpected error: %v", err)
				return
			}
			if st == nil {
				t.Errorf("NewStorage() expected storage instance, got nil")
				return
			}
			if st.GetStorageType() != string(storage.StorageTypeLocal) {
				t.Errorf("GetStorageType() = %v, want local", st.GetStorageType())
			}
		})
	}
}

func TestLocalStorage_Operations(t *testing.T) {
	cfg := &config.StorageConfig{
		Type: "local",
		Local: &config.LocalConfig{
			BasePath: t.TempDir(),
			BaseURL:  "http://localhost:5000/storage",
		},
	}

	ctx := context.Background()
	st, err := NewStorage(cfg)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	testKey := "audio/test.mp3"
	testContent := "binary audio payload"

	url, err := st.Upload(ctx, testKey, strings.NewReader(testContent), "audio/mpeg")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.Contains(url, testKey) {
		t.Errorf("Upload() url = %v, should contain %v", url, testKey)
	}

	exists, err := st.Exists(ctx, testKey)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Errorf("Exists() = false, want true")
	}

	reader, err := st.Download(ctx, testKey)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	defer reader.Close()

	downloaded, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(downloaded) != testContent {
		t.Errorf("Download() content = %v, want %v", string(downloaded), testContent)
	}

	if err := st.Delete(ctx, testKey); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	exists, err = st.Exists(ctx, testKey)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Errorf("Exists() = true, want false (file should be deleted)")
	}
}

func TestLocalStorage_NonExistentFile(t *testing.T) {
	cfg := &config.StorageConfig{
		Type: "local",
		Local: &config.LocalConfig{
			BasePath: t.TempDir(),
		},
	}

	st, err := NewStorage(cfg)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	missingKey := "nonexistent/file.mp3"

	// 下载不存在的文件应返回 ErrNotExist
	_, err = st.Download(ctx, missingKey)
	if !errors.Is(err, storage.ErrNotExist) {
		t.Errorf("Download() error = %v, want ErrNotExist", err)
	}

	// 删除不存在的文件应当成功
	if err := st.Delete(ctx, missingKey); err != nil {
		t.Errorf("Delete() error = %v, should succeed for non-existent file", err)
	}
}
