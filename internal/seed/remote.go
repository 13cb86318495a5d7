package seed

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/budprat/stock-sense/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

// RemoteFile is a seed file held by a Source.
type RemoteFile struct {
	ID   string
	Name string
}

// Source lists and downloads seed files kept outside the local filesystem,
// such as a shared Drive folder or a bucket prefix.
type Source interface {
	List(ctx context.Context) ([]RemoteFile, error)
	Download(ctx context.Context, file RemoteFile, destPath string) error
}

var kindOrder = map[Kind]int{KindInventory: 0, KindWaste: 1, KindStorage: 2}

// KindForFile infers the layout from a file name such as
// "inventory_2024-07.csv" or "Storage.xlsx". Other extensions are ignored.
func KindForFile(name string) (Kind, bool) {
	base := strings.ToLower(path.Base(filepath.ToSlash(name)))
	switch filepath.Ext(base) {
	case ".csv", ".xlsx":
	default:
		return "", false
	}
	for kind := range kindOrder {
		if strings.HasPrefix(base, string(kind)) {
			return kind, true
		}
	}
	return "", false
}

// LoadSource downloads every recognised file from src into dir and loads it.
// Inventory files go first so products exist before waste and sensor rows
// refer to them. An empty dir uses a temporary directory removed afterwards.
func (l *Loader) LoadSource(ctx context.Context, src Source, dir string) ([]*Result, error) {
	files, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list seed files: %w", err)
	}

	type pending struct {
		file RemoteFile
		kind Kind
	}
	var queue []pending
	for _, f := range files {
		kind, ok := KindForFile(f.Name)
		if !ok {
			log.Debug().Str("file", f.Name).Msg("seed: skipping unrecognised file")
			continue
		}
		queue = append(queue, pending{file: f, kind: kind})
	}
	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].kind != queue[j].kind {
			return kindOrder[queue[i].kind] < kindOrder[queue[j].kind]
		}
		return queue[i].file.Name < queue[j].file.Name
	})

	if dir == "" {
		tmp, err := os.MkdirTemp("", "stocksense-seed-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create download dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	results := make([]*Result, 0, len(queue))
	for _, p := range queue {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		local := filepath.Join(dir, path.Base(filepath.ToSlash(p.file.Name)))
		if err := src.Download(ctx, p.file, local); err != nil {
			return results, fmt.Errorf("failed to download %s: %w", p.file.Name, err)
		}

		result, err := l.LoadFile(ctx, p.kind, local)
		if err != nil {
			return results, err
		}
		result.Source = p.file.Name
		results = append(results, result)
	}

	return results, nil
}

// BucketSource reads seed files under a prefix of an object storage bucket.
type BucketSource struct {
	store  storage.ObjectStorage
	prefix string
}

func NewBucketSource(store storage.ObjectStorage, prefix string) *BucketSource {
	return &BucketSource{store: store, prefix: prefix}
}

func (b *BucketSource) List(ctx context.Context) ([]RemoteFile, error) {
	objects, err := b.store.ListObjects(ctx, b.prefix)
	if err != nil {
		return nil, err
	}
	files := make([]RemoteFile, 0, len(objects))
	for _, obj := range objects {
		files = append(files, RemoteFile{ID: obj.Key, Name: obj.Key})
	}
	return files, nil
}

func (b *BucketSource) Download(ctx context.Context, file RemoteFile, destPath string) error {
	return b.store.DownloadObject(ctx, file.ID, destPath)
}
