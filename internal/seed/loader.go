package seed

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
	"github.com/budprat/stock-sense/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// TxRunner is implemented by *postgres.DB.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// Writer persists parsed rows. *repository.IngestRepository implements it.
type Writer interface {
	UpsertProduct(ctx context.Context, product *domain.Product) error
	UpsertInventory(ctx context.Context, item *domain.InventorySnapshot) error
	InsertWaste(ctx context.Context, entry *domain.WasteLedgerEntry) error
	InsertStorageSample(ctx context.Context, sample *domain.StorageConditionSample) error
}

// Invalidator drops stored prediction jobs made stale by new seed data.
// cache.PredictionJobStore implements it.
type Invalidator interface {
	InvalidateOwner(ctx context.Context, ownerID int64) error
	InvalidateAll(ctx context.Context) error
}

// Result summarises one loaded file.
type Result struct {
	Kind     Kind       `json:"kind"`
	Source   string     `json:"source"`
	Written  int        `json:"written"`
	Rejected []RowError `json:"rejected,omitempty"`
}

// Loader writes each file in a single transaction, so a failing write leaves
// the tables untouched.
type Loader struct {
	db          TxRunner
	newWriter   func(tx *sql.Tx) Writer
	strict      bool
	invalidator Invalidator
}

// NewLoader returns a loader. In strict mode any rejected row aborts the file
// before anything is written.
func NewLoader(db TxRunner, strict bool) *Loader {
	return &Loader{
		db: db,
		newWriter: func(tx *sql.Tx) Writer {
			return repository.NewIngestRepository(tx)
		},
		strict: strict,
	}
}

// WithInvalidator makes the loader drop the stored prediction jobs of every
// owner a committed file touched. Storage samples carry no owner, so they
// drop all owners' jobs.
func (l *Loader) WithInvalidator(inv Invalidator) *Loader {
	l.invalidator = inv
	return l
}

// LoadFile loads a CSV file, or the first sheet of an .xlsx workbook.
func (l *Loader) LoadFile(ctx context.Context, kind Kind, path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		if r, err = xlsxToCSV(file); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	return l.Load(ctx, kind, path, r)
}

func (l *Loader) Load(ctx context.Context, kind Kind, source string, r io.Reader) (*Result, error) {
	b, err := l.prepare(kind, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	result := &Result{Kind: kind, Source: source, Rejected: b.rejects}
	for _, reject := range b.rejects {
		log.Warn().Str("source", source).Int("line", reject.Line).Msg("seed: rejected row: " + reject.Err)
	}
	if l.strict && len(b.rejects) > 0 {
		return result, fmt.Errorf("%s: %d invalid rows, nothing written", source, len(b.rejects))
	}

	if b.count > 0 {
		err = l.db.WithTx(ctx, func(tx *sql.Tx) error {
			return b.write(ctx, l.newWriter(tx))
		})
		if err != nil {
			return result, fmt.Errorf("%s: %w", source, err)
		}
		l.invalidate(ctx, source, b)
	}
	result.Written = b.count

	log.Info().
		Str("source", source).
		Str("kind", string(kind)).
		Int("written", result.Written).
		Int("rejected", len(result.Rejected)).
		Msg("seed: file loaded")
	return result, nil
}

// invalidate runs after commit; failures only leave stale jobs behind.
func (l *Loader) invalidate(ctx context.Context, source string, b *batch) {
	if l.invalidator == nil {
		return
	}
	if b.allOwners {
		if err := l.invalidator.InvalidateAll(ctx); err != nil {
			log.Warn().Err(err).Str("source", source).Msg("seed: failed to invalidate stored prediction jobs")
		}
		return
	}
	for _, owner := range b.owners {
		if err := l.invalidator.InvalidateOwner(ctx, owner); err != nil {
			log.Warn().Err(err).Str("source", source).Int64("owner_id", owner).
				Msg("seed: failed to invalidate stored prediction jobs")
		}
	}
}

type writeFunc func(ctx context.Context, w Writer) error

// batch is a parsed file ready to be written.
type batch struct {
	write     writeFunc
	count     int
	rejects   []RowError
	owners    []int64
	allOwners bool
	seen      map[int64]struct{}
}

func (b *batch) addOwner(id int64) {
	if b.seen == nil {
		b.seen = make(map[int64]struct{})
	}
	if _, ok := b.seen[id]; ok {
		return
	}
	b.seen[id] = struct{}{}
	b.owners = append(b.owners, id)
}

func (l *Loader) prepare(kind Kind, r io.Reader) (*batch, error) {
	switch kind {
	case KindInventory:
		rows, rejects, err := ParseInventory(r)
		if err != nil {
			return nil, err
		}
		b := &batch{count: len(rows), rejects: rejects}
		for i := range rows {
			b.addOwner(rows[i].Snapshot.OwnerID)
		}
		b.write = func(ctx context.Context, w Writer) error {
			for i := range rows {
				if rows[i].Product != nil {
					if err := w.UpsertProduct(ctx, rows[i].Product); err != nil {
						return err
					}
				}
				if err := w.UpsertInventory(ctx, &rows[i].Snapshot); err != nil {
					return err
				}
			}
			return nil
		}
		return b, nil

	case KindWaste:
		entries, rejects, err := ParseWaste(r)
		if err != nil {
			return nil, err
		}
		b := &batch{count: len(entries), rejects: rejects}
		for i := range entries {
			b.addOwner(entries[i].OwnerID)
		}
		b.write = func(ctx context.Context, w Writer) error {
			for i := range entries {
				if err := w.InsertWaste(ctx, &entries[i]); err != nil {
					return err
				}
			}
			return nil
		}
		return b, nil

	case KindStorage:
		samples, rejects, err := ParseStorage(r)
		if err != nil {
			return nil, err
		}
		b := &batch{count: len(samples), rejects: rejects, allOwners: true}
		b.write = func(ctx context.Context, w Writer) error {
			for i := range samples {
				if err := w.InsertStorageSample(ctx, &samples[i]); err != nil {
					return err
				}
			}
			return nil
		}
		return b, nil

	default:
		return nil, fmt.Errorf("unknown seed kind %q", kind)
	}
}
