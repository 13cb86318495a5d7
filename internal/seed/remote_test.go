package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type dirSource struct {
	root  string
	names []string
	got   []string
}

func (d *dirSource) List(ctx context.Context) ([]RemoteFile, error) {
	files := make([]RemoteFile, 0, len(d.names))
	for _, n := range d.names {
		files = append(files, RemoteFile{ID: n, Name: n})
	}
	return files, nil
}

func (d *dirSource) Download(ctx context.Context, f RemoteFile, dest string) error {
	d.got = append(d.got, f.Name)
	body, err := os.ReadFile(filepath.Join(d.root, f.ID))
	if err != nil {
		return err
	}
	return os.WriteFile(dest, body, 0644)
}

func TestKindForFile(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		ok   bool
	}{
		{"inventory.csv", KindInventory, true},
		{"seeds/Waste_2024-06.CSV", KindWaste, true},
		{"storage-sensors.xlsx", KindStorage, true},
		{"inventory.json", "", false},
		{"sales.csv", "", false},
	}
	for _, tt := range tests {
		kind, ok := KindForFile(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.kind, kind, tt.name)
	}
}

func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestLoadSourceOrdersInventoryFirst(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "waste.csv"),
		[]byte("owner_id,product_id,quantity,waste_date\n7,1,2,2024-06-01\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.md"), []byte("hi"), 0644))
	writeWorkbook(t, filepath.Join(root, "inventory.xlsx"), [][]any{
		{"owner_id", "product_id", "product_name", "location_id", "current_stock", "expiration_date"},
		{7, 1, "Milk", 2, 24, "2024-07-18"},
		{7, 2, "Bread", 2, 6, "2024-07-17"},
	})

	src := &dirSource{root: root, names: []string{"waste.csv", "readme.md", "inventory.xlsx"}}
	w := &recordingWriter{}
	l, tx := newTestLoader(false, w)

	results, err := l.LoadSource(context.Background(), src, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"inventory.xlsx", "waste.csv"}, src.got)
	require.Len(t, results, 2)
	assert.Equal(t, KindInventory, results[0].Kind)
	assert.Equal(t, 2, results[0].Written)
	assert.Equal(t, "inventory.xlsx", results[0].Source)
	assert.Equal(t, 1, results[1].Written)
	assert.Equal(t, 2, tx.calls)
	assert.Equal(t, []int64{1, 2}, w.products)
	assert.Equal(t, 1, w.waste)
}

type failingSource struct{}

func (failingSource) List(context.Context) ([]RemoteFile, error) {
	return nil, fmt.Errorf("permission denied")
}

func (failingSource) Download(context.Context, RemoteFile, string) error { return nil }

func TestLoadSourceListError(t *testing.T) {
	l, _ := newTestLoader(false, &recordingWriter{})
	_, err := l.LoadSource(context.Background(), failingSource{}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}
