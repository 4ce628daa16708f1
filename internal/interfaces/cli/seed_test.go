package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/infrastructure/memory"
	"github.com/jhoicas/device-rental-api/internal/infrastructure/storage"
)

const seedYAML = `
admin:
  email: admin@rental.test
  password: admin-pass-1
facilities:
  - name: 서울센터
    address: Seoul
    device_types:
      - {category: AR_GLASSES, name: AR글라스, total: 10}
      - {category: BONE_CONDUCTION, name: 골전도 이어폰, total: 4}
    managers:
      - {email: seoul@rental.test, password: manager-pass}
`

func memoryOpts(store *memory.Store) *RootOptions {
	return &RootOptions{
		Open: func(context.Context) (*storage.Backend, ledger.Config, error) {
			return storage.NewMemory(store), ledger.Config{}, nil
		},
	}
}

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCmd(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSeed_Idempotente(t *testing.T) {
	store := memory.NewStore()
	path := writeSeed(t, seedYAML)

	out, err := runCmd(t, memoryOpts(store), "--format", "json", "seed", "-f", path)
	require.NoError(t, err)
	var first SeedReport
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.Equal(t, SeedReport{FacilitiesCreated: 1, TypesCreated: 2, StockAdjusted: 2, UsersCreated: 2}, first)

	out, err = runCmd(t, memoryOpts(store), "--format", "json", "seed", "-f", path)
	require.NoError(t, err)
	var second SeedReport
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.Equal(t, SeedReport{}, second)

	// Cambiar un total solo ajusta ese tipo.
	path = writeSeed(t, strings.Replace(seedYAML, "total: 4", "total: 6", 1))
	out, err = runCmd(t, memoryOpts(store), "--format", "json", "seed", "-f", path)
	require.NoError(t, err)
	var third SeedReport
	require.NoError(t, json.Unmarshal([]byte(out), &third))
	assert.Equal(t, 1, third.StockAdjusted)
}

func TestSeed_StockYJournal(t *testing.T) {
	store := memory.NewStore()
	_, err := runCmd(t, memoryOpts(store), "seed", "-f", writeSeed(t, seedYAML))
	require.NoError(t, err)

	svc, err := memoryOpts(store).services(context.Background())
	require.NoError(t, err)
	facs, err := svc.facilities.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, facs.Items, 1)
	facilityID := facs.Items[0].ID

	types, err := svc.devices.ListTypes(context.Background(), facilityID)
	require.NoError(t, err)
	require.Len(t, types, 2)
	for _, dt := range types {
		s, err := svc.ledger.GetStock(context.Background(), facilityID, dt.ID)
		require.NoError(t, err)
		assert.True(t, s.Consistent())
		assert.Equal(t, s.Total, s.Available)

		moves, err := svc.ledger.ListMovements(context.Background(), facilityID, dt.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, moves, 1)
		assert.Equal(t, entity.MovementTypeAdjust, moves[0].Type)
		assert.Equal(t, "seed", moves[0].Reason)
	}
}

func TestParseSeedFile_Invalido(t *testing.T) {
	cases := map[string]string{
		"categoría":       "facilities:\n  - name: A\n    device_types:\n      - {category: TABLET, name: x, total: 1}\n",
		"total negativo":  "facilities:\n  - name: A\n    device_types:\n      - {category: OTHER, name: x, total: -1}\n",
		"sin nombre":      "facilities:\n  - address: x\n",
		"campo extraño":   "facilitys: []\n",
		"yaml malformado": "facilities: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSeedFile(strings.NewReader(content))
			assert.Error(t, err)
		})
	}
}

func TestRecount(t *testing.T) {
	store := memory.NewStore()
	_, err := runCmd(t, memoryOpts(store), "seed", "-f", writeSeed(t, seedYAML))
	require.NoError(t, err)
	svc, err := memoryOpts(store).services(context.Background())
	require.NoError(t, err)
	facs, err := svc.facilities.List(context.Background(), 10, 0)
	require.NoError(t, err)
	facilityID := facs.Items[0].ID

	// Sin unidades registradas no hay nada que reconstruir.
	out, err := runCmd(t, memoryOpts(store), "--format", "json", "recount", "--facility", facilityID)
	require.NoError(t, err)
	var lines []RecountLine
	require.NoError(t, json.Unmarshal([]byte(out), &lines))
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.False(t, l.Changed)
		assert.Equal(t, l.Before, l.After)
	}

	_, err = runCmd(t, memoryOpts(store), "recount", "--facility", facilityID, "--type", "no-existe")
	assert.Error(t, err)

	_, err = runCmd(t, memoryOpts(store), "recount")
	assert.Error(t, err, "--facility es obligatorio")
}

func TestRoot_FormatoInvalido(t *testing.T) {
	_, err := runCmd(t, memoryOpts(memory.NewStore()), "--format", "xml", "recount", "--facility", "x")
	assert.Error(t, err)
}
