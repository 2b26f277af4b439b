package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quernali/goDexOrder/internal/core/chain"
	"github.com/quernali/goDexOrder/internal/core/value"
)

const (
	testAddr   = "addr1vy9q5zs2pg9q5zs2pg9q5zs2pg9q5zs2pg9q5zs2pg9q5zs3hc7t4"
	testTxHash = "5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a"
)

func writeJSON(w http.ResponseWriter, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, format, args...)
}

func newTestMaestro(t *testing.T, handler http.Handler) (*Maestro, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)
	m, err := NewMaestro(srv.URL, "test-key", log)
	require.NoError(t, err)
	return m, srv
}

func TestUTxOsByOutRefs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/transactions/outputs", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "test-key", r.Header.Get("api-key"))
		require.Equal(t, "true", r.URL.Query().Get("resolve_datums"))

		var refs []string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&refs))
		require.Equal(t, []string{testTxHash + "#0"}, refs)

		writeJSON(w, `{"data":[{
			"tx_hash":%q,"index":0,"address":%q,
			"assets":[{"unit":"lovelace","amount":"3000000"},{"unit":"%s","amount":"500"}],
			"datum":{"type":"inline","hash":"%s","bytes":"d87980"}
		}]}`, testTxHash, testAddr, strings.Repeat("11", 28)+"abcd", strings.Repeat("77", 32))
	})
	m, _ := newTestMaestro(t, mux)

	utxos, err := m.UTxOsByOutRefs(context.Background(), []chain.OutRef{{TxHash: testTxHash, OutputIndex: 0}})
	require.NoError(t, err)
	require.Len(t, utxos, 1)

	u := utxos[0]
	assert.Equal(t, chain.OutRef{TxHash: testTxHash, OutputIndex: 0}, u.Ref)
	assert.Equal(t, chain.KeyAddress(strings.Repeat("0a", 28)), u.Address)
	assert.Equal(t, "d87980", u.Datum)
	assert.Empty(t, u.DatumHash)
	assert.Equal(t, big.NewInt(3_000_000), u.Value.Amount(value.Lovelace))
	assert.Equal(t, big.NewInt(500), u.Value.Amount(value.Unit(strings.Repeat("11", 28)+"abcd")))

	// The inline datum was cached under its hash on the way through.
	got, err := m.DatumByHash(context.Background(), strings.Repeat("77", 32))
	require.NoError(t, err)
	assert.Equal(t, "d87980", got)
}

func TestUTxOsByOutRefsHashOnlyDatum(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/transactions/outputs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":[{
			"tx_hash":%q,"index":1,"address":%q,
			"assets":[{"unit":"lovelace","amount":"1000000"}],
			"datum":{"type":"hash","hash":"%s"}
		}]}`, testTxHash, testAddr, strings.Repeat("77", 32))
	})
	m, _ := newTestMaestro(t, mux)

	utxos, err := m.UTxOsByOutRefs(context.Background(), []chain.OutRef{{TxHash: testTxHash, OutputIndex: 1}})
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Empty(t, utxos[0].Datum)
	assert.Equal(t, strings.Repeat("77", 32), utxos[0].DatumHash)
}

func TestUTxOByUnit(t *testing.T) {
	unit := value.Unit(strings.Repeat("ef", 28) + "636f6e666967")

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/assets/"+string(unit)+"/utxos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":[{"tx_hash":%q,"index":2}]}`, testTxHash)
	})
	mux.HandleFunc("/v1/transactions/outputs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":[{
			"tx_hash":%q,"index":2,"address":%q,
			"assets":[{"unit":"lovelace","amount":"2000000"},{"unit":"%s","amount":"1"}]
		}]}`, testTxHash, testAddr, unit)
	})
	m, _ := newTestMaestro(t, mux)

	u, err := m.UTxOByUnit(context.Background(), unit)
	require.NoError(t, err)
	assert.Equal(t, chain.OutRef{TxHash: testTxHash, OutputIndex: 2}, u.Ref)
	assert.Equal(t, big.NewInt(1), u.Value.Amount(unit))
}

func TestUTxOByUnitNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":[]}`)
	})
	m, _ := newTestMaestro(t, mux)

	_, err := m.UTxOByUnit(context.Background(), "deadbeef")
	assert.ErrorContains(t, err, "not found")
}

func TestDatumByHashCaches(t *testing.T) {
	var hits atomic.Int32
	hash := strings.Repeat("88", 32)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/datums/"+hash, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, `{"data":{"bytes":"d87a80"}}`)
	})
	m, _ := newTestMaestro(t, mux)

	for i := 0; i < 3; i++ {
		got, err := m.DatumByHash(context.Background(), hash)
		require.NoError(t, err)
		assert.Equal(t, "d87a80", got)
	}
	assert.Equal(t, int32(1), hits.Load(), "repeat lookups must hit the cache")
}

func TestServerErrorSurfaces(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"nope"}`, http.StatusForbidden)
	})
	m, _ := newTestMaestro(t, mux)

	_, err := m.UTxOsByOutRefs(context.Background(), []chain.OutRef{{TxHash: testTxHash}})
	assert.ErrorContains(t, err, "403")
}
