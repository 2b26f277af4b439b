// Package provider implements ledger-state access against hosted chain
// indexers. The swap assemblers consume it through their ChainQuery
// interface; nothing in here knows about orders.
package provider

import (
	"context"
	"fmt"
	"math/big"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/quernali/goDexOrder/internal/core/chain"
	"github.com/quernali/goDexOrder/internal/core/value"
)

// datumCacheSize bounds the in-memory datum-preimage cache. Datums are
// content addressed, so cached entries never go stale.
const datumCacheSize = 4096

// Maestro queries the Maestro chain-indexer API.
type Maestro struct {
	http   *resty.Client
	log    *logrus.Entry
	datums *lru.Cache[string, string]
}

// NewMaestro returns a client against the given API base URL. The key goes
// into the api-key header on every request.
func NewMaestro(baseURL, apiKey string, log *logrus.Logger) (*Maestro, error) {
	cache, err := lru.New[string, string](datumCacheSize)
	if err != nil {
		return nil, err
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("api-key", apiKey).
		SetRetryCount(2)
	return &Maestro{
		http:   client,
		log:    log.WithField("component", "maestro"),
		datums: cache,
	}, nil
}

type outputsResponse struct {
	Data []maestroUTxO `json:"data"`
}

type assetUTxOsResponse struct {
	Data []struct {
		TxHash string `json:"tx_hash"`
		Index  uint32 `json:"index"`
	} `json:"data"`
}

type datumResponse struct {
	Data struct {
		Bytes string `json:"bytes"`
	} `json:"data"`
}

type maestroUTxO struct {
	TxHash  string `json:"tx_hash"`
	Index   uint32 `json:"index"`
	Address string `json:"address"`
	Assets  []struct {
		Unit   string `json:"unit"`
		Amount string `json:"amount"`
	} `json:"assets"`
	Datum *struct {
		Type  string `json:"type"`
		Hash  string `json:"hash"`
		Bytes string `json:"bytes"`
	} `json:"datum"`
}

func (m *Maestro) toChainUTxO(u maestroUTxO) (chain.UTxO, error) {
	addr, _, err := chain.ParseAddress(u.Address)
	if err != nil {
		return chain.UTxO{}, fmt.Errorf("utxo %s#%d: %w", u.TxHash, u.Index, err)
	}
	v := value.Value{}
	for _, a := range u.Assets {
		amount, ok := new(big.Int).SetString(a.Amount, 10)
		if !ok {
			return chain.UTxO{}, fmt.Errorf("utxo %s#%d: bad amount %q", u.TxHash, u.Index, a.Amount)
		}
		v = v.Merge(value.New(value.Unit(a.Unit), amount))
	}
	out := chain.UTxO{
		Ref:     chain.OutRef{TxHash: u.TxHash, OutputIndex: u.Index},
		Address: addr,
		Value:   v,
	}
	if u.Datum != nil {
		if u.Datum.Bytes != "" {
			out.Datum = u.Datum.Bytes
			if u.Datum.Hash != "" {
				m.datums.Add(u.Datum.Hash, u.Datum.Bytes)
			}
		} else {
			out.DatumHash = u.Datum.Hash
		}
	}
	return out, nil
}

// UTxOsByOutRefs resolves output references in one round trip. References
// already spent are absent from the result, per the ChainQuery contract.
func (m *Maestro) UTxOsByOutRefs(ctx context.Context, refs []chain.OutRef) ([]chain.UTxO, error) {
	body := make([]string, len(refs))
	for i, ref := range refs {
		body[i] = ref.String()
	}

	// ForceContentType: decode as JSON even when the indexer omits or
	// mislabels the response content type.
	var res outputsResponse
	resp, err := m.http.R().
		SetContext(ctx).
		SetQueryParam("resolve_datums", "true").
		SetBody(body).
		SetResult(&res).
		ForceContentType("application/json").
		Post("/v1/transactions/outputs")
	if err != nil {
		return nil, fmt.Errorf("resolve outputs: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("resolve outputs: status %s", resp.Status())
	}

	out := make([]chain.UTxO, 0, len(res.Data))
	for _, u := range res.Data {
		converted, err := m.toChainUTxO(u)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	m.log.WithFields(logrus.Fields{"requested": len(refs), "resolved": len(out)}).Debug("resolved outputs")
	return out, nil
}

// UTxOByUnit locates the unique UTxO holding the given asset. The asset
// index gives only the location; the full output is fetched through the
// outputs endpoint so datums resolve the same way everywhere.
func (m *Maestro) UTxOByUnit(ctx context.Context, unit value.Unit) (chain.UTxO, error) {
	var res assetUTxOsResponse
	resp, err := m.http.R().
		SetContext(ctx).
		SetResult(&res).
		ForceContentType("application/json").
		Get(fmt.Sprintf("/v1/assets/%s/utxos", unit))
	if err != nil {
		return chain.UTxO{}, fmt.Errorf("locate asset %s: %w", unit, err)
	}
	if resp.IsError() {
		return chain.UTxO{}, fmt.Errorf("locate asset %s: status %s", unit, resp.Status())
	}
	if len(res.Data) == 0 {
		return chain.UTxO{}, fmt.Errorf("asset %s not found on chain", unit)
	}

	ref := chain.OutRef{TxHash: res.Data[0].TxHash, OutputIndex: res.Data[0].Index}
	utxos, err := m.UTxOsByOutRefs(ctx, []chain.OutRef{ref})
	if err != nil {
		return chain.UTxO{}, err
	}
	if len(utxos) == 0 {
		return chain.UTxO{}, fmt.Errorf("asset %s: utxo %s vanished during lookup", unit, ref)
	}
	return utxos[0], nil
}

// DatumByHash resolves a datum hash to its hex preimage, serving repeats
// from the cache.
func (m *Maestro) DatumByHash(ctx context.Context, hash string) (string, error) {
	if bytes, ok := m.datums.Get(hash); ok {
		return bytes, nil
	}

	var res datumResponse
	resp, err := m.http.R().
		SetContext(ctx).
		SetResult(&res).
		ForceContentType("application/json").
		Get(fmt.Sprintf("/v1/datums/%s", hash))
	if err != nil {
		return "", fmt.Errorf("resolve datum %s: %w", hash, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("resolve datum %s: status %s", hash, resp.Status())
	}
	if res.Data.Bytes == "" {
		return "", fmt.Errorf("datum %s: empty preimage", hash)
	}
	m.datums.Add(hash, res.Data.Bytes)
	return res.Data.Bytes, nil
}
