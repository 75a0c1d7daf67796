package monitoring

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Agileeo/nft-client/internal/contract"
	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/gateway/gatewaytest"
	"github.com/Agileeo/nft-client/internal/infra/rpc/provider"
)

const (
	nftAddr   = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	ownerAddr = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

// contractNode answers eth_call by selector. Methods missing from answers revert.
func contractNode(t *testing.T, answers map[string][]any) *gatewaytest.Provider {
	t.Helper()
	encoded := make(map[string]string)
	for name, values := range answers {
		method := contract.NFTABI.Methods[name]
		packed, err := method.Outputs.Pack(values...)
		if err != nil {
			t.Fatalf("pack %s: %v", name, err)
		}
		encoded[hexutil.Encode(method.ID)] = hexutil.Encode(packed)
	}

	fake := gatewaytest.New(43113)
	fake.Handle("eth_call", func(ctx context.Context, params []any) (any, error) {
		data := params[0].(map[string]any)["data"].(string)
		if out, ok := encoded[data[:10]]; ok {
			return out, nil
		}
		return nil, &provider.RPCError{Code: 3, Message: "execution reverted"}
	})
	return fake
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]domain.ContractInfo
	puts    int
}

func (c *memoryCache) GetSnapshot(ctx context.Context, address string) (domain.ContractInfo, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.entries[address]
	return info, ok, nil
}

func (c *memoryCache) PutSnapshot(ctx context.Context, info domain.ContractInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]domain.ContractInfo)
	}
	c.entries[info.Address] = info
	c.puts++
	return nil
}

func fullAnswers() map[string][]any {
	return map[string][]any{
		"name":        {"Agile Collectibles"},
		"symbol":      {"AGL"},
		"totalSupply": {big.NewInt(12)},
		"owner":       {common.HexToAddress(ownerAddr)},
	}
}

func TestMonitor_Fetch(t *testing.T) {
	m := NewMonitor(contractNode(t, fullAnswers()), nftAddr, nil)

	info, err := m.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	want := domain.ContractInfo{
		Address:     nftAddr,
		Name:        "Agile Collectibles",
		Symbol:      "AGL",
		TotalSupply: "12",
		Owner:       ownerAddr,
	}
	if info != want {
		t.Errorf("expected %+v, got %+v", want, info)
	}
}

func TestMonitor_PartialFailure(t *testing.T) {
	answers := fullAnswers()
	delete(answers, "owner")
	delete(answers, "totalSupply")
	m := NewMonitor(contractNode(t, answers), nftAddr, nil)

	info, err := m.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if info.Name != "Agile Collectibles" || info.Symbol != "AGL" {
		t.Errorf("expected readable fields to survive, got %+v", info)
	}
	if info.TotalSupply != domain.Unavailable || info.Owner != domain.Unavailable {
		t.Errorf("expected failed fields to be unavailable, got %+v", info)
	}
	if info.Complete() {
		t.Error("expected incomplete snapshot")
	}
}

func TestMonitor_AllFieldsFail(t *testing.T) {
	fake := gatewaytest.New(43113)
	fake.Fail("eth_call", errors.New("connection refused"))
	m := NewMonitor(fake, nftAddr, nil)

	info, err := m.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	for field, v := range map[string]string{
		"name": info.Name, "symbol": info.Symbol, "total_supply": info.TotalSupply, "owner": info.Owner,
	} {
		if v != domain.Unavailable {
			t.Errorf("%s: expected unavailable, got %s", field, v)
		}
	}
}

func TestMonitor_NotConfigured(t *testing.T) {
	m := NewMonitor(gatewaytest.New(43113), "", nil)
	_, err := m.Fetch(context.Background())
	if !domain.IsKind(err, domain.ErrUnconfiguredChain) {
		t.Fatalf("expected unconfigured chain, got %v", err)
	}
	if err.Error() != "unconfigured_chain: Contract address is not configured" {
		t.Errorf("unexpected message: %s", err)
	}
}

func TestMonitor_NoProvider(t *testing.T) {
	m := NewMonitor(nil, nftAddr, nil)
	_, err := m.Fetch(context.Background())
	if !domain.IsKind(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected provider unavailable, got %v", err)
	}
}

func TestMonitor_CachesCompleteSnapshots(t *testing.T) {
	fake := contractNode(t, fullAnswers())
	cache := &memoryCache{}
	m := NewMonitor(fake, nftAddr, cache)

	if _, err := m.Fetch(context.Background()); err != nil {
		t.Fatalf("first Fetch failed: %v", err)
	}
	calls := fake.CallCount("eth_call")

	info, err := m.Fetch(context.Background())
	if err != nil {
		t.Fatalf("second Fetch failed: %v", err)
	}
	if fake.CallCount("eth_call") != calls {
		t.Error("expected second fetch to be served from cache")
	}
	if info.Name != "Agile Collectibles" {
		t.Errorf("unexpected cached snapshot: %+v", info)
	}
	if cache.puts != 1 {
		t.Errorf("expected one cache write, got %d", cache.puts)
	}
}

func TestMonitor_SkipsCachingPartialSnapshots(t *testing.T) {
	answers := fullAnswers()
	delete(answers, "name")
	cache := &memoryCache{}
	m := NewMonitor(contractNode(t, answers), nftAddr, cache)

	if _, err := m.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if cache.puts != 0 {
		t.Errorf("expected partial snapshot not to be cached, got %d writes", cache.puts)
	}
}
