// Package gatewaytest provides an in-memory gateway.Provider for tests.
package gatewaytest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/gateway"
)

// Call records a request sent through the fake.
type Call struct {
	Method string
	Params []any
}

// MethodFunc answers a single method.
type MethodFunc func(ctx context.Context, params []any) (any, error)

// Provider is a scriptable gateway.Provider. Methods without a handler fail.
// eth_chainId answers from Chain unless overridden.
type Provider struct {
	mu       sync.Mutex
	chain    domain.ChainID
	methods  map[string]MethodFunc
	calls    []Call
	handlers map[string]map[int]gateway.Handler
	nextID   int
}

func New(chainID domain.ChainID) *Provider {
	return &Provider{
		chain:    chainID,
		methods:  make(map[string]MethodFunc),
		handlers: make(map[string]map[int]gateway.Handler),
	}
}

// Handle installs fn as the answer for method.
func (p *Provider) Handle(method string, fn MethodFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.methods[method] = fn
}

// Return makes method answer with a fixed result.
func (p *Provider) Return(method string, result any) {
	p.Handle(method, func(context.Context, []any) (any, error) { return result, nil })
}

// Fail makes method answer with err.
func (p *Provider) Fail(method string, err error) {
	p.Handle(method, func(context.Context, []any) (any, error) { return nil, err })
}

func (p *Provider) SetChain(id domain.ChainID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chain = id
}

func (p *Provider) Name() string {
	return "fake"
}

func (p *Provider) ChainID(ctx context.Context) (domain.ChainID, error) {
	result, err := p.Send(ctx, "eth_chainId", nil)
	if err != nil {
		return 0, err
	}
	return gateway.ParseChainID(result)
}

func (p *Provider) Send(ctx context.Context, method string, params []any) (any, error) {
	p.mu.Lock()
	p.calls = append(p.calls, Call{Method: method, Params: params})
	fn, ok := p.methods[method]
	chain := p.chain
	p.mu.Unlock()

	if ok {
		return fn(ctx, params)
	}
	if method == "eth_chainId" {
		return gateway.HexChainID(chain), nil
	}
	return nil, fmt.Errorf("gatewaytest: no handler for %s", method)
}

func (p *Provider) Subscribe(event string, h gateway.Handler) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	id := p.nextID
	if p.handlers[event] == nil {
		p.handlers[event] = make(map[int]gateway.Handler)
	}
	p.handlers[event][id] = h

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.handlers[event], id)
	}
}

// Emit delivers payload to every handler of event, in registration order.
func (p *Provider) Emit(event string, payload any) {
	p.mu.Lock()
	ids := make([]int, 0, len(p.handlers[event]))
	for id := range p.handlers[event] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	hs := make([]gateway.Handler, 0, len(ids))
	for _, id := range ids {
		hs = append(hs, p.handlers[event][id])
	}
	p.mu.Unlock()

	for _, h := range hs {
		h(payload)
	}
}

// ListenerCount returns the number of handlers registered for event.
func (p *Provider) ListenerCount(event string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handlers[event])
}

// Calls returns a copy of the recorded requests.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// CallCount returns how many times method was sent.
func (p *Provider) CallCount(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}
