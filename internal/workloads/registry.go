package workloads

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Func is a workload entry point. The argument arrives either as the Go value
// the caller supplied or, in isolated execution contexts, as the result of
// decoding its JSON encoding; use DecodeArg to accept both.
type Func func(arg any) error

// Registry maps function identifiers to workload functions so that isolated
// execution contexts can invoke a workload by name.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register adds fn under name. Names must be unique.
func (r *Registry) Register(name string, fn Func) error {
	if name == "" {
		return fmt.Errorf("workload function name is required")
	}
	if fn == nil {
		return fmt.Errorf("workload function %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("workload function %q already registered", name)
	}
	r.funcs[name] = fn
	return nil
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names lists registered identifiers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DecodeArg converts a workload argument into T. JSON numbers decode as
// float64, so integer parameters are converted here.
func DecodeArg[T any](arg any) (T, error) {
	var v T
	if err := mapstructure.Decode(arg, &v); err != nil {
		return v, fmt.Errorf("decoding workload argument %v: %w", arg, err)
	}
	return v, nil
}

// Function identifiers registered in Default.
const (
	FuncFibonacci     = "fibonacci"
	FuncSleep         = "sleep"
	FuncPrimeSieve    = "prime_sieve"
	FuncBubbleSort    = "bubble_sort"
	FuncJSONRoundTrip = "json_roundtrip"
)

// Default holds the built-in workload functions.
var Default = newDefaultRegistry()

var sink atomic.Int64

func consume(v int) {
	sink.Store(int64(v))
}

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	mustRegister(r, FuncFibonacci, func(arg any) error {
		n, err := DecodeArg[int](arg)
		if err != nil {
			return err
		}
		consume(Fibonacci(n))
		return nil
	})
	mustRegister(r, FuncSleep, func(arg any) error {
		seconds, err := DecodeArg[float64](arg)
		if err != nil {
			return err
		}
		time.Sleep(time.Duration(seconds * float64(time.Second)))
		return nil
	})
	mustRegister(r, FuncPrimeSieve, func(arg any) error {
		limit, err := DecodeArg[int](arg)
		if err != nil {
			return err
		}
		consume(len(PrimeSieve(limit)))
		return nil
	})
	mustRegister(r, FuncBubbleSort, func(arg any) error {
		size, err := DecodeArg[int](arg)
		if err != nil {
			return err
		}
		v, err := BubbleSort(size)
		consume(v)
		return err
	})
	mustRegister(r, FuncJSONRoundTrip, func(arg any) error {
		size, err := DecodeArg[int](arg)
		if err != nil {
			return err
		}
		v, err := JSONRoundTrip(size)
		consume(v)
		return err
	})
	return r
}

func mustRegister(r *Registry, name string, fn Func) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}
