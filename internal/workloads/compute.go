// Package workloads holds the CPU- and IO-bound units of work that the
// micro and concurrency suites time.
package workloads

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
)

// Fibonacci computes the nth Fibonacci number iteratively.
func Fibonacci(n int) int {
	if n < 2 {
		return n
	}
	a, b := 0, 1
	for i := 2; i <= n; i++ {
		a, b = b, a+b
	}
	return b
}

// FibonacciRecursive computes the nth Fibonacci number with naive recursion.
func FibonacciRecursive(n int) int {
	if n <= 1 {
		return n
	}
	return FibonacciRecursive(n-1) + FibonacciRecursive(n-2)
}

// PrimeSieve returns all primes below limit using the Sieve of Eratosthenes.
func PrimeSieve(limit int) []int {
	if limit < 2 {
		return nil
	}

	composite := make([]bool, limit)
	composite[0], composite[1] = true, true
	for n := 2; n*n < limit; n++ {
		if composite[n] {
			continue
		}
		for m := n * n; m < limit; m += n {
			composite[m] = true
		}
	}

	primes := make([]int, 0, limit/4)
	for i, c := range composite {
		if !c {
			primes = append(primes, i)
		}
	}
	return primes
}

type jsonPayload struct {
	Numbers []float64 `json:"numbers"`
	Nested  struct {
		A string `json:"a"`
		B []int  `json:"b"`
	} `json:"nested"`
	Flag bool `json:"flag"`
}

// JSONRoundTrip serializes and parses a randomly generated document of the
// given size and returns the length of the decoded nested list.
func JSONRoundTrip(size int) (int, error) {
	if size <= 0 {
		return 0, fmt.Errorf("payload size must be positive, got %d", size)
	}

	var in jsonPayload
	in.Numbers = make([]float64, size)
	for i := range in.Numbers {
		in.Numbers[i] = rand.Float64()
	}
	in.Nested.A = "value"
	in.Nested.B = make([]int, size)
	for i := range in.Nested.B {
		in.Nested.B[i] = i
	}
	in.Flag = true

	data, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("encoding payload: %w", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("decoding payload: %w", err)
	}
	nested, _ := out["nested"].(map[string]any)
	list, _ := nested["b"].([]any)
	return len(list), nil
}

// BubbleSort sorts size random integers with bubble sort and returns the minimum.
func BubbleSort(size int) (int, error) {
	if size <= 0 {
		return 0, fmt.Errorf("size must be positive, got %d", size)
	}

	values := make([]int, size)
	for i := range values {
		values[i] = rand.IntN(size + 1)
	}
	for i := range values {
		for j := 0; j < len(values)-i-1; j++ {
			if values[j] > values[j+1] {
				values[j], values[j+1] = values[j+1], values[j]
			}
		}
	}
	return values[0], nil
}

// ThreadedTrigonometry runs workers goroutines that each accumulate
// sin/cos products over iterations angles, and returns the scaled total.
func ThreadedTrigonometry(workers, iterations int) (int, error) {
	if workers <= 0 {
		return 0, fmt.Errorf("workers must be positive, got %d", workers)
	}
	if iterations <= 0 {
		return 0, fmt.Errorf("iterations must be positive, got %d", iterations)
	}

	results := make(chan float64, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			total := 0.0
			for i := 0; i < iterations; i++ {
				angle := float64(offset+i) * 0.0003
				total += math.Sin(angle) * math.Cos(angle*0.5)
			}
			results <- total
		}(w * iterations)
	}
	wg.Wait()
	close(results)

	aggregate := 0.0
	for r := range results {
		aggregate += r
	}
	return int(aggregate * 1_000_000), nil
}
