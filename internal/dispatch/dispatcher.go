// Package dispatch fans generation requests out across every configured
// model and rendered prompt, collecting one result per (model, prompt)
// pair into a shared, lock-protected slice.
package dispatch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tinyfabulist/tinyfabulist/internal/ctxlog"
	"github.com/tinyfabulist/tinyfabulist/internal/llm"
)

// FableRecord is one generation result. Records are append-only: written
// once into the shared collection and never mutated afterwards.
type FableRecord struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Fable  string `json:"fable"`
	Hash   string `json:"hash"`

	// Err tags sentinel results in-process so callers can tell a failed
	// generation from a real fable without inspecting the text. It is
	// never serialized; the wire format carries the sentinel fable body.
	Err error `json:"-"`
}

// Failed reports whether the record holds an error sentinel instead of a
// generated fable.
func (r FableRecord) Failed() bool { return r.Err != nil }

// Target is one generation endpoint participating in a run. Name is the
// display name recorded on results; Key is the registry key it was
// selected by.
type Target struct {
	Key    string
	Name   string
	Client llm.Client
}

// Options tune a dispatch run.
type Options struct {
	// Concurrency caps in-flight units. Zero launches every
	// (model, prompt) unit eagerly with no ceiling.
	Concurrency int

	// RequestTimeout bounds each unit's request. Zero disables it.
	RequestTimeout time.Duration

	// ExistingHashes, when non-nil, enables skip-existing mode: units
	// whose (model, prompt) hash is present are skipped without calling
	// the endpoint and contribute no record. Hashes accepted during the
	// run are added, so in-run duplicates are skipped too.
	ExistingHashes map[string]struct{}
}

// ComputeHash returns the content hash identifying a (model, prompt) pair.
func ComputeHash(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + prompt))
	return hex.EncodeToString(sum[:])
}

// Run launches one unit of work per (target, prompt) pair, blocks until
// every unit has finished, and returns the collected records. A failing
// unit is logged and degraded to an error-sentinel record; it never
// terminates sibling units or the join. Record order is not meaningful.
func Run(ctx context.Context, targets []Target, systemPrompt string, prompts []string, opts Options) []FableRecord {
	logger := ctxlog.FromContext(ctx)

	sorted := make([]Target, len(targets))
	copy(sorted, targets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	var (
		mu      sync.Mutex
		results []FableRecord
		wg      sync.WaitGroup
	)

	// Nil when unbounded; otherwise a counting semaphore.
	var sem chan struct{}
	if opts.Concurrency > 0 {
		sem = make(chan struct{}, opts.Concurrency)
	}

	for _, target := range sorted {
		logger.Info("generating fables", "model", target.Name)
		for _, prompt := range prompts {
			hash := ComputeHash(target.Name, prompt)
			if opts.ExistingHashes != nil {
				mu.Lock()
				_, dup := opts.ExistingHashes[hash]
				if !dup {
					opts.ExistingHashes[hash] = struct{}{}
				}
				mu.Unlock()
				if dup {
					logger.Info("skipping duplicate fable", "hash", hash)
					continue
				}
			}

			wg.Add(1)
			go func(target Target, prompt, hash string) {
				defer wg.Done()
				if sem != nil {
					sem <- struct{}{}
					defer func() { <-sem }()
				}

				record := generateOne(ctx, target, systemPrompt, prompt, hash, opts.RequestTimeout)

				mu.Lock()
				results = append(results, record)
				mu.Unlock()
			}(target, prompt, hash)
		}
	}

	wg.Wait()
	return results
}

// generateOne runs a single unit of work. Transport and API failures are
// contained here: they become a sentinel record, never a panic or an
// early return for the batch.
func generateOne(ctx context.Context, target Target, systemPrompt, prompt, hash string, timeout time.Duration) FableRecord {
	logger := ctxlog.FromContext(ctx)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fable, err := target.Client.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		logger.Error("generation failed",
			"model", target.Name,
			"prompt", truncate(prompt, 50),
			"error", err)
		fable = fmt.Sprintf("Error generating fable: %v", err)
	} else {
		logger.Info("generated fable",
			"model", target.Name,
			"prompt", truncate(prompt, 50))
	}

	return FableRecord{
		Model:  target.Name,
		Prompt: prompt,
		Fable:  fable,
		Hash:   hash,
		Err:    err,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
