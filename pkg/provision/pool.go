package provision

import (
	"context"
	"sync"

	"github.com/privacyops/dsarflow/pkg/dsar"
	"golang.org/x/sync/semaphore"
)

// Result pairs a case request with its provisioning outcome.
type Result struct {
	Request  dsar.CaseRequest
	Artifact Artifact
	Err      error
}

// Pool runs provisioning across case requests with bounded concurrency.
// Different cases touch different folders and documents, so they are
// independent; one failure never stops the others.
type Pool struct {
	provisioner *Provisioner
	workers     int
}

func NewPool(p *Provisioner, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{provisioner: p, workers: workers}
}

// ProvisionAll provisions every request and returns results in request
// order. Cancellation is honored between requests only: a request that
// has started runs to completion or explicit failure, never abandoned
// half-provisioned.
func (p *Pool) ProvisionAll(ctx context.Context, reqs []dsar.CaseRequest) []Result {
	results := make([]Result, len(reqs))
	sem := semaphore.NewWeighted(int64(p.workers))
	var wg sync.WaitGroup

	// Store calls inside a started request must not be torn down by the
	// run's cancellation.
	detached := context.WithoutCancel(ctx)

	for i, req := range reqs {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = Result{Request: req, Err: err}
			continue
		}

		wg.Add(1)
		go func(i int, req dsar.CaseRequest) {
			defer wg.Done()
			defer sem.Release(1)

			artifact, err := p.provisioner.Provision(detached, req)
			results[i] = Result{Request: req, Artifact: artifact, Err: err}
		}(i, req)
	}

	wg.Wait()
	return results
}
