package service

import (
	"context"
	"sync"
	"time"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
)

// Batch runs independent requests concurrently with a bounded worker pool.
// Results keep the input order; one failure does not affect the others.
func (s *Service) Batch(ctx context.Context, reqs []domain.RecommendationRequest) *domain.BatchResponse {
	start := time.Now()

	results := make([]domain.BatchItemResult, len(reqs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.batchConcurrency) // semaphore

	for i, req := range reqs {
		wg.Add(1)
		go func(idx int, req domain.RecommendationRequest) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			results[idx] = s.processBatchItem(ctx, idx, req)
		}(i, req)
	}
	wg.Wait()

	// summary
	successCount := 0
	failedCount := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successCount++
		} else {
			failedCount++
		}
	}

	return &domain.BatchResponse{
		Results: results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			FailedCount:      failedCount,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
		Metadata: domain.BatchMeta{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func (s *Service) processBatchItem(ctx context.Context, idx int, req domain.RecommendationRequest) domain.BatchItemResult {
	result, err := s.Recommend(ctx, req)
	if err != nil {
		s.logger.Warn().Err(err).Int("index", idx).Msg("batch item failed")
		code, msg := CategorizeError(err)
		return domain.BatchItemResult{
			Index:   idx,
			Status:  domain.StatusFailed,
			Error:   code,
			Message: msg,
		}
	}
	return domain.BatchItemResult{
		Index:    idx,
		Status:   domain.StatusSuccess,
		Response: result.Response,
	}
}
