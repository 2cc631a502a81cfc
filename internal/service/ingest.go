package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jpdataXOR/hrdesk/internal/domain"
	"github.com/jpdataXOR/hrdesk/internal/ingest"
	"github.com/jpdataXOR/hrdesk/internal/policy"
)

// Upload is one file handed over by the upload widget.
type Upload struct {
	Filename  string
	MediaType string
	Data      []byte
}

// IngestBatch stages the uploads (PDF text extraction, pass-through for the
// rest), uploads them to the gateway and submits one vector index batch.
// Per-file failures are recorded and do not stop the remaining files;
// already-uploaded files are not rolled back. Every staged temporary file is
// released on every exit path.
func (s *Service) IngestBatch(ctx context.Context, customerID string, uploads []Upload) (*domain.BatchSummary, error) {
	customer, ok := s.config.Customer(customerID)
	if !ok {
		return nil, &domain.ValidationError{Field: "customer_id", Reason: "unknown customer", NotFound: true}
	}
	if customer.IndexID == "" {
		return nil, &domain.ValidationError{Field: "customer_id", Reason: "customer has no vector index"}
	}
	if len(uploads) == 0 {
		return nil, &domain.ValidationError{Field: "files", Reason: "at least one file required"}
	}

	summary := &domain.BatchSummary{PerFileErrors: make(map[string]string)}

	var staged []*ingest.Staged
	defer func() {
		for _, st := range staged {
			st.Release()
		}
	}()

	for _, upload := range uploads {
		mediaType := ingest.MediaType(upload.Filename, upload.MediaType)

		decision, err := s.policyEngine.Evaluate(ctx, toPolicyInput(customerID, upload, mediaType))
		if err != nil {
			log.Printf("ERROR: policy evaluation failed for %s: %v", upload.Filename, err)
			summary.PerFileErrors[upload.Filename] = "policy evaluation failed"
			continue
		}
		if decision != "allow" {
			summary.PerFileErrors[upload.Filename] = fmt.Sprintf("blocked by ingestion policy (%s, %d bytes)", mediaType, len(upload.Data))
			continue
		}

		st, err := ingest.Stage(upload.Filename, mediaType, upload.Data)
		if err != nil {
			ingErr := &domain.IngestionError{Filename: upload.Filename, Err: err}
			log.Printf("WARN: %v", ingErr)
			summary.PerFileErrors[upload.Filename] = ingErr.Error()
			continue
		}
		staged = append(staged, st)
	}

	for _, st := range staged {
		data, err := st.Bytes()
		if err != nil {
			summary.PerFileErrors[st.Filename] = (&domain.IngestionError{Filename: st.Filename, Err: err}).Error()
			continue
		}
		ref, err := s.gateway.UploadFile(ctx, st.Filename, data)
		if err != nil {
			ingErr := &domain.IngestionError{Filename: st.Filename, Err: err}
			log.Printf("WARN: %v", ingErr)
			summary.PerFileErrors[st.Filename] = ingErr.Error()
			continue
		}
		summary.UploadedIDs = append(summary.UploadedIDs, ref.ID)
	}

	if len(summary.UploadedIDs) == 0 {
		summary.Status = "failed"
		summary.FileCounts = domain.FileCounts{Failed: len(uploads), Total: len(uploads)}
		return summary, nil
	}

	batchID, err := s.gateway.SubmitIndexBatch(ctx, customer.IndexID, summary.UploadedIDs)
	if err != nil {
		summary.Status = "failed"
		return summary, err
	}

	status, counts, err := s.pollIndexBatch(ctx, customer.IndexID, batchID)
	if err != nil {
		summary.Status = "unknown"
		return summary, err
	}

	summary.Status = status
	summary.FileCounts = counts
	// Files rejected before upload are part of the batch from the user's
	// point of view, not the vendor's; fold them into the totals.
	summary.FileCounts.Failed += len(summary.PerFileErrors)
	summary.FileCounts.Total += len(summary.PerFileErrors)

	log.Printf("INFO: ingestion batch %s for index %s: %s (%d/%d completed)",
		batchID, customer.IndexID, status, counts.Completed, summary.FileCounts.Total)
	return summary, nil
}

// pollIndexBatch waits for the vector index batch with the same bounded-poll
// discipline as runs.
func (s *Service) pollIndexBatch(ctx context.Context, indexID, batchID string) (string, domain.FileCounts, error) {
	deadline := time.Now().Add(s.config.BatchTimeout)

	for {
		status, counts, err := s.gateway.PollIndexBatch(ctx, indexID, batchID)
		if err != nil {
			return "", domain.FileCounts{}, err
		}

		switch status {
		case "completed", "failed", "cancelled":
			return status, counts, nil
		}

		if time.Now().After(deadline) {
			return "", domain.FileCounts{}, fmt.Errorf("index batch %s: %w", batchID, domain.ErrRunTimeout)
		}

		select {
		case <-ctx.Done():
			return "", domain.FileCounts{}, ctx.Err()
		case <-time.After(s.config.RunPollInterval):
		}
	}
}

func toPolicyInput(customerID string, upload Upload, mediaType string) policy.UploadInput {
	return policy.UploadInput{
		Filename:   upload.Filename,
		MediaType:  mediaType,
		SizeBytes:  int64(len(upload.Data)),
		CustomerID: customerID,
	}
}
