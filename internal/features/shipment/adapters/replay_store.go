package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"shipment-status/internal/core/logger"
	"shipment-status/internal/features/shipment/domain"

	"go.uber.org/zap"
)

// ReplayStore serves recorded carrier payloads from a directory of
// <trackingNumber>.json files, substituting for live carrier calls during
// deterministic reprocessing.
type ReplayStore struct {
	dir    string
	logger *zap.Logger
}

// NewReplayStore creates a ReplayStore reading from dir.
func NewReplayStore(dir string) *ReplayStore {
	return &ReplayStore{
		dir:    dir,
		logger: logger.Named("replay"),
	}
}

// Fetch loads the recorded payload for trackingNumber. A missing recording is
// not an error: it yields an empty payload so enrichment degrades to an
// all-default record. Unreadable recordings degrade the same way, with a
// warning.
func (s *ReplayStore) Fetch(ctx context.Context, trackingNumber, carrierCode string) (domain.RawPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s.json", trackingNumber))

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.RawPayload{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read recorded payload %s: %w", path, err)
	}

	var payload domain.RawPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.logger.Warn("Discarding unparseable recorded payload",
			zap.String("path", path),
			zap.Error(err),
		)
		return domain.RawPayload{}, nil
	}

	return payload, nil
}

// Source implements ports.PayloadFetcher.
func (s *ReplayStore) Source() string {
	return "replay"
}
