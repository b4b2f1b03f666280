package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ascot-inc/intake-hub/pkg/jsonutil"
	"github.com/ascot-inc/intake-hub/pkg/logging"
	"github.com/ascot-inc/intake-hub/pkg/metrics"
	"github.com/ascot-inc/intake-hub/pkg/models"
	"github.com/ascot-inc/intake-hub/pkg/providers"
	"github.com/ascot-inc/intake-hub/pkg/repositories"
	"github.com/ascot-inc/intake-hub/pkg/retry"
)

// IntakeService drives the fetch/store/normalize pipeline across providers.
type IntakeService interface {
	// IntakeRacecards fetches racecards for a date and runs every document
	// through the pipeline. With providerName set only that provider runs;
	// otherwise all enabled providers run concurrently in priority order.
	// The returned status lines report per-provider progress and per-item
	// outcomes; one provider failing never suppresses another's results.
	IntakeRacecards(ctx context.Context, date time.Time, providerName string) []string
}

type intakeService struct {
	registry   *providers.Registry
	rawRepo    repositories.RawRecordRepository
	normalizer NormalizationService
	retryCfg   *retry.Config
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewIntakeService creates an intake service. Pass nil retryCfg for defaults.
func NewIntakeService(
	registry *providers.Registry,
	rawRepo repositories.RawRecordRepository,
	normalizer NormalizationService,
	retryCfg *retry.Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) IntakeService {
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	return &intakeService{
		registry:   registry,
		rawRepo:    rawRepo,
		normalizer: normalizer,
		retryCfg:   retryCfg,
		metrics:    m,
		logger:     logger,
	}
}

func (s *intakeService) IntakeRacecards(ctx context.Context, date time.Time, providerName string) []string {
	adapters, err := s.selectAdapters(ctx, providerName)
	if err != nil {
		s.logger.Error("Failed to select providers for intake", zap.Error(err))
		return []string{fmt.Sprintf("Error selecting providers: %s", logging.SanitizeError(err))}
	}
	if len(adapters) == 0 {
		return []string{}
	}

	// Providers run concurrently but each keeps its slot, so output stays
	// grouped by provider in priority order.
	results := make([][]string, len(adapters))
	var wg sync.WaitGroup
	for i, adapter := range adapters {
		wg.Add(1)
		go func(i int, adapter providers.Adapter) {
			defer wg.Done()
			results[i] = s.runProvider(ctx, adapter, date)
		}(i, adapter)
	}
	wg.Wait()

	var lines []string
	for _, r := range results {
		lines = append(lines, r...)
	}
	if lines == nil {
		lines = []string{}
	}
	return lines
}

func (s *intakeService) selectAdapters(ctx context.Context, providerName string) ([]providers.Adapter, error) {
	if providerName != "" {
		if a, ok := s.registry.GetByName(providerName); ok {
			return []providers.Adapter{a}, nil
		}
		// Unknown provider name yields an empty run, not an error.
		return nil, nil
	}
	return s.registry.GetPrioritized(ctx)
}

func (s *intakeService) runProvider(ctx context.Context, adapter providers.Adapter, date time.Time) []string {
	name := adapter.Name()
	lines := []string{fmt.Sprintf("Starting intake for %s", name)}

	s.logger.Info("Starting intake", zap.String("provider", name), zap.String("date", date.Format("2006-01-02")))

	var docs []providers.Document
	err := retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		var fetchErr error
		docs, fetchErr = adapter.FetchRacecards(ctx, date)
		return fetchErr
	})
	if err != nil {
		s.metrics.IntakeErrorsTotal.WithLabelValues(name).Inc()
		s.logger.Warn("Provider intake failed",
			zap.String("provider", name),
			zap.String("error", logging.SanitizeError(err)),
		)
		return append(lines, fmt.Sprintf("Error with %s: %s", name, logging.SanitizeError(err)))
	}

	providerID := models.DeriveProviderID(name)
	for _, doc := range docs {
		line, outcome := s.processDocument(ctx, providerID, name, doc)
		s.metrics.IntakeItemsTotal.WithLabelValues(name, outcome).Inc()
		lines = append(lines, line)
	}

	s.logger.Info("Finished intake",
		zap.String("provider", name),
		zap.Int("documents", len(docs)),
	)
	return lines
}

// processDocument runs one document through serialize/checksum/store/normalize.
// A failing document reports its own error line without aborting siblings.
func (s *intakeService) processDocument(ctx context.Context, providerID uuid.UUID, name string, doc providers.Document) (string, string) {
	payload, err := json.Marshal(doc)
	if err != nil {
		s.logger.Warn("Failed to serialize document", zap.String("provider", name), zap.Error(err))
		return fmt.Sprintf("Error with %s: unserializable document", name), metrics.OutcomeError
	}

	sum := sha256.Sum256(payload)
	checksum := hex.EncodeToString(sum[:])

	raw := &models.RawRecord{
		ProviderID: providerID,
		DataType:   models.DataTypeRacecard,
		ExternalID: extractExternalID(doc),
		RawPayload: string(payload),
		Checksum:   checksum,
	}

	if err := s.rawRepo.Insert(ctx, raw); err != nil {
		s.logger.Warn("Failed to store raw record",
			zap.String("provider", name),
			zap.String("checksum", checksum),
			zap.Error(err),
		)
		return fmt.Sprintf("Error with %s: failed to store item", name), metrics.OutcomeError
	}

	res, err := s.normalizer.NormalizeAndSave(ctx, raw)
	if err != nil {
		s.logger.Warn("Failed to normalize record",
			zap.String("provider", name),
			zap.String("checksum", checksum),
			zap.Error(err),
		)
		return fmt.Sprintf("Error with %s: failed to normalize item", name), metrics.OutcomeError
	}

	if res.Outcome == NormalizeSkipped {
		return fmt.Sprintf("Skipped duplicate %s item %s", name, raw.ExternalID), metrics.OutcomeSkipped
	}
	return fmt.Sprintf("Processed %s item", name), metrics.OutcomeStored
}

// extractExternalID pulls a business identifier out of a document, trying the
// common key spellings across providers. Empty means no id was found.
func extractExternalID(doc providers.Document) string {
	for _, key := range []string{"id", "market_id", "marketId"} {
		if v, ok := doc[key]; ok {
			if s := jsonutil.FlexibleStringValue(v); s != "" {
				return s
			}
		}
	}
	return ""
}
