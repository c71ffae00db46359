// Package service fronts campaign analytics reads
package service

import (
	"context"

	perr "starwatch/internal/platform/errors"
	"starwatch/internal/platform/logger"
	"starwatch/internal/services/campaign/domain"
)

// Service validates and delegates campaign reads
type Service struct {
	reader domain.ReaderPort
	log    logger.Logger
}

// New builds the campaign service
func New(reader domain.ReaderPort) *Service {
	return &Service{reader: reader, log: *logger.Named("campaign")}
}

var _ domain.ReaderPort = (*Service)(nil)

// ViewsByHour returns today's hourly view deltas for one campaign
func (s *Service) ViewsByHour(ctx context.Context, campaignID int32) (domain.ViewsByHour, error) {
	if campaignID < 0 {
		return nil, perr.InvalidArgf("campaign id must be non-negative, got %d", campaignID)
	}
	if s.reader == nil {
		return nil, perr.NotInitializedf("campaign reader not configured")
	}
	views, err := s.reader.ViewsByHour(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int32("campaign_id", campaignID).Int("phrases", len(views)).Msg("campaign views read")
	return views, nil
}
