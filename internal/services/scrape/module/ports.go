package module

import "starwatch/internal/services/scrape/domain"

// Ports exposes the scrape module surfaces
type Ports struct {
	Scraper domain.ScraperPort
	Storage domain.StoragePort
	Runner  domain.RunnerPort
}
