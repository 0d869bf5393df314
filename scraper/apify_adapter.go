package scraper

import (
	"encoding/json"
	"fmt"

	"leadpipe/config"
	"leadpipe/models"
)

// ApifyAdapter holds the actor-specific pieces: which actor to run, what
// input it takes, and how its dataset items map to listings.
type ApifyAdapter interface {
	ActorID() string
	BuildInput(cfg *config.SourceConfig) map[string]interface{}
	ParseListing(data json.RawMessage) (*models.LegacyListing, error)
}

func GetApifyAdapter(actorType string) (ApifyAdapter, error) {
	switch actorType {
	case "", "foreclosure", "epctex/foreclosure-scraper":
		return &ForeclosureAdapter{}, nil
	default:
		return nil, fmt.Errorf("unknown apify actor type: %s", actorType)
	}
}
