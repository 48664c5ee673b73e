package worker

import (
	"fmt"
	"os"

	"feedhook/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

// seedFile is the YAML shape of an initial feed list:
//
//	feeds:
//	  - name: Example Status
//	    url: https://status.example.com/history.atom
//	    hookUrl: https://discord.com/api/webhooks/123/token
//	    imageUrl: https://example.com/icon.png
type seedFile struct {
	Feeds []seedFeed `yaml:"feeds"`
}

type seedFeed struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	HookURL  string `yaml:"hookUrl"`
	ImageURL string `yaml:"imageUrl"`
}

// LoadSeedFile reads and validates an initial feed list from a YAML file.
// Seeded feeds carry no watermark; they are baselined on their first poll.
func LoadSeedFile(path string) ([]*entity.Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	feeds := make([]*entity.Feed, 0, len(seed.Feeds))
	for i, sf := range seed.Feeds {
		feed := &entity.Feed{
			Name:       sf.Name,
			SourceURL:  sf.URL,
			WebhookURL: sf.HookURL,
			ImageURL:   sf.ImageURL,
		}
		if err := feed.Validate(); err != nil {
			return nil, fmt.Errorf("seed feed %d: %w", i, err)
		}
		feeds = append(feeds, feed)
	}

	return feeds, nil
}
