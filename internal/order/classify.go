package order

import (
	"log/slog"
	"strings"
)

// Classifier decides whether a message body is an order notification by
// counting marker substrings. Kept separate from extraction so the
// threshold can be tuned and tested independently.
type Classifier struct {
	markers   []string
	threshold int
}

// NewClassifier returns a classifier with the built-in marker set.
func NewClassifier() *Classifier {
	return &Classifier{
		markers:   defaultClassifierMarkers,
		threshold: defaultThreshold,
	}
}

// NewClassifierFromFile loads a marker override from a YAML file. On any
// load error the default classifier is returned and the error logged:
// a bad tuning file must not keep the pipeline from starting.
func NewClassifierFromFile(path string, logger *slog.Logger) *Classifier {
	markers, threshold, err := LoadMarkers(path)
	if err != nil {
		logger.Warn("cannot load markers file, using defaults", "path", path, "err", err)
		return NewClassifier()
	}
	logger.Info("classifier markers loaded", "path", path, "markers", len(markers), "threshold", threshold)
	return &Classifier{markers: markers, threshold: threshold}
}

// IsOrder reports whether content contains at least threshold markers.
// Empty content is never an order.
func (c *Classifier) IsOrder(content string) bool {
	if content == "" {
		return false
	}
	matches := 0
	for _, m := range c.markers {
		if strings.Contains(content, m) {
			matches++
			if matches >= c.threshold {
				return true
			}
		}
	}
	return false
}

// IsOrder classifies content with the default marker set.
func IsOrder(content string) bool {
	return NewClassifier().IsOrder(content)
}
