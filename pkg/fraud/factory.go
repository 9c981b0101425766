package fraud

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// DetectorFactory is a function that creates a detector from a configuration.
type DetectorFactory func(config DetectorConfig) (Detector, error)

// factories stores registered detector factories by type.
var factories = make(map[string]DetectorFactory)

// RegisterDetectorType registers a factory function for a detector type.
// This allows external packages to register their detector types without
// creating import cycles.
func RegisterDetectorType(detectorType string, factory DetectorFactory) {
	factories[detectorType] = factory
	logrus.Debugf("registered detector type: %s", detectorType)
}

// CreateDetector creates a detector instance based on the configuration.
// Returns an error if the detector type is unknown; returns nil for a
// disabled detector.
func CreateDetector(config DetectorConfig) (Detector, error) {
	if !config.Enabled {
		logrus.Infof("skipping disabled detector: %s", config.ID)
		return nil, nil
	}

	logrus.Infof("creating detector: id=%s, type=%s", config.ID, config.Type)

	factory, exists := factories[config.Type]
	if !exists {
		return nil, fmt.Errorf("unknown detector type: %s", config.Type)
	}

	return factory(config)
}

// RegisterDetectors creates detectors from the configurations and adds
// them to the registry.
func RegisterDetectors(registry *Registry, configs []DetectorConfig) error {
	for _, config := range configs {
		d, err := CreateDetector(config)
		if err != nil {
			return fmt.Errorf("failed to create detector %s: %w", config.ID, err)
		}
		if d == nil {
			continue
		}

		if err := registry.Register(d); err != nil {
			return fmt.Errorf("failed to register detector %s: %w", config.ID, err)
		}
	}

	logrus.Infof("registered %d detectors", registry.Count())
	return nil
}
