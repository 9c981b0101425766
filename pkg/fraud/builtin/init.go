package builtin

import "github.com/Dooficoin/dooficoin-shield/pkg/fraud"

// RegisterDetectors registers all builtin detector factories with the
// fraud package. Call once at startup before loading configuration.
func RegisterDetectors() {
	fraud.RegisterDetectorType(BotCadenceDetectorType, func(config fraud.DetectorConfig) (fraud.Detector, error) {
		return NewBotCadenceDetector(config), nil
	})
	fraud.RegisterDetectorType(SelfEliminationDetectorType, func(config fraud.DetectorConfig) (fraud.Detector, error) {
		return NewSelfEliminationDetector(config), nil
	})
	fraud.RegisterDetectorType(CoinGainDetectorType, func(config fraud.DetectorConfig) (fraud.Detector, error) {
		return NewCoinGainDetector(config), nil
	})
	fraud.RegisterDetectorType(RapidPurchasesDetectorType, func(config fraud.DetectorConfig) (fraud.Detector, error) {
		return NewRapidPurchasesDetector(config), nil
	})
}
