package ads

// Engine tunables. Values are seconds unless noted.
const (
	OneHourInSeconds      = 3600
	DebugOneHourInSeconds = 600

	SustainAdInteractionAfterSeconds = 10
	IdleThresholdInSeconds           = 15
	NextEasterEggStartsInSeconds     = 30

	DefaultLanguage = "en"
	UnknownSSID     = "unknown"

	BundleSchemaName = "bundle-schema.json"
)

// easterEggURL triggers a forced serve in testing builds.
const easterEggURL = "https://www.iab.com/"
