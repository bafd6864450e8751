package config

const (
	// DefaultReportPath is the well-known report location, relative to the working directory
	DefaultReportPath = "test_results.txt"
	// DefaultDriverReportPath is the report of a driver run. It differs from
	// the adapter's own report file, which the adapter rewrites per test.
	DefaultDriverReportPath = "tadapt_results.xml"
	// DefaultFormat is the default report format
	DefaultFormat = "xml"
	// DefaultConfigFile is read when present and no --config is given
	DefaultConfigFile = "tadapt.yaml"
	// DefaultEnvFile is the dotenv file loaded at start-up
	DefaultEnvFile = ".env"
	// DefaultLogLevel is the default diagnostics level
	DefaultLogLevel = "info"
	// DefaultVocabulary is the argument style spoken to external adapters
	DefaultVocabulary = "unittestpp"
	// DefaultHistoryLimit is the number of runs the history command shows
	DefaultHistoryLimit = 10
	// EnvPrefix prefixes every environment override
	EnvPrefix = "TADAPT_"
)
