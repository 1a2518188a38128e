package envvar

const (
	// ShadowsmithEnv is the environment variable used to determine the environment
	ShadowsmithEnv = "SHADOWSMITH_ENV"

	// ShadowsmithConfig is the environment variable used to locate the config file
	ShadowsmithConfig = "SHADOWSMITH_CONFIG"

	// ShadowsmithBlueprintsPath is the environment variable used to locate the blueprints directory
	ShadowsmithBlueprintsPath = "SHADOWSMITH_BLUEPRINTS_PATH"

	// ShadowsmithLogLevel is the environment variable used to set the log level
	ShadowsmithLogLevel = "SHADOWSMITH_LOG_LEVEL"
)
