package config

const (
	defaultStateDir       = "~/.local/share/chronicle/state"
	defaultOutputDir      = "~/.local/share/chronicle/output"
	defaultLogDir         = "~/.local/share/chronicle/logs"
	defaultChannelName    = "Caffeine Chronicles"
	defaultShopInterval   = 7
	defaultVideoWidth     = 1080
	defaultVideoHeight    = 1920
	defaultFPS            = 30
	defaultDuration       = 35
	defaultTextAnimate    = 2.0
	defaultCategoryID     = "22" // People & Blogs
	defaultPrivacy        = "public"
	defaultTitlePrefix    = "Coffee Fact"
	defaultTokenFile      = "~/.config/chronicle/youtube_token.json"
	defaultNotifyTimeout  = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultDescriptionTpl = "{fact}\n\n" +
		"Follow @CaffeineChronicles for your daily dose of coffee knowledge!\n\n" +
		"#shorts #coffee #caffeine #didyouknow #facts #coffeelovers"
)

func defaultTags() []string {
	return []string{
		"coffee", "caffeine", "didyouknow", "facts", "shorts",
		"coffeefacts", "caffeinefacts", "coffeelovers",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:  defaultStateDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Content: Content{
			ChannelName:  defaultChannelName,
			ShopInterval: defaultShopInterval,
		},
		Video: Video{
			Width:              defaultVideoWidth,
			Height:             defaultVideoHeight,
			FPS:                defaultFPS,
			DurationSeconds:    defaultDuration,
			TextAnimateSeconds: defaultTextAnimate,
		},
		YouTube: YouTube{
			Tags:                defaultTags(),
			CategoryID:          defaultCategoryID,
			Privacy:             defaultPrivacy,
			TitlePrefix:         defaultTitlePrefix,
			DescriptionTemplate: defaultDescriptionTpl,
			TokenFile:           defaultTokenFile,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Selection:      true,
			Render:         true,
			Publish:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
