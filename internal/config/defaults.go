package config

const (
	defaultFilesDir              = "~/papercraft/files"
	defaultDataDir               = "~/.local/share/craftpress/data"
	defaultLogDir                = "~/.local/share/craftpress/logs"
	defaultImagesDir             = "~/.local/share/craftpress/images"
	defaultStateBackend          = "json"
	defaultOpenAIBaseURL         = "https://api.openai.com/v1"
	defaultOpenAIModel           = "gpt-4o-mini"
	defaultOpenAIImageModel      = "dall-e-3"
	defaultOpenAIImageSize       = "1024x1024"
	defaultOpenAITimeoutSeconds  = 60
	defaultMediaFireBaseURL      = "https://www.mediafire.com/api/1.5"
	defaultMediaFireAppID        = "42511"
	defaultMediaFireTimeout      = 120
	defaultWordPressTimeout      = 30
	defaultMaxRetries            = 3
	defaultRetryBaseDelaySeconds = 1
	defaultRetryMaxDelaySeconds  = 30
	defaultAssetDelaySeconds     = 2
	defaultBatchSize             = 5
	defaultBatchDelaySeconds     = 10
	defaultMinNameLength         = 3
	defaultDefaultCategoryID     = 3
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

func defaultAcceptedExtensions() []string {
	return []string{".zip", ".pdf"}
}

func defaultDenyList() []string {
	return []string{"untitled", "new", "file", "document", "temp", "test"}
}

func defaultCategories() []Category {
	return []Category{
		{ID: 1, Name: "CubeCraft", Keywords: []string{"cube", "minecraft", "block"}},
		{ID: 2, Name: "Design Templates", Keywords: []string{"design", "template", "pattern"}},
		{ID: 3, Name: "Paper Toys", Keywords: []string{"toy", "plaything"}},
		{ID: 4, Name: "Animals", Keywords: []string{"animal", "pet", "zoo"}},
		{ID: 5, Name: "Games", Keywords: []string{"game", "character", "gaming", "pokemon"}},
		{ID: 6, Name: "Gundam", Keywords: []string{"gundam", "robot", "mecha"}},
		{ID: 7, Name: "Anime", Keywords: []string{"anime", "manga", "cartoon"}},
		{ID: 8, Name: "Tutorials", Keywords: []string{"tutorial", "guide", "instruction"}},
		{ID: 9, Name: "Military", Keywords: []string{"military", "tank", "soldier"}},
		{ID: 10, Name: "Chibi Models", Keywords: []string{"chibi", "cute", "kawaii"}},
		{ID: 11, Name: "Moving Models", Keywords: []string{"moving", "mechanical", "motion"}},
		{ID: 12, Name: "Holidays", Keywords: []string{"holiday", "festival", "christmas", "celebration"}},
		{ID: 13, Name: "Dioramas", Keywords: []string{"house", "building", "architecture", "diorama"}},
		{ID: 14, Name: "Vehicles", Keywords: []string{"car", "plane", "train", "vehicle"}},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			FilesDir:  defaultFilesDir,
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ImagesDir: defaultImagesDir,
		},
		State: State{
			Backend: defaultStateBackend,
		},
		OpenAI: OpenAI{
			BaseURL:        defaultOpenAIBaseURL,
			Model:          defaultOpenAIModel,
			ImageModel:     defaultOpenAIImageModel,
			ImageSize:      defaultOpenAIImageSize,
			TimeoutSeconds: defaultOpenAITimeoutSeconds,
		},
		MediaFire: MediaFire{
			BaseURL:        defaultMediaFireBaseURL,
			AppID:          defaultMediaFireAppID,
			TimeoutSeconds: defaultMediaFireTimeout,
		},
		WordPress: WordPress{
			TimeoutSeconds: defaultWordPressTimeout,
		},
		Pipeline: Pipeline{
			MaxRetries:            defaultMaxRetries,
			RetryBaseDelaySeconds: defaultRetryBaseDelaySeconds,
			RetryMaxDelaySeconds:  defaultRetryMaxDelaySeconds,
			AssetDelaySeconds:     defaultAssetDelaySeconds,
			BatchSize:             defaultBatchSize,
			BatchDelaySeconds:     defaultBatchDelaySeconds,
			AcceptedExtensions:    defaultAcceptedExtensions(),
			MinNameLength:         defaultMinNameLength,
			DenyList:              defaultDenyList(),
			DefaultCategoryID:     defaultDefaultCategoryID,
		},
		Categories: defaultCategories(),
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
