package config

const (
	ArtifactBackendLocal = "local"
	ArtifactBackendS3    = "s3"
	ArtifactBackendGCS   = "gcs"
)

const (
	defaultScratchDir          = "~/.local/share/shorts/scratch"
	defaultArtifactDir         = "~/.local/share/shorts/media"
	defaultStateDir            = "~/.local/share/shorts"
	defaultLogDir              = "~/.local/share/shorts/logs"
	defaultFetcherBinary       = "yt-dlp"
	defaultFetcherFormat       = "mp4/bestaudio/best"
	defaultOutputTemplate      = "%(id)s.%(ext)s"
	defaultSocketTimeout       = 10
	defaultFetcherRetries      = 2
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultVideoCodec          = "libx264"
	defaultPreset              = "medium"
	defaultCRF                 = 18
	defaultAudioCodec          = "aac"
	defaultTargetWidth         = 1080
	defaultTargetHeight        = 1920
	defaultFontPath            = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"
	defaultPreviewJPEGQuality  = 90
	defaultReachabilityHost    = "www.youtube.com"
	defaultReachabilityPort    = 443
	defaultReachabilityTimeout = 5
	defaultShutdownTimeout     = 600
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// DefaultFonts maps overlay font names to font files shipped by common Linux
// font packages.
func DefaultFonts() map[string]string {
	return map[string]string{
		"Arial":      "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"Roboto":     "/usr/share/fonts/truetype/ubuntu/Ubuntu-R.ttf",
		"Poppins":    "/usr/share/fonts/truetype/ubuntu/Ubuntu-B.ttf",
		"Pacifico":   "/usr/share/fonts/truetype/freefont/FreeSerif.ttf",
		"Montserrat": "/usr/share/fonts/truetype/ubuntu/Ubuntu-B.ttf",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir:  defaultScratchDir,
			ArtifactDir: defaultArtifactDir,
			StateDir:    defaultStateDir,
			LogDir:      defaultLogDir,
		},
		Fetcher: Fetcher{
			Binary:         defaultFetcherBinary,
			Format:         defaultFetcherFormat,
			OutputTemplate: defaultOutputTemplate,
			SocketTimeout:  defaultSocketTimeout,
			Retries:        defaultFetcherRetries,
		},
		Transcoder: Transcoder{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			VideoCodec:    defaultVideoCodec,
			Preset:        defaultPreset,
			CRF:           defaultCRF,
			AudioCodec:    defaultAudioCodec,
			TargetWidth:   defaultTargetWidth,
			TargetHeight:  defaultTargetHeight,
		},
		Overlay: Overlay{
			DefaultFontPath: defaultFontPath,
			Fonts:           DefaultFonts(),
		},
		Preview: Preview{
			JPEGQuality: defaultPreviewJPEGQuality,
		},
		Reachability: Reachability{
			Enabled:        true,
			Host:           defaultReachabilityHost,
			Port:           defaultReachabilityPort,
			TimeoutSeconds: defaultReachabilityTimeout,
		},
		Artifacts: Artifacts{
			Backend: ArtifactBackendLocal,
		},
		Workflow: Workflow{
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Metrics: Metrics{
			Enabled: true,
		},
	}
}
