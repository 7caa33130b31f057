package config

const (
	defaultStateDir         = "~/.local/share/tidyup"
	defaultLogDir           = "~/.local/share/tidyup/logs"
	defaultFallbackCategory = "Other"
	defaultArchiveCategory  = "Archive"
	defaultDateLayout       = "2006-01-02"
	defaultDateSeparator    = "_"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// DefaultCategories returns the built-in extension mapping. It is only a
// starting point: every entry can be replaced from the config file.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Documents", Extensions: []string{"pdf", "doc", "docx", "odt", "rtf", "txt", "md", "xls", "xlsx", "ods", "csv", "ppt", "pptx", "odp", "epub"}},
		{Name: "Images", Extensions: []string{"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp", "heic", "tif", "tiff", "raw"}},
		{Name: "Videos", Extensions: []string{"mp4", "mkv", "avi", "mov", "wmv", "webm", "m4v", "flv"}},
		{Name: "Audio", Extensions: []string{"mp3", "wav", "flac", "aac", "ogg", "m4a", "opus", "wma"}},
		{Name: "Archives", Extensions: []string{"zip", "tar", "gz", "tgz", "bz2", "xz", "7z", "rar", "zst"}},
		{Name: "Code", Extensions: []string{"go", "py", "js", "ts", "html", "css", "json", "yaml", "yml", "toml", "sh", "c", "h", "rs", "java"}},
		{Name: "Installers", Extensions: []string{"exe", "msi", "dmg", "pkg", "deb", "rpm", "appimage", "apk", "iso"}},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Organize: Organize{
			FallbackCategory: defaultFallbackCategory,
			ArchiveCategory:  defaultArchiveCategory,
			DateLayout:       defaultDateLayout,
			DateSeparator:    defaultDateSeparator,
		},
		Categories: DefaultCategories(),
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			File:   true,
		},
		History: History{
			Enabled: true,
		},
	}
}
