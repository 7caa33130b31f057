package organizer

import (
	"fmt"
	"strings"
	"time"

	"tidyup/internal/textutil"
)

// Timestamps carries the metadata the date prefixer may use. Created is only
// meaningful when CreatedKnown is true.
type Timestamps struct {
	Modified     time.Time
	Created      time.Time
	CreatedKnown bool
}

// DatePrefixer prepends a formatted timestamp to file names.
type DatePrefixer struct {
	Layout    string
	Separator string
}

// Prefix returns name with the timestamp selected by mode prepended. When the
// creation time is requested but unknown, the modification time is used and a
// warning is returned. Names that already carry the computed prefix are
// returned unchanged.
func (p DatePrefixer) Prefix(name string, mode DateMode, meta Timestamps) (string, *Warning) {
	var (
		ts      time.Time
		warning *Warning
	)
	switch mode {
	case DateModified:
		ts = meta.Modified
	case DateCreated:
		if meta.CreatedKnown {
			ts = meta.Created
		} else {
			ts = meta.Modified
			warning = &Warning{
				Kind:    WarningTimestampFallback,
				File:    name,
				Message: "creation time unavailable; used modification time",
			}
		}
	default:
		return name, nil
	}

	prefix := textutil.SanitizeFileName(ts.Format(p.Layout)) + p.Separator
	if strings.HasPrefix(name, prefix) {
		return name, warning
	}
	return fmt.Sprintf("%s%s", prefix, name), warning
}
