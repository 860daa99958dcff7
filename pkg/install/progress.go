package install

// ProgressEvent is a single notification emitted while prepare is working
// through a plan. Detail carries the action-specific extra piece
// of information: a symlink's target for
// "link", or the stray destination for "move"; it's empty otherwise.
type ProgressEvent struct {
	// Action names the kind of step just taken: "install", "link", or
	// "move".
	Action string
	// Path is the image-relative path the event concerns.
	Path string
	// Detail carries the symlink target ("link") or stray-relative
	// destination ("move"); empty for "install".
	Detail string
}

// ProgressFunc receives progress notifications. It may be nil, in which case
// no notifications are delivered.
type ProgressFunc func(ProgressEvent)

const (
	ProgressInstall = "install"
	ProgressLink    = "link"
	ProgressMove    = "move"
)
