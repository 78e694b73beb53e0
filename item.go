package zimgo

// Hint is a writer-side key influencing clustering and indexing
// decisions for a single item.
type Hint uint8

const (
	// HintCompress controls whether the item's content is stored in a
	// compressed cluster (non-zero) or an uncompressed one (zero).
	// Items without the hint default to compressed storage.
	HintCompress Hint = iota + 1
	// HintFrontArticle marks the item as a front article: it enters the
	// title listing and, when indexing is enabled, the full-text index.
	HintFrontArticle
)

// Hints maps hint keys to integer values.
type Hints map[Hint]int64

// Item is the write-side contract for content-bearing entries. Any type
// exposing these operations qualifies; no embedding is required.
//
// An Item is consumed exactly once by the creator and never mutated.
type Item interface {
	// Path is the entry's unique path within the archive.
	Path() string
	// Title is the display title; an empty title falls back to the path.
	Title() string
	// Mimetype is the content's MIME type.
	Mimetype() string
	// ContentProvider returns the single-pass content stream.
	ContentProvider() ContentProvider
	// Hints returns clustering/indexing hints; may be nil.
	Hints() Hints
}

// StringItem is a convenience Item over in-memory content.
type StringItem struct {
	path     string
	title    string
	mimetype string
	provider ContentProvider
	hints    Hints
}

// NewStringItem builds an Item from a string payload.
func NewStringItem(path, title, mimetype, content string) *StringItem {
	return &StringItem{
		path:     path,
		title:    title,
		mimetype: mimetype,
		provider: NewStringProvider(content),
	}
}

// NewBytesItem builds an Item from a byte payload. The item takes
// ownership of content.
func NewBytesItem(path, title, mimetype string, content []byte) *StringItem {
	return &StringItem{
		path:     path,
		title:    title,
		mimetype: mimetype,
		provider: NewBytesProvider(content),
	}
}

// WithHints attaches hints and returns the item for chaining.
func (it *StringItem) WithHints(hints Hints) *StringItem {
	it.hints = hints
	return it
}

func (it *StringItem) Path() string                     { return it.path }
func (it *StringItem) Title() string                    { return it.title }
func (it *StringItem) Mimetype() string                 { return it.mimetype }
func (it *StringItem) ContentProvider() ContentProvider { return it.provider }
func (it *StringItem) Hints() Hints                     { return it.hints }
