package zimgo

import (
	"fmt"

	"github.com/hupe1980/zimgo/internal/format"
)

// maxRedirectHops bounds redirect chain resolution. Well-formed
// archives have short chains; anything deeper is a cycle.
const maxRedirectHops = 16

// Entry is one directory entry of an archive: either content or a
// redirect to another entry. The zero Entry is invalid.
type Entry struct {
	a        *Archive
	urlIndex uint32
	dirent   *format.Dirent
}

// Path returns the entry's path within its namespace.
func (e Entry) Path() string { return e.dirent.URL }

// FullPath returns the namespace-qualified path ("C/foo/Bar").
func (e Entry) FullPath() string {
	return fmt.Sprintf("%c/%s", e.dirent.Namespace, e.dirent.URL)
}

// Title returns the entry's display title.
func (e Entry) Title() string { return e.dirent.DisplayTitle() }

// Namespace returns the entry's namespace byte.
func (e Entry) Namespace() byte { return e.dirent.Namespace }

// Index returns the entry's URL-order index.
func (e Entry) Index() uint32 { return e.urlIndex }

// IsRedirect reports whether the entry is a redirect.
func (e Entry) IsRedirect() bool { return e.dirent.IsRedirect() }

// Redirect follows one redirect hop. Non-redirect entries return
// themselves.
func (e Entry) Redirect() (Entry, error) {
	if !e.dirent.IsRedirect() {
		return e, nil
	}
	return e.a.EntryAt(e.dirent.RedirectIndex)
}

// Item resolves the entry to its content, following redirect chains.
func (e Entry) Item() (*ReadItem, error) {
	target, err := e.a.ResolveEntry(e)
	if err != nil {
		return nil, err
	}

	c, err := target.a.clusterAt(target.dirent.Cluster)
	if err != nil {
		return nil, err
	}
	size, err := c.BlobSize(target.dirent.Blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	return &ReadItem{
		a:        target.a,
		path:     target.dirent.URL,
		title:    target.dirent.DisplayTitle(),
		mimetype: target.a.mimetypeName(target.dirent.MimetypeID),
		cluster:  target.dirent.Cluster,
		blob:     target.dirent.Blob,
		size:     size,
	}, nil
}

// ResolveEntry follows redirect chains until a content entry is
// reached. Chains longer than maxRedirectHops indicate a cycle and
// fail with ErrCorruptArchive.
func (a *Archive) ResolveEntry(e Entry) (Entry, error) {
	cur := e
	for hop := 0; hop < maxRedirectHops; hop++ {
		if !cur.dirent.IsRedirect() {
			return cur, nil
		}
		next, err := a.EntryAt(cur.dirent.RedirectIndex)
		if err != nil {
			return Entry{}, err
		}
		cur = next
	}
	return Entry{}, fmt.Errorf("%w: redirect chain from %q exceeds %d hops", ErrCorruptArchive, e.Path(), maxRedirectHops)
}

// Item looks up the entry at path and resolves it to its content.
func (a *Archive) Item(path string) (*ReadItem, error) {
	e, err := a.EntryByPath(path)
	if err != nil {
		return nil, err
	}
	return e.Item()
}

// ReadItem is the resolved content of an entry. The payload is read
// lazily; Size and Mimetype never touch cluster data beyond the
// cluster's offset table.
type ReadItem struct {
	a        *Archive
	path     string
	title    string
	mimetype string
	cluster  uint32
	blob     uint32
	size     int64
}

// Path returns the content entry's path.
func (it *ReadItem) Path() string { return it.path }

// Title returns the content entry's title.
func (it *ReadItem) Title() string { return it.title }

// Mimetype returns the item's MIME type.
func (it *ReadItem) Mimetype() string { return it.mimetype }

// Size returns the uncompressed payload size in bytes.
func (it *ReadItem) Size() int64 { return it.size }

// Data returns a copy of the payload.
func (it *ReadItem) Data() ([]byte, error) {
	return it.a.blobData(it.cluster, it.blob)
}
