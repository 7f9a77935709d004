package models

// PendingUpload is a ledger row for an image upload that failed after its
// note document was already written. SessionURI, when present, allows the
// retry to resume an interrupted transfer.
type PendingUpload struct {
	RemoteImagePath string
	ImageURI        string
	SessionURI      string
}

// PendingDelete is a ledger row for a remote image deletion that failed
// after its note document was already removed or rewritten.
type PendingDelete struct {
	RemoteImagePath string
}

// GalleryImage pairs a local file with the remote path it uploads to.
type GalleryImage struct {
	LocalURI   string
	RemotePath string
}

// ResolvedImage is a stored image reference resolved to a displayable URL.
// DisplayURL is empty when the reference could not be resolved.
type ResolvedImage struct {
	RemotePath string
	DisplayURL string
}
