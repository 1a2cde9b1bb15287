package domain

// Sentinel values used when the upstream omits a field.
const (
	DefaultAPIAuthor   = "unknown_user"
	DefaultEmbedAuthor = "Instagram"
	DefaultCaption     = "No caption"
)
