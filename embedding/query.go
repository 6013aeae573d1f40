package embedding

// Role distinguishes documents being indexed from queries being searched.
// Cohere embeds the two differently even for identical content.
type Role string

const (
	// RoleDocument marks content that is being indexed.
	RoleDocument Role = "search_document"
	// RoleQuery marks content that is being searched for.
	RoleQuery Role = "search_query"

	// inputTypeImage is the wire value for image inputs, regardless of role.
	inputTypeImage = "image"
)

// Query is the closed union of supported query inputs.
// The only implementations are TextQuery and ImageRef.
type Query interface {
	isQuery()
}

// TextQuery is a natural-language description.
type TextQuery string

func (TextQuery) isQuery() {}

// ImageRef references an image by local path, s3:// locator, or http(s) URL.
type ImageRef string

func (ImageRef) isQuery() {}

// inputLabel is a short description of the input for error reporting.
func inputLabel(q Query) string {
	switch v := q.(type) {
	case TextQuery:
		if len(v) > 64 {
			return string(v[:64]) + "..."
		}
		return string(v)
	case ImageRef:
		return string(v)
	default:
		return ""
	}
}
