// Package embedding wraps the Amazon Bedrock invocation of a multimodal
// embedding model (Cohere Embed Multilingual v3).
//
// A query is a closed union of TextQuery and ImageRef. Image references may
// point at a local file, an s3:// object, or an http(s) URL; all three are
// normalized into a base64 data URI tagged with the sniffed image MIME type
// before the model call.
//
// Embed performs exactly one outbound call per invocation and never retries
// on its own. Retry and failure containment are the caller's job (see the
// pipeline and ingest packages).
package embedding
